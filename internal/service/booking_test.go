package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
	"github.com/iliyamo/meeting-room-reservation/internal/notifier"
	"github.com/iliyamo/meeting-room-reservation/internal/repository"
)

// ----- mocks -----

type mockBookingStore struct {
	statuses            map[uint64]string
	inserted            []*model.Booking
	findConflictingFunc func(ctx context.Context, roomID uint64, start, end time.Time) (*model.Booking, error)
}

func newMockBookingStore() *mockBookingStore {
	return &mockBookingStore{statuses: map[uint64]string{}}
}

func (m *mockBookingStore) FindConflicting(ctx context.Context, roomID uint64, start, end time.Time) (*model.Booking, error) {
	if m.findConflictingFunc != nil {
		return m.findConflictingFunc(ctx, roomID, start, end)
	}
	return nil, nil
}

func (m *mockBookingStore) Insert(ctx context.Context, b *model.Booking) error {
	b.ID = uint64(len(m.inserted) + 1)
	m.inserted = append(m.inserted, b)
	m.statuses[b.ID] = b.Status
	return nil
}

func (m *mockBookingStore) UpdateStatus(ctx context.Context, id uint64, status string) error {
	if _, ok := m.statuses[id]; !ok {
		return repository.ErrBookingNotFound
	}
	m.statuses[id] = status
	return nil
}

type mockRoomStore struct {
	rooms map[uint64]model.MeetingRoom
}

func (m *mockRoomStore) GetByID(ctx context.Context, id uint64) (model.MeetingRoom, error) {
	r, ok := m.rooms[id]
	if !ok {
		return model.MeetingRoom{}, repository.ErrRoomNotFound
	}
	return r, nil
}

type mockUserStore struct {
	users        map[uint64]model.User
	adminEmail   string
	adminLookups int
}

func (m *mockUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserStore) FindAdminEmail(ctx context.Context) (string, error) {
	m.adminLookups++
	return m.adminEmail, nil
}

type mockCache struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	return m.data[key], nil
}

func (m *mockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockCache) SetForever(ctx context.Context, key, value string) error {
	m.data[key] = value
	m.ttls[key] = 0
	return nil
}

func (m *mockCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
		delete(m.ttls, k)
	}
	return nil
}

type sentMail struct {
	to, subject, body string
}

type mockNotifier struct {
	sent     []sentMail
	sendFunc func(ctx context.Context, to, subject, body string) error
}

func (m *mockNotifier) Send(ctx context.Context, to, subject, body string) error {
	if m.sendFunc != nil {
		if err := m.sendFunc(ctx, to, subject, body); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fixture struct {
	bookings *mockBookingStore
	rooms    *mockRoomStore
	users    *mockUserStore
	cache    *mockCache
	notifier *mockNotifier
	svc      *BookingService
}

func newFixture() *fixture {
	f := &fixture{
		bookings: newMockBookingStore(),
		rooms:    &mockRoomStore{rooms: map[uint64]model.MeetingRoom{1: {ID: 1, Name: "Jupiter"}}},
		users:    &mockUserStore{users: map[uint64]model.User{7: {ID: 7, Username: "sam"}}, adminEmail: "admin@example.com"},
		cache:    newMockCache(),
		notifier: &mockNotifier{},
	}
	f.svc = NewBookingService(f.bookings, f.rooms, f.users, f.cache, f.notifier)
	return f
}

// ----- creation -----

func TestCreate_ContainedIntervalIsRejected(t *testing.T) {
	f := newFixture()
	existing := &model.Booking{ID: 42, RoomID: 1, Status: model.StatusApproved}
	f.bookings.findConflictingFunc = func(ctx context.Context, roomID uint64, start, end time.Time) (*model.Booking, error) {
		return existing, nil
	}

	start := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	b, err := f.svc.Create(context.Background(), 7, 1, start, end, "")

	require.ErrorIs(t, err, ErrTimeSlotLocked)
	assert.Nil(t, b)
	assert.Empty(t, f.bookings.inserted, "conflicting request must not write")
}

func TestCreate_DisjointIntervalSucceeds(t *testing.T) {
	f := newFixture()
	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	b, err := f.svc.Create(context.Background(), 7, 1, start, end, "standup")

	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, uint64(7), b.UserID)
	assert.Equal(t, uint64(1), b.RoomID)
	assert.Equal(t, "standup", b.Note)
	assert.Len(t, f.bookings.inserted, 1)
}

func TestCreate_UnknownRoom(t *testing.T) {
	f := newFixture()
	called := false
	f.bookings.findConflictingFunc = func(ctx context.Context, roomID uint64, start, end time.Time) (*model.Booking, error) {
		called = true
		return nil, nil
	}

	now := time.Now().UTC()
	_, err := f.svc.Create(context.Background(), 7, 99, now, now.Add(time.Hour), "")

	require.ErrorIs(t, err, repository.ErrRoomNotFound)
	assert.False(t, called, "conflict check must not run for a missing room")
	assert.Empty(t, f.bookings.inserted)
}

// ----- transitions -----

func TestTransitions_Idempotent(t *testing.T) {
	ops := map[string]struct {
		run  func(s *BookingService, id uint64) error
		want string
	}{
		"approve": {func(s *BookingService, id uint64) error { return s.Approve(context.Background(), id) }, model.StatusApproved},
		"reject":  {func(s *BookingService, id uint64) error { return s.Reject(context.Background(), id) }, model.StatusRejected},
		"unbind":  {func(s *BookingService, id uint64) error { return s.Unbind(context.Background(), id) }, model.StatusUnbound},
	}
	for name, tc := range ops {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.bookings.statuses[5] = model.StatusPending

			require.NoError(t, tc.run(f.svc, 5))
			require.NoError(t, tc.run(f.svc, 5), "repeating the transition must not fail")
			assert.Equal(t, tc.want, f.bookings.statuses[5])
		})
	}
}

func TestUnbind_FromEveryStatus(t *testing.T) {
	for _, prior := range []string{model.StatusPending, model.StatusApproved, model.StatusRejected} {
		t.Run(prior, func(t *testing.T) {
			f := newFixture()
			f.bookings.statuses[9] = prior

			require.NoError(t, f.svc.Unbind(context.Background(), 9))
			assert.Equal(t, model.StatusUnbound, f.bookings.statuses[9])
		})
	}
}

func TestTransition_UnknownBooking(t *testing.T) {
	f := newFixture()
	err := f.svc.Approve(context.Background(), 1234)
	require.ErrorIs(t, err, repository.ErrBookingNotFound)
}

// ----- urge -----

func TestUrge_SendsOnceInsideWindow(t *testing.T) {
	f := newFixture()

	msg, err := f.svc.Urge(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, MsgUrgeSent, msg)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "admin@example.com", f.notifier.sent[0].to)
	assert.Contains(t, f.notifier.sent[0].body, "11")
	assert.Equal(t, 30*time.Minute, f.cache.ttls["urge_11"])

	msg, err = f.svc.Urge(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, MsgUrgeThrottled, msg)
	assert.Len(t, f.notifier.sent, 1, "second urge inside the window must not send")
}

func TestUrge_FreshAfterMarkerExpires(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Urge(context.Background(), 11)
	require.NoError(t, err)
	// Simulate the marker's natural 30-minute expiry.
	require.NoError(t, f.cache.Del(context.Background(), "urge_11"))

	msg, err := f.svc.Urge(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, MsgUrgeSent, msg)
	assert.Len(t, f.notifier.sent, 2)
}

func TestUrge_AdminEmailLookedUpOnce(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Urge(context.Background(), 1)
	require.NoError(t, err)
	_, err = f.svc.Urge(context.Background(), 2)
	require.NoError(t, err)
	_, err = f.svc.Urge(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 1, f.users.adminLookups, "address must come from the cache after the first urge")
	assert.Equal(t, "admin@example.com", f.cache.data["admin_email"])
	assert.Equal(t, time.Duration(0), f.cache.ttls["admin_email"], "admin address is cached without expiry")
}

func TestUrge_DeliveryFailureDoesNotConsumeWindow(t *testing.T) {
	f := newFixture()
	fail := true
	f.notifier.sendFunc = func(ctx context.Context, to, subject, body string) error {
		if fail {
			return &notifier.DeliveryError{To: to, Err: context.DeadlineExceeded}
		}
		return nil
	}

	_, err := f.svc.Urge(context.Background(), 11)
	var de *notifier.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Empty(t, f.cache.data["urge_11"], "failed send must not write the throttle marker")

	fail = false
	msg, err := f.svc.Urge(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, MsgUrgeSent, msg)
}

func TestInvalidateAdminEmail(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Urge(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, f.users.adminLookups)

	require.NoError(t, f.svc.InvalidateAdminEmail(context.Background()))
	f.users.adminEmail = "new-admin@example.com"

	_, err = f.svc.Urge(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, f.users.adminLookups, "invalidation must force a fresh lookup")
	assert.Equal(t, "new-admin@example.com", f.notifier.sent[1].to)
}
