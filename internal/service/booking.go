// Package service implements the booking workflow: creation with the
// containment conflict check, the approve/reject/unbind transitions and
// the urge reminder throttle.  Persistence, cache and mail delivery are
// reached through narrow interfaces so the workflow can be exercised
// without MySQL, Redis or an SMTP relay.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
)

// BookingStore is the slice of booking persistence the workflow needs.
type BookingStore interface {
	FindConflicting(ctx context.Context, roomID uint64, start, end time.Time) (*model.Booking, error)
	Insert(ctx context.Context, b *model.Booking) error
	UpdateStatus(ctx context.Context, id uint64, status string) error
}

// RoomStore resolves meeting rooms.
type RoomStore interface {
	GetByID(ctx context.Context, id uint64) (model.MeetingRoom, error)
}

// UserStore resolves users and the administrator notification address.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	FindAdminEmail(ctx context.Context) (string, error)
}

// Cache is the key-value surface used for the urge markers and the
// cached administrator address.  Get reports absence as ("", nil).
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetForever(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
}

// Notifier sends a message to a recipient address.  Implementations
// report delivery failure through the returned error.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ErrTimeSlotLocked is returned when a proposed booking interval is
// contained within an existing booking on the same room.
var ErrTimeSlotLocked = errors.New("time slot already locked")

const (
	adminEmailKey = "admin_email"
	urgeKeyPrefix = "urge_"
	urgeWindow    = 30 * time.Minute

	urgeSubject = "Booking application reminder"

	// MsgUrgeThrottled is the informational result for a repeated urge
	// inside the window.  It is a normal outcome, not an error.
	MsgUrgeThrottled = "a reminder was already sent within the last 30 minutes, please wait"
	// MsgUrgeSent is returned after a reminder has been delivered.
	MsgUrgeSent = "reminder sent"
)

// BookingService coordinates the booking workflow against its
// collaborators.
type BookingService struct {
	bookings BookingStore
	rooms    RoomStore
	users    UserStore
	cache    Cache
	notifier Notifier
}

// NewBookingService constructs a BookingService.  All dependencies must
// be non-nil.
func NewBookingService(bookings BookingStore, rooms RoomStore, users UserStore, cache Cache, notifier Notifier) *BookingService {
	if bookings == nil || rooms == nil || users == nil || cache == nil || notifier == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{bookings: bookings, rooms: rooms, users: users, cache: cache, notifier: notifier}
}

// Create registers a new PENDING booking for the given user and room.
// The room must exist; the user is assumed to exist since it comes from
// an authenticated caller.  The conflict check rejects only an interval
// strictly contained inside an existing non-rejected, non-unbound
// booking on the same room.
//
// The check and the insert are two statements without a transaction or
// row lock: two concurrent requests for overlapping slots can both pass
// the check and both commit.  Best effort only.
func (s *BookingService) Create(ctx context.Context, userID, roomID uint64, start, end time.Time, note string) (*model.Booking, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	conflict, err := s.bookings.FindConflicting(ctx, room.ID, start, end)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, ErrTimeSlotLocked
	}
	b := &model.Booking{
		UserID:    user.ID,
		RoomID:    room.ID,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Status:    model.StatusPending,
		Note:      note,
	}
	if err := s.bookings.Insert(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Approve sets a booking's status to APPROVED.
func (s *BookingService) Approve(ctx context.Context, id uint64) error {
	return s.bookings.UpdateStatus(ctx, id, model.StatusApproved)
}

// Reject sets a booking's status to REJECTED.
func (s *BookingService) Reject(ctx context.Context, id uint64) error {
	return s.bookings.UpdateStatus(ctx, id, model.StatusRejected)
}

// Unbind releases a booking from any prior status.  The transition to
// UNBOUND is unconditional.
func (s *BookingService) Unbind(ctx context.Context, id uint64) error {
	return s.bookings.UpdateStatus(ctx, id, model.StatusUnbound)
}

// Urge nudges the administrator about a pending booking, at most once
// per 30-minute window per booking id.  When the window is still open
// the throttled message is returned without any side effect.  Otherwise
// the administrator address is resolved (cache first, store on a miss,
// cached without expiry afterwards), the reminder is sent, and only
// after a successful send is the throttle marker written.  A failed
// send therefore does not consume the window.
//
// The check-then-set against the cache is not atomic; two concurrent
// urge requests inside the same window may both send mail.
func (s *BookingService) Urge(ctx context.Context, id uint64) (string, error) {
	key := fmt.Sprintf("%s%d", urgeKeyPrefix, id)
	marked, err := s.cache.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if marked != "" {
		return MsgUrgeThrottled, nil
	}

	addr, err := s.cache.Get(ctx, adminEmailKey)
	if err != nil {
		return "", err
	}
	if addr == "" {
		addr, err = s.users.FindAdminEmail(ctx)
		if err != nil {
			return "", err
		}
		if err := s.cache.SetForever(ctx, adminEmailKey, addr); err != nil {
			return "", err
		}
	}

	body := fmt.Sprintf("Booking application %d is awaiting approval.", id)
	if err := s.notifier.Send(ctx, addr, urgeSubject, body); err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, key, "1", urgeWindow); err != nil {
		return "", err
	}
	return MsgUrgeSent, nil
}

// InvalidateAdminEmail drops the cached administrator address.  The
// address is otherwise cached without expiry, so this must be called
// whenever an administrator account's email changes.
func (s *BookingService) InvalidateAdminEmail(ctx context.Context) error {
	return s.cache.Del(ctx, adminEmailKey)
}
