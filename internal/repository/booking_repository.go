package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
)

// BookingRepo provides persistence for bookings.  Bookings reference a
// user and a meeting room and carry a half-open [start_time, end_time)
// interval with an approval status.  All timestamp fields are assumed to
// be stored in UTC.
type BookingRepo struct{ DB *sql.DB }

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = "id,user_id,room_id,start_time,end_time,status,note,created_at,updated_at"

// FindConflicting returns a booking on the given room whose interval
// strictly contains [start, end) and whose status still occupies the
// slot (neither REJECTED nor UNBOUND).  It returns (nil, nil) when no
// such booking exists.
//
// The comparison deliberately detects only strict containment
// (existing.start < start AND existing.end > end); partial overlaps and
// the existing-inside-new case are accepted.  Callers that want true
// interval intersection must not get it silently from here.
func (r *BookingRepo) FindConflicting(ctx context.Context, roomID uint64, start, end time.Time) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE room_id = ? AND start_time < ? AND end_time > ?
                 AND status NOT IN (?, ?)
               LIMIT 1`
	var b model.Booking
	err := r.DB.QueryRowContext(ctx, q, roomID, start.UTC(), end.UTC(),
		model.StatusRejected, model.StatusUnbound).
		Scan(&b.ID, &b.UserID, &b.RoomID, &b.StartTime, &b.EndTime, &b.Status,
			&b.Note, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Insert persists a new booking and populates the generated ID and
// timestamps on the provided record.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO bookings (user_id, room_id, start_time, end_time, status, note) VALUES (?,?,?,?,?,?)",
		b.UserID, b.RoomID, b.StartTime.UTC(), b.EndTime.UTC(), b.Status, b.Note)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults
	return r.DB.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=?", b.ID).
		Scan(&b.ID, &b.UserID, &b.RoomID, &b.StartTime, &b.EndTime, &b.Status,
			&b.Note, &b.CreatedAt, &b.UpdatedAt)
}

// UpdateStatus unconditionally sets the status of a booking.  Repeating
// a transition is a no-op that still succeeds; an unknown id returns
// ErrBookingNotFound.  MySQL reports changed rows rather than matched
// rows, so a zero count triggers an existence probe before the id is
// declared missing.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE bookings SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = r.DB.QueryRowContext(ctx, "SELECT 1 FROM bookings WHERE id=? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	return err
}

// BookingDetail is a booking joined with its user and room, shaped for
// listing responses.
type BookingDetail struct {
	ID        uint64 `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
	Note      string `json:"note"`
	User      struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
		NickName string `json:"nick_name"`
	} `json:"user"`
	Room struct {
		ID       uint64 `json:"id"`
		Name     string `json:"name"`
		Location string `json:"location"`
	} `json:"room"`
}

// BookingFilter narrows the result of List.  Zero values mean "no
// filter".  The time range applies to start_time and is only honored
// when both ends are set.  PageNo is 1-based.
type BookingFilter struct {
	Username     string
	RoomName     string
	RoomLocation string
	RangeStart   time.Time
	RangeEnd     time.Time
	PageNo       int
	PageSize     int
}

// List returns bookings matching the filter along with user and room
// details, newest first, plus the total count across all pages.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]BookingDetail, int64, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if f.Username != "" {
		where = append(where, "u.username LIKE ?")
		args = append(args, "%"+f.Username+"%")
	}
	if f.RoomName != "" {
		where = append(where, "m.name LIKE ?")
		args = append(args, "%"+f.RoomName+"%")
	}
	if f.RoomLocation != "" {
		where = append(where, "m.location LIKE ?")
		args = append(args, "%"+f.RoomLocation+"%")
	}
	if !f.RangeStart.IsZero() && !f.RangeEnd.IsZero() {
		where = append(where, "b.start_time BETWEEN ? AND ?")
		args = append(args, f.RangeStart.UTC(), f.RangeEnd.UTC())
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}
	const from = ` FROM bookings b
                   JOIN users u ON u.id = b.user_id
                   JOIN meeting_rooms m ON m.id = b.room_id`

	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*)"+from+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.PageSize <= 0 {
		f.PageSize = 10
	}
	if f.PageNo < 1 {
		f.PageNo = 1
	}
	offset := (f.PageNo - 1) * f.PageSize
	query := `SELECT b.id, b.start_time, b.end_time, b.status, b.note,
                     u.id, u.username, u.nick_name,
                     m.id, m.name, m.location` +
		from + cond + " ORDER BY b.created_at DESC LIMIT ? OFFSET ?"
	rows, err := r.DB.QueryContext(ctx, query, append(args, f.PageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]BookingDetail, 0, f.PageSize)
	for rows.Next() {
		var d BookingDetail
		var start, end time.Time
		if err := rows.Scan(&d.ID, &start, &end, &d.Status, &d.Note,
			&d.User.ID, &d.User.Username, &d.User.NickName,
			&d.Room.ID, &d.Room.Name, &d.Room.Location); err != nil {
			return nil, 0, err
		}
		d.StartTime = start.UTC().Format(time.RFC3339)
		d.EndTime = end.UTC().Format(time.RFC3339)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UserBookingCount aggregates how many bookings a user created inside a
// time range.
type UserBookingCount struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Count    int64  `json:"booking_count"`
}

// RoomUsedCount aggregates how many bookings a room received inside a
// time range.
type RoomUsedCount struct {
	RoomID   uint64 `json:"room_id"`
	RoomName string `json:"room_name"`
	Count    int64  `json:"used_count"`
}

// CountByUser returns per-user booking counts for bookings whose
// start_time falls inside [start, end].
func (r *BookingRepo) CountByUser(ctx context.Context, start, end time.Time) ([]UserBookingCount, error) {
	const q = `SELECT u.id, u.username, COUNT(b.id)
               FROM users u
               JOIN bookings b ON b.user_id = u.id
               WHERE b.start_time BETWEEN ? AND ?
               GROUP BY u.id, u.username
               ORDER BY u.id`
	rows, err := r.DB.QueryContext(ctx, q, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]UserBookingCount, 0)
	for rows.Next() {
		var c UserBookingCount
		if err := rows.Scan(&c.UserID, &c.Username, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByRoom returns per-room booking counts for bookings whose
// start_time falls inside [start, end].
func (r *BookingRepo) CountByRoom(ctx context.Context, start, end time.Time) ([]RoomUsedCount, error) {
	const q = `SELECT m.id, m.name, COUNT(b.id)
               FROM meeting_rooms m
               JOIN bookings b ON b.room_id = m.id
               WHERE b.start_time BETWEEN ? AND ?
               GROUP BY m.id, m.name
               ORDER BY m.id`
	rows, err := r.DB.QueryContext(ctx, q, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RoomUsedCount, 0)
	for rows.Next() {
		var c RoomUsedCount
		if err := rows.Scan(&c.RoomID, &c.RoomName, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
