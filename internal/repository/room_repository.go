package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
)

// RoomRepo provides CRUD operations for meeting rooms.  All timestamp
// fields are assumed to be stored in UTC.
type RoomRepo struct{ DB *sql.DB }

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomColumns = "id,name,capacity,location,equipment,description,is_booked,created_at,updated_at"

// Create inserts a new meeting room and populates the generated ID and
// timestamps on the provided record.  Duplicate names map to
// ErrRoomNameExists.
func (r *RoomRepo) Create(ctx context.Context, room *model.MeetingRoom) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO meeting_rooms (name, capacity, location, equipment, description) VALUES (?,?,?,?,?)",
		room.Name, room.Capacity, room.Location, room.Equipment, room.Description)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrRoomNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults
	got, err := r.GetByID(ctx, room.ID)
	if err != nil {
		return err
	}
	*room = got
	return nil
}

// GetByID fetches a meeting room by id.  Returns ErrRoomNotFound when
// the id does not exist.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.MeetingRoom, error) {
	var m model.MeetingRoom
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+roomColumns+" FROM meeting_rooms WHERE id=? LIMIT 1", id).
		Scan(&m.ID, &m.Name, &m.Capacity, &m.Location, &m.Equipment, &m.Description,
			&m.IsBooked, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrRoomNotFound
	}
	return m, err
}

// RoomFilter narrows the result of List.  Zero values mean "no filter".
// PageNo is 1-based.
type RoomFilter struct {
	Name      string
	Equipment string
	Capacity  uint32
	PageNo    int
	PageSize  int
}

// List returns rooms matching the filter plus the total count across all
// pages.  Rooms are ordered by id ascending for deterministic paging.
func (r *RoomRepo) List(ctx context.Context, f RoomFilter) ([]model.MeetingRoom, int64, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if f.Name != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	if f.Equipment != "" {
		where = append(where, "equipment LIKE ?")
		args = append(args, "%"+f.Equipment+"%")
	}
	if f.Capacity > 0 {
		where = append(where, "capacity = ?")
		args = append(args, f.Capacity)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM meeting_rooms"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.PageSize <= 0 {
		f.PageSize = 10
	}
	if f.PageNo < 1 {
		f.PageNo = 1
	}
	offset := (f.PageNo - 1) * f.PageSize
	query := "SELECT " + roomColumns + " FROM meeting_rooms" + cond + " ORDER BY id LIMIT ? OFFSET ?"
	rows, err := r.DB.QueryContext(ctx, query, append(args, f.PageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.MeetingRoom, 0, f.PageSize)
	for rows.Next() {
		var m model.MeetingRoom
		if err := rows.Scan(&m.ID, &m.Name, &m.Capacity, &m.Location, &m.Equipment,
			&m.Description, &m.IsBooked, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update replaces the mutable fields of a room.  Returns ErrRoomNotFound
// when the id does not exist and ErrRoomNameExists when renaming to a
// taken name.
func (r *RoomRepo) Update(ctx context.Context, room *model.MeetingRoom) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE meeting_rooms SET name=?, capacity=?, location=?, equipment=?, description=? WHERE id=?",
		room.Name, room.Capacity, room.Location, room.Equipment, room.Description, room.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrRoomNameExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// MySQL reports changed rows, not matched rows; probe before
	// declaring the id missing.
	var one int
	err = r.DB.QueryRowContext(ctx, "SELECT 1 FROM meeting_rooms WHERE id=? LIMIT 1", room.ID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRoomNotFound
	}
	return err
}

// Delete removes a room by id.  Returns ErrRoomNotFound when nothing was
// deleted.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM meeting_rooms WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
