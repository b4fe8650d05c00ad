package model

import "time"

// Booking statuses.  A booking is created PENDING, moves to
// APPROVED or REJECTED through an admin decision, and can be
// released to UNBOUND from any state.  There is no transition out
// of APPROVED or REJECTED back to PENDING, and no guard prevents
// repeating a decision: transitions are unconditional updates.
const (
	StatusPending  = "PENDING"  // awaiting an admin decision
	StatusApproved = "APPROVED" // approved by an admin
	StatusRejected = "REJECTED" // rejected by an admin
	StatusUnbound  = "UNBOUND"  // explicitly released
)

// Booking records a user's reservation of a meeting room for a
// half-open time interval [StartTime, EndTime).  EndTime must be
// after StartTime.  This struct corresponds to a row in the
// `bookings` table.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who requested the booking.
//  RoomID    – meeting room being reserved.
//  StartTime – when the meeting starts.
//  EndTime   – when the meeting ends (after StartTime).
//  Status    – one of the status constants above.
//  Note      – free-text note attached by the requester.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Booking struct {
	ID        uint64    // bookings.id
	UserID    uint64    // bookings.user_id
	RoomID    uint64    // bookings.room_id
	StartTime time.Time // bookings.start_time
	EndTime   time.Time // bookings.end_time
	Status    string    // bookings.status
	Note      string    // bookings.note
	CreatedAt time.Time // bookings.created_at
	UpdatedAt time.Time // bookings.updated_at
}
