// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingAppliedEvent is published when a booking application is
// successfully created.  It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type BookingAppliedEvent struct {
	BookingID uint64 `json:"booking_id"`
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username"`
	RoomID    uint64 `json:"room_id"`
	RoomName  string `json:"room_name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	AppliedAt string `json:"applied_at"`
}
