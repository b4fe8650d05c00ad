package model

import "time"

// MeetingRoom describes a bookable room.  Rooms are uniquely
// identified by name.  This struct corresponds to a row in the
// `meeting_rooms` table.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique room name.
//  Capacity    – number of people the room holds.
//  Location    – where the room is (floor, wing).
//  Equipment   – free-text list of installed equipment.
//  Description – optional description of the room.
//  IsBooked    – whether the room currently has an active booking.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type MeetingRoom struct {
	ID          uint64    // meeting_rooms.id
	Name        string    // meeting_rooms.name
	Capacity    uint32    // meeting_rooms.capacity
	Location    string    // meeting_rooms.location
	Equipment   string    // meeting_rooms.equipment
	Description string    // meeting_rooms.description
	IsBooked    bool      // meeting_rooms.is_booked
	CreatedAt   time.Time // meeting_rooms.created_at
	UpdatedAt   time.Time // meeting_rooms.updated_at
}
