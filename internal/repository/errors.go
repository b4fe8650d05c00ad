// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking workflow and the HTTP handlers to distinguish between different
// failure scenarios with errors.Is instead of string matching.
package repository

import "errors"

// ErrUsernameExists is returned when registering a user whose username
// is already taken. Handlers should translate this into an HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrRoomNameExists is returned when creating a meeting room whose name
// is already taken. Handlers should translate this into an HTTP 409.
var ErrRoomNameExists = errors.New("room name already exists")

// ErrRoomNotFound is returned when a referenced meeting room does not
// exist. Handlers should translate this into an HTTP 404.
var ErrRoomNotFound = errors.New("meeting room not found")

// ErrUserNotFound is returned when a referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrBookingNotFound is returned when a status transition or lookup
// targets a booking id that does not exist.
var ErrBookingNotFound = errors.New("booking not found")
