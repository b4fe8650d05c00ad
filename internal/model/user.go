package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Each field corresponds to a column in the
// database.  Handlers define separate response types with JSON
// tags; these structs are used internally by the repository
// layer.  The IsAdmin flag is the only authorization dimension:
// administrators approve bookings and manage meeting rooms,
// everyone else books rooms.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  NickName     – display name shown in booking lists.
//  Email        – address used for captcha and urge notifications.
//  PhoneNumber  – optional contact number.
//  IsFrozen     – frozen accounts cannot log in.
//  IsAdmin      – whether the user is an administrator.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	NickName     string    // users.nick_name
	Email        string    // users.email
	PhoneNumber  *string   // users.phone_number (nullable)
	IsFrozen     bool      // users.is_frozen
	IsAdmin      bool      // users.is_admin
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
