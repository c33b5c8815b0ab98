package model

import "time"

// Roles recognised by the application.  Admins manage cities and
// events; users browse and reserve.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an application user record as stored in the
// `users` table.  The json tags are omitted because these structs are
// used internally by the repository layer; handlers define separate
// response types so that PasswordHash never leaves the process.
//
// Fields:
//
//	ID           – UUID primary key.
//	Name         – display name.
//	Email        – unique, normalised (lower-cased) email address.
//	Phone        – contact phone number.
//	PasswordHash – bcrypt hashed password.
//	Role         – admin or user.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	Name         string    // users.name
	Email        string    // users.email
	Phone        string    // users.phone
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
