package model

import "time"

// Role values stored in users.role. The role decides which login flow
// accepts a credential: admin credentials are rejected by the customer
// login and vice versa.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User mirrors the `users` table. Username is an email-formatted
// identity string and is unique across the table.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username (email)
	PasswordHash string    // users.password_hash (bcrypt)
	Role         string    // users.role (Admin | User)
	FullName     string    // users.full_name
	CreatedAt    time.Time // users.created_at
}
