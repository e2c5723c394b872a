package types

import "time"

// Role is an account's authorization level. Exactly one role per account;
// accounts are created as RoleStandard and changed only through the admin
// role endpoint.
type Role string

const (
	// RoleStandard is the default role assigned at registration.
	RoleStandard Role = "STANDARD"

	// RoleAdministrator grants access to admin-gated routes.
	RoleAdministrator Role = "ADMINISTRATOR"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleAdministrator
}

// Account represents a registered user of the catalog.
type Account struct {
	// ID is the unique identifier of the account (UUID string).
	ID string `json:"id" db:"id"`

	// Name is the account's display name.
	Name string `json:"name" db:"name"`

	// Email is the unique login identifier. Lookups are exact and
	// case-sensitive.
	Email string `json:"email" db:"email"`

	// Role is the account's authorization level.
	Role Role `json:"role" db:"role"`

	// PasswordHash stores the bcrypt hash of the account's password.
	// Never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
