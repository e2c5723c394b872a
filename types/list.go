package types

import "time"

// List is a named, ordered collection of games curated by an account.
type List struct {
	// ID is the unique identifier of the list (UUID string).
	ID string `json:"id" db:"id"`

	// AccountID identifies the list's owner.
	AccountID string `json:"account_id" db:"account_id"`

	// Name is the list's display name.
	Name string `json:"name" db:"name"`

	// Public controls whether other accounts can read the list.
	Public bool `json:"public" db:"public"`

	// GameIDs are the games in the list, in insertion order. Populated on
	// single-list reads; empty in paginated listings.
	GameIDs []string `json:"game_ids,omitempty" db:"-"`

	// CreatedAt is the timestamp when the list was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
