package types

import "time"

// Game represents a catalog entry for a video game.
type Game struct {
	// ID is the unique identifier of the game (UUID string).
	ID string `json:"id" db:"id"`

	// ExternalID is the identifier of the game in the upstream metadata
	// provider. Unique when set.
	ExternalID int64 `json:"external_id" db:"external_id"`

	// Title is the game's name.
	Title string `json:"title" db:"title"`

	// Description is the long-form summary of the game.
	Description string `json:"description" db:"description"`

	// CoverKey is the object-storage key of the cover image, empty when
	// no cover has been uploaded.
	CoverKey string `json:"cover_key,omitempty" db:"cover_key"`

	// ReleaseYear is the year of first release, 0 when unknown.
	ReleaseYear int `json:"release_year" db:"release_year"`

	// Platforms is a comma-free list of platforms the game shipped on.
	Platforms []string `json:"platforms" db:"platforms"`

	// Genre is the primary genre label.
	Genre string `json:"genre" db:"genre"`

	// CreatedAt is the timestamp when the game was added.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
