package types

import "time"

// LibraryStatus describes an account's relationship with a game in its
// library.
type LibraryStatus string

const (
	StatusPlaying   LibraryStatus = "PLAYING"
	StatusCompleted LibraryStatus = "COMPLETED"
	StatusWishlist  LibraryStatus = "WISHLIST"
	StatusDropped   LibraryStatus = "DROPPED"
)

// Valid reports whether the status is one of the known values.
func (s LibraryStatus) Valid() bool {
	switch s {
	case StatusPlaying, StatusCompleted, StatusWishlist, StatusDropped:
		return true
	}
	return false
}

// LibraryEntry links an account to a game it tracks. At most one entry per
// (account, game) pair.
type LibraryEntry struct {
	// ID is the unique identifier of the entry (UUID string).
	ID string `json:"id" db:"id"`

	// AccountID identifies the owning account.
	AccountID string `json:"account_id" db:"account_id"`

	// GameID identifies the tracked game.
	GameID string `json:"game_id" db:"game_id"`

	// Status is the account's progress status for the game.
	Status LibraryStatus `json:"status" db:"status"`

	// Favorite marks the game as a favorite.
	Favorite bool `json:"favorite" db:"favorite"`

	// CreatedAt is the timestamp when the entry was added.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
