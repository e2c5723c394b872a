package types

import "time"

// Review is a rating and optional comment left by an account on a game.
type Review struct {
	// ID is the unique identifier of the review (UUID string).
	ID string `json:"id" db:"id"`

	// AccountID identifies the author.
	AccountID string `json:"account_id" db:"account_id"`

	// GameID identifies the reviewed game.
	GameID string `json:"game_id" db:"game_id"`

	// Rating is the score given to the game, from 1 to 5.
	Rating int `json:"rating" db:"rating"`

	// Comment is the free-form review text.
	Comment string `json:"comment" db:"comment"`

	// CreatedAt is the timestamp when the review was written.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent edit.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
