package models

import "time"

// BotToken is a stored Discord bot credential. The token value is opaque to
// the console; it is only ever forwarded in the Authorization header of
// Discord API calls.
type BotToken struct {
	ID          string    `db:"id"`
	Token       string    `db:"token"`
	Description *string   `db:"description"`
	CreatedBy   *string   `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
}
