package models

import "time"

// AccessPassword is a flat password row from one of the role tables
// (super_users, admins, regular_users). A plain-text match against one of
// these tables grants the corresponding role for the issued session.
type AccessPassword struct {
	ID        string    `db:"id"`
	UserID    *string   `db:"user_id"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"created_at"`
}

// TemporaryPassword grants regular access until it expires. Expired rows are
// never matched and are swept by the background job.
type TemporaryPassword struct {
	ID          string    `db:"id" json:"id"`
	Password    string    `db:"password" json:"password"`
	Description *string   `db:"description" json:"description"`
	CreatedBy   *string   `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	ExpiresAt   time.Time `db:"expires_at" json:"expires_at"`
}

// Expired reports whether the password is no longer valid at now.
func (p *TemporaryPassword) Expired(now time.Time) bool {
	return p.ExpiresAt.Before(now)
}
