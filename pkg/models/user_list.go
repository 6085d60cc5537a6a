package models

import "time"

// UserList is a named snapshot of members produced by one extraction run.
// Deleting a list cascades to its members.
type UserList struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	CreatedBy   *string   `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	// MemberCount is filled by the aggregate list query, not stored.
	MemberCount int `db:"member_count" json:"member_count"`
}

// Member is one extracted guild member. Rows are immutable snapshots; they are
// written once per extraction and never updated in place.
type Member struct {
	ID         string     `db:"id" json:"id"`
	DiscordID  string     `db:"discord_id" json:"discord_id"`
	Username   string     `db:"username" json:"username"`
	Role       *string    `db:"role" json:"role"`
	RoleID     *string    `db:"role_id" json:"role_id"`
	LastActive *time.Time `db:"last_active" json:"last_active"`
	IsOnline   bool       `db:"is_online" json:"is_online"`
	ListID     string     `db:"list_id" json:"list_id"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
