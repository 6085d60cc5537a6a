package models

import "time"

// UserGroup is a sharing construct with a leader and invited members. Groups
// are independent of extraction lists.
type UserGroup struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	LeaderID    string    `db:"leader_id"`
	CreatedAt   time.Time `db:"created_at"`
	// MemberCount is filled by the aggregate group query, not stored.
	MemberCount int `db:"member_count" json:"member_count"`
}

// GroupMember links a console user to a group. The leader is added as a
// member when the group is created.
type GroupMember struct {
	ID          string    `db:"id"`
	GroupID     string    `db:"group_id"`
	UserID      string    `db:"user_id"`
	DisplayName *string   `db:"display_name"`
	JoinedAt    time.Time `db:"joined_at"`
}
