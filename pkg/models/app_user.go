package models

import "time"

// AppUser is a console account. Access password rows may link to one, which is
// how a password match resolves to an identity for group ownership and
// created_by attribution. Invites resolve an email to one of these rows.
type AppUser struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Name      *string   `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}
