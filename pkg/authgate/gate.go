// Package authgate implements the password gate and the session tokens it
// issues. A password is matched plain-text against the flat role tables; the
// strongest match wins and the resolved role is carried as an immutable
// session value for the rest of the request's life.
package authgate

import (
	"time"

	"github.com/rmacedo/guild-console/pkg/models"
	"github.com/rmacedo/guild-console/pkg/store"
)

// Identity is the outcome of a password check.
type Identity struct {
	Role models.Role
	// UserID links the matched password row to a console account, when the
	// row has one. Bootstrap and temporary matches carry no identity.
	UserID *string
}

type Gate struct {
	passwords store.PasswordStore
	// bootstrap is the seeded superuser password from configuration. Empty
	// disables it.
	bootstrap string
	now       func() time.Time
}

func NewGate(passwords store.PasswordStore, bootstrapPassword string) *Gate {
	return &Gate{
		passwords: passwords,
		bootstrap: bootstrapPassword,
		now:       time.Now,
	}
}

// Check probes, in order: the bootstrap password, the superuser/admin/regular
// tables, and finally unexpired temporary passwords (which grant regular
// access). No match yields RoleNone.
func (g *Gate) Check(password string) (Identity, error) {
	if password == "" {
		return Identity{Role: models.RoleNone}, nil
	}

	if g.bootstrap != "" && password == g.bootstrap {
		return Identity{Role: models.RoleSuperuser}, nil
	}

	role, userID, err := g.passwords.FindRole(password)
	if err != nil {
		return Identity{Role: models.RoleNone}, err
	}
	if role != models.RoleNone {
		return Identity{Role: role, UserID: userID}, nil
	}

	ok, err := g.passwords.MatchTemporary(password, g.now().UTC())
	if err != nil {
		return Identity{Role: models.RoleNone}, err
	}
	if ok {
		return Identity{Role: models.RoleRegular}, nil
	}

	return Identity{Role: models.RoleNone}, nil
}
