package store

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is wrapped by callers that need a missing row to surface as a
// distinct condition at the HTTP boundary. Store lookups themselves return
// (nil, nil) when no row matches.
var ErrNotFound = errors.New("not found")

// Stores bundles every store behind its interface.
type Stores struct {
	Tokens       BotTokenStore
	Lists        UserListStore
	Members      MemberStore
	Groups       GroupStore
	GroupMembers GroupMemberStore
	Passwords    PasswordStore
	Users        AppUserStore
}

func New(db *sqlx.DB) Stores {
	return Stores{
		Tokens:       NewBotTokens(db),
		Lists:        NewUserLists(db),
		Members:      NewMembers(db),
		Groups:       NewGroups(db),
		GroupMembers: NewGroupMembers(db),
		Passwords:    NewPasswords(db),
		Users:        NewAppUsers(db),
	}
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}

// Migrate applies all embedded migrations.
func Migrate(db *sqlx.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("preparing migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
