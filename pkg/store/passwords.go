package store

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/rmacedo/guild-console/pkg/models"
)

// roleTables is probed in priority order: the strongest role that matches a
// password wins.
var roleTables = []struct {
	table string
	role  models.Role
}{
	{"super_users", models.RoleSuperuser},
	{"admins", models.RoleAdmin},
	{"regular_users", models.RoleRegular},
}

type PasswordStore interface {
	// FindRole matches password against the flat role tables. Returns
	// RoleNone when nothing matches. The user id links the matched row to a
	// console account, when one is linked.
	FindRole(password string) (models.Role, *string, error)
	AddAccess(role models.Role, password string, userID *string) (*models.AccessPassword, error)

	CreateTemporary(password, description string, expiresIn time.Duration, createdBy *string) (*models.TemporaryPassword, error)
	// MatchTemporary reports whether an unexpired temporary password row
	// matches at now.
	MatchTemporary(password string, now time.Time) (bool, error)
	GetAllTemporary() ([]*models.TemporaryPassword, error)
	DeleteTemporary(id string) error
	// DeleteExpired removes temporary passwords whose expiry is before now
	// and returns how many were dropped.
	DeleteExpired(now time.Time) (int64, error)
}

type postgresPasswordStore struct {
	db *sqlx.DB
}

func NewPasswords(dbconn *sqlx.DB) PasswordStore {
	return &postgresPasswordStore{db: dbconn}
}

func (s *postgresPasswordStore) FindRole(password string) (models.Role, *string, error) {
	for _, rt := range roleTables {
		var row models.AccessPassword
		err := s.db.Get(&row, `SELECT * FROM `+rt.table+` WHERE password = $1;`, password)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return models.RoleNone, nil, err
		}
		return rt.role, row.UserID, nil
	}
	return models.RoleNone, nil, nil
}

func (s *postgresPasswordStore) AddAccess(role models.Role, password string, userID *string) (*models.AccessPassword, error) {
	var table string
	switch role {
	case models.RoleSuperuser:
		table = "super_users"
	case models.RoleAdmin:
		table = "admins"
	default:
		table = "regular_users"
	}
	row := &models.AccessPassword{
		ID:        xid.New().String(),
		UserID:    userID,
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.NamedExec(
		`INSERT INTO `+table+` (id, user_id, password, created_at) VALUES (:id, :user_id, :password, :created_at);`,
		row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *postgresPasswordStore) CreateTemporary(password, description string, expiresIn time.Duration, createdBy *string) (*models.TemporaryPassword, error) {
	now := time.Now().UTC()
	row := &models.TemporaryPassword{
		ID:        xid.New().String(),
		Password:  password,
		CreatedBy: createdBy,
		CreatedAt: now,
		ExpiresAt: now.Add(expiresIn),
	}
	if description != "" {
		row.Description = &description
	}

	stmt := `
	INSERT INTO temporary_passwords (id, password, description, created_by, created_at, expires_at)
	VALUES (:id, :password, :description, :created_by, :created_at, :expires_at);
	`
	_, err := s.db.NamedExec(stmt, row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *postgresPasswordStore) MatchTemporary(password string, now time.Time) (bool, error) {
	var count int
	err := s.db.Get(&count,
		`SELECT COUNT(*) FROM temporary_passwords WHERE password = $1 AND expires_at >= $2;`,
		password, now)
	return count > 0, err
}

func (s *postgresPasswordStore) GetAllTemporary() ([]*models.TemporaryPassword, error) {
	var rows []*models.TemporaryPassword
	err := s.db.Select(&rows, `SELECT * FROM temporary_passwords ORDER BY expires_at;`)
	if err == sql.ErrNoRows {
		return []*models.TemporaryPassword{}, nil
	}
	return rows, err
}

func (s *postgresPasswordStore) DeleteTemporary(id string) error {
	_, err := s.db.Exec(`DELETE FROM temporary_passwords WHERE id = $1;`, id)
	return err
}

func (s *postgresPasswordStore) DeleteExpired(now time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM temporary_passwords WHERE expires_at < $1;`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
