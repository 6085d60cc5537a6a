package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/rmacedo/guild-console/pkg/models"
)

var selectAppUsers = `SELECT u.* FROM app_users u`

type AppUserStore interface {
	Add(email, name string) (*models.AppUser, error)
	GetByID(id string) (*models.AppUser, error)
	GetByEmail(email string) (*models.AppUser, error)
	GetAll() ([]*models.AppUser, error)
}

type postgresAppUserStore struct {
	db *sqlx.DB
}

func NewAppUsers(dbconn *sqlx.DB) AppUserStore {
	return &postgresAppUserStore{db: dbconn}
}

func (s *postgresAppUserStore) Add(email, name string) (*models.AppUser, error) {
	row := &models.AppUser{
		ID:        xid.New().String(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		CreatedAt: time.Now().UTC(),
	}
	if name != "" {
		row.Name = &name
	}
	stmt := `
	INSERT INTO app_users (id, email, name, created_at)
	VALUES (:id, :email, :name, :created_at);
	`
	_, err := s.db.NamedExec(stmt, row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *postgresAppUserStore) GetByID(id string) (*models.AppUser, error) {
	var user models.AppUser
	err := s.db.Get(&user, selectAppUsers+" WHERE u.id = $1;", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &user, err
}

func (s *postgresAppUserStore) GetByEmail(email string) (*models.AppUser, error) {
	var user models.AppUser
	err := s.db.Get(&user, selectAppUsers+" WHERE lower(u.email) = lower($1);", strings.TrimSpace(email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &user, err
}

func (s *postgresAppUserStore) GetAll() ([]*models.AppUser, error) {
	var users []*models.AppUser
	err := s.db.Select(&users, selectAppUsers+" ORDER BY u.email;")
	if err == sql.ErrNoRows {
		return []*models.AppUser{}, nil
	}
	return users, err
}
