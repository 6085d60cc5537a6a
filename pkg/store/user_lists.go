package store

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/rmacedo/guild-console/pkg/models"
)

// Member counts come from one aggregate query rather than a count query per
// list row.
var selectUserLists = `
SELECT l.*, COUNT(m.id) AS member_count
FROM discord_user_lists l
LEFT JOIN discord_users m ON m.list_id = l.id
`

type UserListStore interface {
	Create(name, description string, createdBy *string) (*models.UserList, error)
	GetByID(id string) (*models.UserList, error)
	GetAll() ([]*models.UserList, error)
	Rename(id, name string) error
	Delete(id string) error
}

type postgresUserListStore struct {
	db *sqlx.DB
}

func NewUserLists(dbconn *sqlx.DB) UserListStore {
	return &postgresUserListStore{db: dbconn}
}

func (s *postgresUserListStore) Create(name, description string, createdBy *string) (*models.UserList, error) {
	row := &models.UserList{
		ID:        xid.New().String(),
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if description != "" {
		row.Description = &description
	}

	stmt := `
	INSERT INTO discord_user_lists (id, name, description, created_by, created_at)
	VALUES (:id, :name, :description, :created_by, :created_at);
	`
	_, err := s.db.NamedExec(stmt, row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *postgresUserListStore) GetByID(id string) (*models.UserList, error) {
	var list models.UserList
	err := s.db.Get(&list, selectUserLists+" WHERE l.id = $1 GROUP BY l.id;", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &list, err
}

func (s *postgresUserListStore) GetAll() ([]*models.UserList, error) {
	var lists []*models.UserList
	err := s.db.Select(&lists, selectUserLists+" GROUP BY l.id ORDER BY l.created_at DESC;")
	if err == sql.ErrNoRows {
		return []*models.UserList{}, nil
	}
	return lists, err
}

func (s *postgresUserListStore) Rename(id, name string) error {
	_, err := s.db.Exec(`UPDATE discord_user_lists SET name = $1 WHERE id = $2;`, name, id)
	return err
}

// Delete removes the list; its members go with it via the cascade constraint.
func (s *postgresUserListStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM discord_user_lists WHERE id = $1;`, id)
	return err
}
