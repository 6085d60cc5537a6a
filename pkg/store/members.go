package store

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/rmacedo/guild-console/pkg/models"
)

var selectMembers = `SELECT m.* FROM discord_users m`

type MemberStore interface {
	// AddBatch inserts all rows in a single statement. Callers fill every
	// field including ID and CreatedAt.
	AddBatch(members []models.Member) error
	GetByListID(listID string) ([]*models.Member, error)
	CountByListID(listID string) (int, error)
}

type postgresMemberStore struct {
	db *sqlx.DB
}

func NewMembers(dbconn *sqlx.DB) MemberStore {
	return &postgresMemberStore{db: dbconn}
}

func (s *postgresMemberStore) AddBatch(members []models.Member) error {
	if len(members) == 0 {
		return nil
	}
	stmt := `
	INSERT INTO discord_users (id, discord_id, username, role, role_id, last_active, is_online, list_id, created_at)
	VALUES (:id, :discord_id, :username, :role, :role_id, :last_active, :is_online, :list_id, :created_at);
	`
	_, err := s.db.NamedExec(stmt, members)
	return err
}

func (s *postgresMemberStore) GetByListID(listID string) ([]*models.Member, error) {
	var members []*models.Member
	err := s.db.Select(&members, selectMembers+" WHERE m.list_id = $1 ORDER BY m.username;", listID)
	if err == sql.ErrNoRows {
		return []*models.Member{}, nil
	}
	return members, err
}

func (s *postgresMemberStore) CountByListID(listID string) (int, error) {
	var count int
	err := s.db.Get(&count, `SELECT COUNT(*) FROM discord_users WHERE list_id = $1;`, listID)
	return count, err
}
