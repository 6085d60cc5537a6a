package store

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/rmacedo/guild-console/pkg/models"
)

var selectGroups = `
SELECT g.*, COUNT(gm.id) AS member_count
FROM discord_user_groups g
LEFT JOIN discord_group_members gm ON gm.group_id = g.id
`

type GroupStore interface {
	Create(name, description, leaderID string) (*models.UserGroup, error)
	GetByID(id string) (*models.UserGroup, error)
	// GetAllForUser returns groups the user leads or belongs to, newest first.
	GetAllForUser(userID string) ([]*models.UserGroup, error)
	IsLeader(groupID, userID string) (bool, error)
	Delete(id string) error
}

type postgresGroupStore struct {
	db *sqlx.DB
}

func NewGroups(dbconn *sqlx.DB) GroupStore {
	return &postgresGroupStore{db: dbconn}
}

func (s *postgresGroupStore) Create(name, description, leaderID string) (*models.UserGroup, error) {
	row := &models.UserGroup{
		ID:        xid.New().String(),
		Name:      name,
		LeaderID:  leaderID,
		CreatedAt: time.Now().UTC(),
	}
	if description != "" {
		row.Description = &description
	}

	stmt := `
	INSERT INTO discord_user_groups (id, name, description, leader_id, created_at)
	VALUES (:id, :name, :description, :leader_id, :created_at);
	`
	_, err := s.db.NamedExec(stmt, row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *postgresGroupStore) GetByID(id string) (*models.UserGroup, error) {
	var group models.UserGroup
	err := s.db.Get(&group, selectGroups+" WHERE g.id = $1 GROUP BY g.id;", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &group, err
}

func (s *postgresGroupStore) GetAllForUser(userID string) ([]*models.UserGroup, error) {
	stmt := selectGroups + `
	WHERE g.leader_id = $1
	   OR g.id IN (SELECT group_id FROM discord_group_members WHERE user_id = $1)
	GROUP BY g.id
	ORDER BY g.created_at DESC;
	`
	var groups []*models.UserGroup
	err := s.db.Select(&groups, stmt, userID)
	if err == sql.ErrNoRows {
		return []*models.UserGroup{}, nil
	}
	return groups, err
}

func (s *postgresGroupStore) IsLeader(groupID, userID string) (bool, error) {
	var count int
	err := s.db.Get(&count,
		`SELECT COUNT(*) FROM discord_user_groups WHERE id = $1 AND leader_id = $2;`,
		groupID, userID)
	return count > 0, err
}

// Delete removes the group; memberships go with it via the cascade constraint.
func (s *postgresGroupStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM discord_user_groups WHERE id = $1;`, id)
	return err
}
