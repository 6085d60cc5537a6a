package store

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/rmacedo/guild-console/pkg/models"
)

var selectGroupMembers = `SELECT gm.* FROM discord_group_members gm`

type GroupMemberStore interface {
	Add(groupID, userID string) (*models.GroupMember, error)
	GetByGroup(groupID string) ([]*models.GroupMember, error)
	Exists(groupID, userID string) (bool, error)
	GetByID(id string) (*models.GroupMember, error)
	SetDisplayName(id, displayName string) error
	Remove(id string) error
}

type postgresGroupMemberStore struct {
	db *sqlx.DB
}

func NewGroupMembers(dbconn *sqlx.DB) GroupMemberStore {
	return &postgresGroupMemberStore{db: dbconn}
}

func (s *postgresGroupMemberStore) Add(groupID, userID string) (*models.GroupMember, error) {
	row := &models.GroupMember{
		ID:       xid.New().String(),
		GroupID:  groupID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
	stmt := `
	INSERT INTO discord_group_members (id, group_id, user_id, display_name, joined_at)
	VALUES (:id, :group_id, :user_id, :display_name, :joined_at);
	`
	_, err := s.db.NamedExec(stmt, row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *postgresGroupMemberStore) GetByGroup(groupID string) ([]*models.GroupMember, error) {
	var members []*models.GroupMember
	err := s.db.Select(&members, selectGroupMembers+" WHERE gm.group_id = $1 ORDER BY gm.joined_at;", groupID)
	if err == sql.ErrNoRows {
		return []*models.GroupMember{}, nil
	}
	return members, err
}

func (s *postgresGroupMemberStore) Exists(groupID, userID string) (bool, error) {
	var count int
	err := s.db.Get(&count,
		`SELECT COUNT(*) FROM discord_group_members WHERE group_id = $1 AND user_id = $2;`,
		groupID, userID)
	return count > 0, err
}

func (s *postgresGroupMemberStore) GetByID(id string) (*models.GroupMember, error) {
	var member models.GroupMember
	err := s.db.Get(&member, selectGroupMembers+" WHERE gm.id = $1;", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &member, err
}

func (s *postgresGroupMemberStore) SetDisplayName(id, displayName string) error {
	_, err := s.db.Exec(`UPDATE discord_group_members SET display_name = $1 WHERE id = $2;`, displayName, id)
	return err
}

func (s *postgresGroupMemberStore) Remove(id string) error {
	_, err := s.db.Exec(`DELETE FROM discord_group_members WHERE id = $1;`, id)
	return err
}
