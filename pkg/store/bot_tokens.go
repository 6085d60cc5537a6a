package store

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/rmacedo/guild-console/pkg/models"
)

var selectBotTokens = `SELECT t.* FROM discord_bot_tokens t`

type BotTokenStore interface {
	Add(token, description string, createdBy *string) (*models.BotToken, error)
	GetByID(id string) (*models.BotToken, error)
	GetAll() ([]*models.BotToken, error)
	Delete(id string) error
}

type postgresBotTokenStore struct {
	db *sqlx.DB
}

func NewBotTokens(dbconn *sqlx.DB) BotTokenStore {
	return &postgresBotTokenStore{db: dbconn}
}

func (b *postgresBotTokenStore) Add(token, description string, createdBy *string) (*models.BotToken, error) {
	row := &models.BotToken{
		ID:        xid.New().String(),
		Token:     token,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if description != "" {
		row.Description = &description
	}

	stmt := `
	INSERT INTO discord_bot_tokens (id, token, description, created_by, created_at)
	VALUES (:id, :token, :description, :created_by, :created_at);
	`
	_, err := b.db.NamedExec(stmt, row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (b *postgresBotTokenStore) GetByID(id string) (*models.BotToken, error) {
	var token models.BotToken
	err := b.db.Get(&token, selectBotTokens+" WHERE t.id = $1;", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &token, err
}

func (b *postgresBotTokenStore) GetAll() ([]*models.BotToken, error) {
	var tokens []*models.BotToken
	err := b.db.Select(&tokens, selectBotTokens+" ORDER BY t.created_at DESC;")
	if err == sql.ErrNoRows {
		return []*models.BotToken{}, nil
	}
	return tokens, err
}

func (b *postgresBotTokenStore) Delete(id string) error {
	_, err := b.db.Exec(`DELETE FROM discord_bot_tokens WHERE id = $1;`, id)
	return err
}
