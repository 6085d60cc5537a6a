// Package messaging delivers one message to many users over per-user DM
// channels, strictly one recipient at a time.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rmacedo/guild-console/pkg/discord"
	"github.com/rmacedo/guild-console/pkg/store"
)

// Result is the delivery outcome for a single recipient.
type Result struct {
	UserID  string `json:"userId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Service struct {
	tokens store.BotTokenStore
	client *discord.Client
	// delay is the fixed pause after each recipient. It is the only
	// rate-limit mitigation; Discord's rate-limit headers are not consulted.
	delay time.Duration
}

func New(tokens store.BotTokenStore, client *discord.Client, delay time.Duration) *Service {
	return &Service{tokens: tokens, client: client, delay: delay}
}

// Send opens a DM channel and posts message for every user id, in order. A
// per-recipient failure is recorded and the batch continues; only context
// cancellation stops the loop early, in which case the remaining recipients
// are not attempted.
func (s *Service) Send(ctx context.Context, userIDs []string, message, tokenID string) ([]Result, error) {
	token, err := s.tokens.GetByID(tokenID)
	if err != nil {
		return nil, fmt.Errorf("looking up bot token: %w", err)
	}
	if token == nil {
		return nil, fmt.Errorf("bot token %s: %w", tokenID, store.ErrNotFound)
	}

	slog.Info("sending direct messages", "recipients", len(userIDs))

	results := make([]Result, 0, len(userIDs))
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		results = append(results, s.sendOne(ctx, token.Token, userID, message))

		if err := s.pause(ctx); err != nil {
			return results, err
		}
	}
	return results, nil
}

func (s *Service) sendOne(ctx context.Context, botToken, userID, message string) Result {
	channel, err := s.client.CreateDMChannel(ctx, botToken, userID)
	if err != nil {
		slog.Error("creating DM channel failed", "user_id", userID, "error", err)
		return Result{
			UserID: userID,
			Error:  fmt.Sprintf("failed to create DM channel: %v", err),
		}
	}

	if err := s.client.SendChannelMessage(ctx, botToken, channel.ID, message); err != nil {
		slog.Error("sending message failed", "user_id", userID, "channel_id", channel.ID, "error", err)
		return Result{
			UserID: userID,
			Error:  fmt.Sprintf("failed to send message: %v", err),
		}
	}

	return Result{UserID: userID, Success: true}
}

func (s *Service) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
