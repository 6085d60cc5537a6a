// Package discord is a minimal typed client for the handful of Discord REST
// endpoints the console uses. Calls carry a bot token per request; the client
// holds no credential state.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://discord.com/api/v10"

// MaxMemberPageSize is Discord's ceiling for one page of the guild member
// list. The console fetches a single page and does not paginate past it.
const MaxMemberPageSize = 1000

// APIError is a non-2xx reply from Discord, preserving the upstream status
// and message so the boundary can propagate them.
type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("discord api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("discord api: status %d", e.Status)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Body: string(data)}
		var parsed struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &parsed) == nil {
			apiErr.Message = parsed.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *Client) Guild(ctx context.Context, token, guildID string) (*Guild, error) {
	var guild Guild
	path := "/guilds/" + url.PathEscape(guildID) + "?with_counts=true"
	if err := c.do(ctx, http.MethodGet, path, token, nil, &guild); err != nil {
		return nil, err
	}
	return &guild, nil
}

// GuildMembers fetches one page of the member list. limit is clamped to
// Discord's 1000-per-page ceiling; there is no pagination beyond the first
// page, so larger guilds come back truncated.
func (c *Client) GuildMembers(ctx context.Context, token, guildID string, limit int) ([]GuildMember, error) {
	if limit <= 0 || limit > MaxMemberPageSize {
		limit = MaxMemberPageSize
	}
	var members []GuildMember
	path := "/guilds/" + url.PathEscape(guildID) + "/members?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (c *Client) GuildRoles(ctx context.Context, token, guildID string) ([]Role, error) {
	var roles []Role
	path := "/guilds/" + url.PathEscape(guildID) + "/roles"
	if err := c.do(ctx, http.MethodGet, path, token, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// CreateDMChannel opens (or reuses) the DM channel between the bot and the
// given user. Discord refuses this for users with DMs closed.
func (c *Client) CreateDMChannel(ctx context.Context, token, recipientID string) (*Channel, error) {
	var channel Channel
	body := map[string]string{"recipient_id": recipientID}
	if err := c.do(ctx, http.MethodPost, "/users/@me/channels", token, body, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

func (c *Client) SendChannelMessage(ctx context.Context, token, channelID, content string) error {
	body := map[string]string{"content": content}
	path := "/channels/" + url.PathEscape(channelID) + "/messages"
	return c.do(ctx, http.MethodPost, path, token, body, nil)
}
