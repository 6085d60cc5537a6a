package discord

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Guild struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Icon                   string `json:"icon"`
	ApproximateMemberCount int    `json:"approximate_member_count"`
}

// IconURL returns the CDN URL for the guild icon, or "" when the guild has
// none.
func (g *Guild) IconURL() string {
	if g.Icon == "" {
		return ""
	}
	return fmt.Sprintf("https://cdn.discordapp.com/icons/%s/%s.png", g.ID, g.Icon)
}

type Presence struct {
	Status       string     `json:"status"`
	LastActivity *Timestamp `json:"last_activity"`
}

type GuildMember struct {
	User     User      `json:"user"`
	Nick     string    `json:"nick"`
	Roles    []string  `json:"roles"`
	Presence *Presence `json:"presence"`
}

type Role struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type Channel struct {
	ID   string `json:"id"`
	Type int    `json:"type"`
}

// Timestamp accepts the formats Discord uses for activity times: an RFC 3339
// string or a unix timestamp in milliseconds.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("parsing timestamp %q: %w", raw, err)
		}
		t.Time = parsed
		return nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing timestamp %s: %w", s, err)
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}
