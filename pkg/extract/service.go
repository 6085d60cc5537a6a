// Package extract turns one Discord guild member page into a persisted user
// list, applying the caller's filter set on the way.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/xid"

	"github.com/rmacedo/guild-console/pkg/discord"
	"github.com/rmacedo/guild-console/pkg/models"
	"github.com/rmacedo/guild-console/pkg/store"
)

const defaultRoleName = "Member"

// Filters are conjunctive: every set filter must hold for a member to be
// kept. The 24h and 72h windows are independent cutoffs, not additive.
type Filters struct {
	Role            string `json:"role"`
	RoleID          string `json:"roleId"`
	ActiveWithin24h bool   `json:"activeWithin24h"`
	ActiveWithin72h bool   `json:"activeWithin72h"`
	OnlineOnly      bool   `json:"onlineOnly"`
}

type Request struct {
	ServerID        string
	TokenID         string
	Filters         *Filters
	ListName        string
	ListDescription string
	CreatedBy       *string
}

type ServerInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IconURL     string `json:"icon_url,omitempty"`
	MemberCount int    `json:"member_count"`
}

type Result struct {
	Message  string
	ListID   string
	ListName string
	Users    []models.Member
	Server   ServerInfo
}

type Service struct {
	tokens  store.BotTokenStore
	lists   store.UserListStore
	members store.MemberStore
	client  *discord.Client
	// roleCache keeps the guild role list between extractions against the
	// same guild, bounding how often the roles endpoint is hit.
	roleCache    *ttlcache.Cache[string, []discord.Role]
	roleCacheTTL time.Duration
	pageLimit    int
	now          func() time.Time
}

func New(tokens store.BotTokenStore, lists store.UserListStore, members store.MemberStore,
	client *discord.Client, pageLimit int, roleCacheTTL time.Duration) *Service {
	cache := ttlcache.New[string, []discord.Role](
		ttlcache.WithTTL[string, []discord.Role](roleCacheTTL),
	)
	go cache.Start()
	return &Service{
		tokens:       tokens,
		lists:        lists,
		members:      members,
		client:       client,
		roleCache:    cache,
		roleCacheTTL: roleCacheTTL,
		pageLimit:    pageLimit,
		now:          time.Now,
	}
}

// Extract runs the whole pipeline: resolve the bot token, fetch guild
// metadata, fetch one member page, resolve role names, filter, persist. There
// are no retries; any Discord error aborts the run and surfaces as-is.
func (s *Service) Extract(ctx context.Context, req Request) (*Result, error) {
	token, err := s.tokens.GetByID(req.TokenID)
	if err != nil {
		return nil, fmt.Errorf("looking up bot token: %w", err)
	}
	if token == nil {
		return nil, fmt.Errorf("bot token %s: %w", req.TokenID, store.ErrNotFound)
	}

	guild, err := s.client.Guild(ctx, token.Token, req.ServerID)
	if err != nil {
		return nil, err
	}
	slog.Info("guild resolved", "guild_id", guild.ID, "name", guild.Name)

	page, err := s.client.GuildMembers(ctx, token.Token, req.ServerID, s.pageLimit)
	if err != nil {
		return nil, err
	}
	slog.Info("member page fetched", "guild_id", guild.ID, "members", len(page))

	roles := s.guildRoles(ctx, token.Token, req.ServerID)

	now := s.now().UTC()
	snapshot := make([]models.Member, 0, len(page))
	for _, gm := range page {
		snapshot = append(snapshot, snapshotMember(gm, roles))
	}
	filtered := applyFilters(snapshot, req.Filters, now)

	listName := req.ListName
	if listName == "" {
		listName = fmt.Sprintf("%s member list", guild.Name)
	}
	listDescription := req.ListDescription
	if listDescription == "" {
		listDescription = "Extracted at " + now.Format(time.RFC3339)
	}

	list, err := s.lists.Create(listName, listDescription, req.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("creating user list: %w", err)
	}

	rows := make([]models.Member, len(filtered))
	for i, m := range filtered {
		m.ID = xid.New().String()
		m.ListID = list.ID
		m.CreatedAt = now
		rows[i] = m
	}

	if err := s.members.AddBatch(rows); err != nil {
		// Best-effort compensation: drop the just-created list so a failed
		// insert does not leave an empty list behind. Not atomic with the
		// insert, so a crash in between can still orphan the list.
		if delErr := s.lists.Delete(list.ID); delErr != nil {
			slog.Error("compensating list delete failed", "list_id", list.ID, "error", delErr)
		}
		return nil, fmt.Errorf("saving members: %w", err)
	}

	memberCount := guild.ApproximateMemberCount
	if memberCount == 0 {
		memberCount = len(rows)
	}

	return &Result{
		Message:  fmt.Sprintf("%d users extracted", len(rows)),
		ListID:   list.ID,
		ListName: list.Name,
		Users:    rows,
		Server: ServerInfo{
			ID:          guild.ID,
			Name:        guild.Name,
			IconURL:     guild.IconURL(),
			MemberCount: memberCount,
		},
	}, nil
}

// guildRoles returns the guild's role list, from cache when fresh. A roles
// fetch failure is not fatal: extraction proceeds with no role data and every
// member falls back to the default role name.
func (s *Service) guildRoles(ctx context.Context, token, guildID string) []discord.Role {
	if item := s.roleCache.Get(guildID); item != nil {
		return item.Value()
	}
	roles, err := s.client.GuildRoles(ctx, token, guildID)
	if err != nil {
		slog.Error("fetching guild roles failed, proceeding without role data",
			"guild_id", guildID, "error", err)
		return nil
	}
	s.roleCache.Set(guildID, roles, s.roleCacheTTL)
	return roles
}

// snapshotMember flattens one API member into a snapshot row. The member's
// role is the held role with the highest position; on a position tie the
// first role encountered in the guild's role list wins.
func snapshotMember(gm discord.GuildMember, roles []discord.Role) models.Member {
	m := models.Member{
		DiscordID: gm.User.ID,
		Username:  gm.User.Username,
	}
	if m.Username == "" {
		m.Username = gm.Nick
	}
	if m.Username == "" {
		m.Username = "User_" + gm.User.ID
	}

	roleName := defaultRoleName
	if len(gm.Roles) > 0 {
		held := make(map[string]bool, len(gm.Roles))
		for _, id := range gm.Roles {
			held[id] = true
		}
		var best *discord.Role
		for i := range roles {
			r := &roles[i]
			if !held[r.ID] {
				continue
			}
			if best == nil || r.Position > best.Position {
				best = r
			}
		}
		if best != nil {
			roleName = best.Name
			id := best.ID
			m.RoleID = &id
		}
	}
	m.Role = &roleName

	if p := gm.Presence; p != nil {
		switch p.Status {
		case "online", "idle", "dnd":
			m.IsOnline = true
		}
		if p.LastActivity != nil {
			t := p.LastActivity.Time
			m.LastActive = &t
		}
	}
	return m
}

func applyFilters(members []models.Member, f *Filters, now time.Time) []models.Member {
	if f == nil {
		return members
	}
	out := make([]models.Member, 0, len(members))
	dayAgo := now.Add(-24 * time.Hour)
	threeDaysAgo := now.Add(-72 * time.Hour)
	for _, m := range members {
		if f.Role != "" && (m.Role == nil || *m.Role != f.Role) {
			continue
		}
		if f.RoleID != "" && (m.RoleID == nil || *m.RoleID != f.RoleID) {
			continue
		}
		if f.ActiveWithin24h && (m.LastActive == nil || !m.LastActive.After(dayAgo)) {
			continue
		}
		if f.ActiveWithin72h && (m.LastActive == nil || !m.LastActive.After(threeDaysAgo)) {
			continue
		}
		if f.OnlineOnly && !m.IsOnline {
			continue
		}
		out = append(out, m)
	}
	return out
}
