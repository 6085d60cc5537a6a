package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rmacedo/guild-console/pkg/models"
)

// The store SQL sticks to the subset SQLite also understands ($N
// placeholders, ON DELETE CASCADE, GROUP BY primary key), so tests run
// against an in-memory database.
var testSchema = `
CREATE TABLE app_users (
    id TEXT PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    name TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE super_users (
    id TEXT PRIMARY KEY,
    user_id TEXT REFERENCES app_users(id),
    password TEXT UNIQUE NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE admins (
    id TEXT PRIMARY KEY,
    user_id TEXT REFERENCES app_users(id),
    password TEXT UNIQUE NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE regular_users (
    id TEXT PRIMARY KEY,
    user_id TEXT REFERENCES app_users(id),
    password TEXT UNIQUE NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE temporary_passwords (
    id TEXT PRIMARY KEY,
    password TEXT NOT NULL,
    description TEXT,
    created_by TEXT,
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL
);
CREATE TABLE discord_bot_tokens (
    id TEXT PRIMARY KEY,
    token TEXT NOT NULL,
    description TEXT,
    created_by TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE discord_user_lists (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    created_by TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE discord_users (
    id TEXT PRIMARY KEY,
    discord_id TEXT NOT NULL,
    username TEXT NOT NULL,
    role TEXT,
    role_id TEXT,
    last_active TIMESTAMP,
    is_online BOOLEAN NOT NULL DEFAULT FALSE,
    list_id TEXT NOT NULL REFERENCES discord_user_lists(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE discord_user_groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    leader_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE discord_group_members (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL REFERENCES discord_user_groups(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    display_name TEXT,
    joined_at TIMESTAMP NOT NULL
);
`

var testDBSeq int

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared&_foreign_keys=on", testDBSeq)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func makeMember(discordID, listID string) models.Member {
	return models.Member{
		ID:        discordID + "-" + listID,
		DiscordID: discordID,
		Username:  "user_" + discordID,
		ListID:    listID,
		CreatedAt: time.Now().UTC(),
	}
}

func TestBotTokenStore(t *testing.T) {
	db := openTestDB(t)
	tokens := NewBotTokens(db)

	created, err := tokens.Add("bot-secret", "main bot", nil)
	if err != nil {
		t.Fatalf("add token: %v", err)
	}
	if created.ID == "" || created.Token != "bot-secret" {
		t.Fatalf("unexpected token row: %+v", created)
	}

	got, err := tokens.GetByID(created.ID)
	if err != nil || got == nil || got.Token != "bot-secret" {
		t.Fatalf("get by id: %v %+v", err, got)
	}
	if got.Description == nil || *got.Description != "main bot" {
		t.Fatalf("description not stored: %+v", got)
	}

	missing, err := tokens.GetByID("nope")
	if err != nil || missing != nil {
		t.Fatalf("missing token should be (nil, nil), got %v %+v", err, missing)
	}

	all, err := tokens.GetAll()
	if err != nil || len(all) != 1 {
		t.Fatalf("get all: %v len=%d", err, len(all))
	}

	if err := tokens.Delete(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	gone, err := tokens.GetByID(created.ID)
	if err != nil || gone != nil {
		t.Fatalf("token should be gone, got %v %+v", err, gone)
	}
}

func TestUserListMemberCountAndCascade(t *testing.T) {
	db := openTestDB(t)
	lists := NewUserLists(db)
	members := NewMembers(db)

	list, err := lists.Create("extraction one", "", nil)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	empty, err := lists.Create("empty list", "", nil)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}

	batch := []models.Member{
		makeMember("1001", list.ID),
		makeMember("1002", list.ID),
		makeMember("1003", list.ID),
	}
	if err := members.AddBatch(batch); err != nil {
		t.Fatalf("add batch: %v", err)
	}

	all, err := lists.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	counts := map[string]int{}
	for _, l := range all {
		counts[l.ID] = l.MemberCount
	}
	if counts[list.ID] != 3 || counts[empty.ID] != 0 {
		t.Fatalf("member counts wrong: %v", counts)
	}

	got, err := lists.GetByID(list.ID)
	if err != nil || got == nil || got.MemberCount != 3 {
		t.Fatalf("get by id: %v %+v", err, got)
	}

	if err := lists.Rename(list.ID, "renamed"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, _ = lists.GetByID(list.ID)
	if got.Name != "renamed" {
		t.Fatalf("rename not applied: %+v", got)
	}

	// Deleting the list must take every member row with it.
	if err := lists.Delete(list.ID); err != nil {
		t.Fatalf("delete list: %v", err)
	}
	count, err := members.CountByListID(list.ID)
	if err != nil {
		t.Fatalf("count members: %v", err)
	}
	if count != 0 {
		t.Fatalf("cascade delete left %d member rows", count)
	}
}

func TestMemberStoreEmptyBatch(t *testing.T) {
	db := openTestDB(t)
	members := NewMembers(db)
	if err := members.AddBatch(nil); err != nil {
		t.Fatalf("empty batch should be a no-op: %v", err)
	}
}

func TestGroupStoreMembershipAndCascade(t *testing.T) {
	db := openTestDB(t)
	groups := NewGroups(db)
	groupMembers := NewGroupMembers(db)

	group, err := groups.Create("raiders", "weekend crew", "leader-1")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	if _, err := groupMembers.Add(group.ID, "leader-1"); err != nil {
		t.Fatalf("add leader: %v", err)
	}
	invited, err := groupMembers.Add(group.ID, "user-2")
	if err != nil {
		t.Fatalf("add member: %v", err)
	}

	// Leader sees the group by leadership, the invitee by membership.
	for _, userID := range []string{"leader-1", "user-2"} {
		got, err := groups.GetAllForUser(userID)
		if err != nil || len(got) != 1 || got[0].ID != group.ID {
			t.Fatalf("GetAllForUser(%s): %v %+v", userID, err, got)
		}
		if got[0].MemberCount != 2 {
			t.Fatalf("member count for %s: %d", userID, got[0].MemberCount)
		}
	}
	none, err := groups.GetAllForUser("stranger")
	if err != nil || len(none) != 0 {
		t.Fatalf("stranger should see no groups: %v %+v", err, none)
	}

	isLeader, err := groups.IsLeader(group.ID, "leader-1")
	if err != nil || !isLeader {
		t.Fatalf("leader check: %v %v", err, isLeader)
	}
	isLeader, err = groups.IsLeader(group.ID, "user-2")
	if err != nil || isLeader {
		t.Fatalf("non-leader check: %v %v", err, isLeader)
	}

	exists, err := groupMembers.Exists(group.ID, "user-2")
	if err != nil || !exists {
		t.Fatalf("exists: %v %v", err, exists)
	}

	if err := groupMembers.SetDisplayName(invited.ID, "Scout"); err != nil {
		t.Fatalf("set display name: %v", err)
	}
	row, err := groupMembers.GetByID(invited.ID)
	if err != nil || row == nil || row.DisplayName == nil || *row.DisplayName != "Scout" {
		t.Fatalf("display name not stored: %v %+v", err, row)
	}

	if err := groups.Delete(group.ID); err != nil {
		t.Fatalf("delete group: %v", err)
	}
	left, err := groupMembers.GetByGroup(group.ID)
	if err != nil {
		t.Fatalf("get by group: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("cascade delete left %d membership rows", len(left))
	}
}

func TestPasswordStoreRolePrecedence(t *testing.T) {
	db := openTestDB(t)
	passwords := NewPasswords(db)

	if _, err := passwords.AddAccess(models.RoleSuperuser, "alpha", nil); err != nil {
		t.Fatalf("seed superuser: %v", err)
	}
	if _, err := passwords.AddAccess(models.RoleAdmin, "beta", nil); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if _, err := passwords.AddAccess(models.RoleRegular, "gamma", nil); err != nil {
		t.Fatalf("seed regular: %v", err)
	}

	tests := []struct {
		password string
		want     models.Role
	}{
		{"alpha", models.RoleSuperuser},
		{"beta", models.RoleAdmin},
		{"gamma", models.RoleRegular},
		{"nothing", models.RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			role, _, err := passwords.FindRole(tt.password)
			if err != nil {
				t.Fatalf("find role: %v", err)
			}
			if role != tt.want {
				t.Errorf("FindRole(%q) = %s, want %s", tt.password, role, tt.want)
			}
		})
	}
}

func TestTemporaryPasswordExpiry(t *testing.T) {
	db := openTestDB(t)
	passwords := NewPasswords(db)
	now := time.Now().UTC()

	fresh, err := passwords.CreateTemporary("visit123", "guest access", time.Hour, nil)
	if err != nil {
		t.Fatalf("create temporary: %v", err)
	}
	if _, err := passwords.CreateTemporary("stale456", "", -time.Hour, nil); err != nil {
		t.Fatalf("create expired: %v", err)
	}

	ok, err := passwords.MatchTemporary("visit123", now)
	if err != nil || !ok {
		t.Fatalf("fresh password should match: %v %v", err, ok)
	}

	// The row exists but its expiry has passed; it must not match.
	ok, err = passwords.MatchTemporary("stale456", now)
	if err != nil {
		t.Fatalf("match expired: %v", err)
	}
	if ok {
		t.Error("expired password matched")
	}

	all, err := passwords.GetAllTemporary()
	if err != nil || len(all) != 2 {
		t.Fatalf("get all: %v len=%d", err, len(all))
	}

	n, err := passwords.DeleteExpired(now)
	if err != nil || n != 1 {
		t.Fatalf("delete expired: %v n=%d", err, n)
	}
	all, _ = passwords.GetAllTemporary()
	if len(all) != 1 || all[0].ID != fresh.ID {
		t.Fatalf("sweep kept wrong rows: %+v", all)
	}

	if err := passwords.DeleteTemporary(fresh.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, _ = passwords.GetAllTemporary()
	if len(all) != 0 {
		t.Fatalf("delete left rows: %+v", all)
	}
}

func TestAppUserStore(t *testing.T) {
	db := openTestDB(t)
	users := NewAppUsers(db)

	created, err := users.Add("Lead@Example.com", "Lead")
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if created.Email != "lead@example.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}

	got, err := users.GetByEmail("LEAD@example.COM")
	if err != nil || got == nil || got.ID != created.ID {
		t.Fatalf("lookup by email: %v %+v", err, got)
	}

	missing, err := users.GetByEmail("other@example.com")
	if err != nil || missing != nil {
		t.Fatalf("missing user should be (nil, nil), got %v %+v", err, missing)
	}
}
