package authgate

import (
	"testing"
	"time"

	"github.com/rmacedo/guild-console/pkg/models"
)

// fakePasswordStore implements the password lookups the gate touches.
type fakePasswordStore struct {
	roles map[string]models.Role
	users map[string]string
	temps map[string]time.Time
}

func (f *fakePasswordStore) FindRole(password string) (models.Role, *string, error) {
	role, ok := f.roles[password]
	if !ok {
		return models.RoleNone, nil, nil
	}
	if userID, ok := f.users[password]; ok {
		return role, &userID, nil
	}
	return role, nil, nil
}

func (f *fakePasswordStore) MatchTemporary(password string, now time.Time) (bool, error) {
	exp, ok := f.temps[password]
	return ok && !exp.Before(now), nil
}

func (f *fakePasswordStore) AddAccess(models.Role, string, *string) (*models.AccessPassword, error) {
	panic("not used")
}
func (f *fakePasswordStore) CreateTemporary(string, string, time.Duration, *string) (*models.TemporaryPassword, error) {
	panic("not used")
}
func (f *fakePasswordStore) GetAllTemporary() ([]*models.TemporaryPassword, error) {
	panic("not used")
}
func (f *fakePasswordStore) DeleteTemporary(string) error      { panic("not used") }
func (f *fakePasswordStore) DeleteExpired(time.Time) (int64, error) {
	panic("not used")
}

func TestGateCheck(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakePasswordStore{
		roles: map[string]models.Role{
			"admin-pass":   models.RoleAdmin,
			"regular-pass": models.RoleRegular,
		},
		users: map[string]string{"admin-pass": "user-42"},
		temps: map[string]time.Time{
			"temp-live": now.Add(time.Hour),
			"temp-dead": now.Add(-time.Hour),
		},
	}
	gate := NewGate(store, "boot-pass")
	gate.now = func() time.Time { return now }

	tests := []struct {
		name     string
		password string
		wantRole models.Role
		wantUser *string
	}{
		{"bootstrap grants superuser", "boot-pass", models.RoleSuperuser, nil},
		{"admin table", "admin-pass", models.RoleAdmin, ptr("user-42")},
		{"regular table", "regular-pass", models.RoleRegular, nil},
		{"live temporary grants regular", "temp-live", models.RoleRegular, nil},
		{"expired temporary is rejected", "temp-dead", models.RoleNone, nil},
		{"unknown password", "wrong", models.RoleNone, nil},
		{"empty password", "", models.RoleNone, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := gate.Check(tt.password)
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if id.Role != tt.wantRole {
				t.Errorf("role = %s, want %s", id.Role, tt.wantRole)
			}
			if (id.UserID == nil) != (tt.wantUser == nil) {
				t.Fatalf("user id = %v, want %v", id.UserID, tt.wantUser)
			}
			if tt.wantUser != nil && *id.UserID != *tt.wantUser {
				t.Errorf("user id = %s, want %s", *id.UserID, *tt.wantUser)
			}
		})
	}
}

func TestGateBootstrapDisabledWhenEmpty(t *testing.T) {
	gate := NewGate(&fakePasswordStore{}, "")
	id, err := gate.Check("")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if id.Role != models.RoleNone {
		t.Errorf("empty bootstrap must not match empty password, got %s", id.Role)
	}
}

func ptr(s string) *string { return &s }
