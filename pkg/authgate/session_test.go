package authgate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rmacedo/guild-console/pkg/models"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(Session{Role: models.RoleAdmin, UserID: "user-7"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Role != models.RoleAdmin || got.UserID != "user-7" {
		t.Errorf("session = %+v", got)
	}
}

func TestTokenExpires(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return now }

	token, err := issuer.Issue(Session{Role: models.RoleRegular})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := issuer.Verify(token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	issuer.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, err := issuer.Verify(token); err == nil {
		t.Error("expired token verified")
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	token, err := issuer.Issue(Session{Role: models.RoleSuperuser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewTokenIssuer("secret-b", time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Error("token signed with a different secret verified")
	}
}

func TestTokenRejectsTampering(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Issue(Session{Role: models.RoleRegular})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %s", token)
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := issuer.Verify(tampered); err == nil {
		t.Error("tampered token verified")
	}
}

func TestSessionContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Fatal("empty context carried a session")
	}

	want := Session{Role: models.RoleAdmin, UserID: "user-1"}
	ctx = WithSession(ctx, want)
	got, ok := FromContext(ctx)
	if !ok || got != want {
		t.Errorf("FromContext = %+v %v", got, ok)
	}
}
