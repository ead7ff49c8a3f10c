package services

import (
	"errors"
	"testing"

	"school-portal-server/models"
)

func TestResolveDirect(t *testing.T) {
	recipientID, targetRole, err := Direct(7).Resolve(1)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if recipientID == nil || *recipientID != 7 {
		t.Fatalf("expected recipient 7, got %v", recipientID)
	}
	if targetRole != nil {
		t.Fatalf("direct addressee must not resolve a role, got %q", *targetRole)
	}
}

func TestResolveRoleBroadcast(t *testing.T) {
	recipientID, targetRole, err := RoleBroadcast(models.RoleParent).Resolve(1)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if recipientID != nil {
		t.Fatal("broadcast addressee must not resolve a recipient")
	}
	if targetRole == nil || *targetRole != models.RoleParent {
		t.Fatalf("expected role parent, got %v", targetRole)
	}
}

func TestResolveEveryone(t *testing.T) {
	recipientID, targetRole, err := Everyone().Resolve(1)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if recipientID != nil {
		t.Fatal("universal addressee must not resolve a recipient")
	}
	if targetRole == nil || *targetRole != models.AudienceAll {
		t.Fatalf("expected the universal tag, got %v", targetRole)
	}
}

func TestResolveRejections(t *testing.T) {
	cases := []struct {
		name string
		a    Addressee
		want error
	}{
		{"no target", Direct(0), ErrInvalidAddressee},
		{"self addressed", Direct(1), ErrInvalidAddressee},
		{"unknown role", RoleBroadcast("janitor"), ErrInvalidAudience},
		{"admin cohort", RoleBroadcast(models.RoleAdmin), ErrInvalidAudience},
		{"all via role broadcast", RoleBroadcast(models.AudienceAll), ErrInvalidAudience},
		{"zero value", Addressee{}, ErrInvalidAddressee},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := tc.a.Resolve(1); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
