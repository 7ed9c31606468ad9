package auth

import (
	"testing"

	"github.com/google/uuid"

	"recipehub/internal/models"
)

func testUser() *models.User {
	tenantID := uuid.New()
	return &models.User{
		ID:       uuid.New(),
		TenantID: &tenantID,
		Role:     models.RoleAdmin,
	}
}

func TestGenerateAndParsePair(t *testing.T) {
	user := testUser()

	pair, err := GeneratePair(user, "secret")
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	access, err := ParseToken(pair.Access, "secret")
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if access.TokenType != TokenTypeAccess {
		t.Errorf("access token_type = %q", access.TokenType)
	}
	if access.UserID != user.ID {
		t.Errorf("user_id = %s, want %s", access.UserID, user.ID)
	}
	if access.TenantID == nil || *access.TenantID != *user.TenantID {
		t.Errorf("tenant_id = %v, want %s", access.TenantID, *user.TenantID)
	}
	if access.Role != models.RoleAdmin {
		t.Errorf("role = %q", access.Role)
	}

	refresh, err := ParseToken(pair.Refresh, "secret")
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if refresh.TokenType != TokenTypeRefresh {
		t.Errorf("refresh token_type = %q", refresh.TokenType)
	}
	if refresh.ID == "" {
		t.Error("refresh token has no jti")
	}
	if refresh.ID == access.ID {
		t.Error("access and refresh share a jti")
	}
	if !refresh.ExpiresAt.After(access.ExpiresAt.Time) {
		t.Error("refresh token must outlive the access token")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	pair, err := GeneratePair(testUser(), "secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(pair.Access, "other-secret"); err == nil {
		t.Error("token accepted with the wrong secret")
	}
	if _, err := ParseToken("not.a.token", "secret"); err == nil {
		t.Error("garbage accepted as a token")
	}
}
