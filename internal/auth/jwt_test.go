package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hshy1839/seongji-erp-server/internal/config"
	"github.com/hshy1839/seongji-erp-server/internal/models"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.ExpirationHours = 2
	cfg.JWT.Issuer = "seongji-erp"
	return cfg
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig("s3cret"))
	u := &models.User{ID: uuid.New(), Username: "kim", Role: "admin"}

	token, err := m.GenerateToken(u)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != u.ID || claims.Username != "kim" || claims.Role != "admin" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	m := NewJWTManager(testConfig("s3cret"))
	u := &models.User{ID: uuid.New(), Username: "kim"}

	other, err := NewJWTManager(testConfig("other")).GenerateToken(u)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ValidateToken(other); err == nil {
		t.Error("token signed with another secret was accepted")
	}

	m.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	expired, err := m.GenerateToken(u)
	if err != nil {
		t.Fatal(err)
	}
	m.now = time.Now
	if _, err := m.ValidateToken(expired); err == nil {
		t.Error("expired token was accepted")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("pa55word")
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(hash, "pa55word") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
