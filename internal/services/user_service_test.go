package services

import (
	"context"
	"testing"

	"github.com/hshy1839/seongji-erp-server/internal/auth"
	"github.com/hshy1839/seongji-erp-server/internal/config"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/repositories/memory"
)

func newUserService() *UserService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "seongji-erp"
	return NewUserService(memory.New(), auth.NewJWTManager(cfg), quietLogger())
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newUserService()
	u, err := svc.CreateUser(ctx, &models.CreateUserRequest{Username: "kim", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != models.RoleStaff || u.PasswordHash == "correct-horse" {
		t.Fatalf("unexpected user: %+v", u)
	}

	resp, err := svc.Login(ctx, &models.LoginRequest{Username: "kim", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := svc.JWTManager.ValidateToken(resp.Token)
	if err != nil || claims.UserID != u.ID {
		t.Fatalf("token does not carry the user: %v %+v", err, claims)
	}

	for _, req := range []*models.LoginRequest{
		{Username: "kim", Password: "wrong-password"},
		{Username: "lee", Password: "correct-horse"},
	} {
		if _, err := svc.Login(ctx, req); KindOf(err) != KindUnauthorized {
			t.Errorf("login %q: kind = %s, want unauthorized", req.Username, KindOf(err))
		}
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newUserService()
	req := &models.CreateUserRequest{Username: "kim", Password: "correct-horse"}
	if _, err := svc.CreateUser(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateUser(ctx, req); KindOf(err) != KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, &models.CreateUserRequest{Username: "ok", Password: "short"}); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
