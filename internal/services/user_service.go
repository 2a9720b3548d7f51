package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/auth"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type UserService struct {
	Store      store.Store
	JWTManager *auth.JWTManager
	Log        logrus.FieldLogger
	Now        func() time.Time
}

func NewUserService(st store.Store, jwtManager *auth.JWTManager, log logrus.FieldLogger) *UserService {
	return &UserService{Store: st, JWTManager: jwtManager, Log: log, Now: utcNow}
}

// CreateUser stores a new operator account with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	const op = "user.create"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, E(KindInternal, op, err)
	}
	role := req.Role
	if role == "" {
		role = models.RoleStaff
	}
	now := s.Now()
	u := &models.User{
		Username:     strings.TrimSpace(req.Username),
		Name:         req.Name,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().Create(ctx, u); err != nil {
		return nil, classify(op, err)
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, rawID string) (*models.User, error) {
	const op = "user.get"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}
	u, err := s.Store.Users().Get(ctx, id)
	if err != nil {
		return nil, classify(op, err)
	}
	return u, nil
}

// Login checks the credentials and issues a token. Unknown users, inactive users and wrong
// passwords all fail the same way.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	const op = "user.login"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	u, err := s.Store.Users().GetByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, &Error{Kind: KindUnauthorized, Op: op, Err: ErrInvalidCredentials}
	}
	if err != nil {
		return nil, classify(op, err)
	}
	if !u.IsActive || !auth.VerifyPassword(u.PasswordHash, req.Password) {
		s.Log.WithField("username", u.Username).Warn("[Auth] login rejected")
		return nil, &Error{Kind: KindUnauthorized, Op: op, Err: ErrInvalidCredentials}
	}

	token, err := s.JWTManager.GenerateToken(u)
	if err != nil {
		return nil, E(KindInternal, op, err)
	}
	s.Log.WithField("username", u.Username).Info("[Auth] login")
	return &models.AuthResponse{Token: token, User: u}, nil
}
