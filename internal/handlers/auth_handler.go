package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/middleware"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/services"
)

type AuthHandler struct {
	Service *services.UserService
	log     logrus.FieldLogger
	ttl     time.Duration
}

func NewAuthHandler(s *services.UserService, log logrus.FieldLogger, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{Service: s, log: log, ttl: tokenTTL}
}

// Login handles POST /auth/login. The token is returned in the body and set as an HttpOnly cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	authResp, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, "auth.login", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    authResp.Token,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, authResp)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me handles GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Type: services.KindUnauthorized, Message: "Unauthorized"})
		return
	}
	user, err := h.Service.GetUser(r.Context(), userID.String())
	if err != nil {
		writeError(w, h.log, "auth.me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// CreateUser handles POST /api/users (admin only)
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	user, err := h.Service.CreateUser(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, "user.create", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
