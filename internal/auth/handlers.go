package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"travelink/internal/api"
	"travelink/internal/user"
	"travelink/pkg/config"
)

type Handlers struct {
	Cfg   config.Config
	Log   *zap.Logger
	Users *user.Repository
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *user.User `json:"user"`
}

// Login verifies portal credentials and issues a session token. The
// token only names the account; role flags are re-read on every request.
func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		api.WriteError(w, http.StatusBadRequest, "CREDENTIALS_REQUIRED", "email and password are required")
		return
	}

	hash, err := h.Users.PasswordHashByEmail(r.Context(), in.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
			return
		}
		h.Log.Error("load credentials", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "login failed")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(in.Password)) != nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), in.Email)
	if err != nil {
		h.Log.Error("load user", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "login failed")
		return
	}

	now := time.Now()
	token, err := IssueSessionToken(u.ID, u.Role, h.Cfg.SessionSecret, now)
	if err != nil {
		h.Log.Error("issue session token", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "login failed")
		return
	}

	api.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: now.Add(sessionTTL),
		User:      u,
	})
}

// Me returns the authenticated account, mostly for portal bootstrapping.
func (h Handlers) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := api.UserFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}
