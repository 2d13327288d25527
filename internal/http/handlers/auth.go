package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront-be/internal/auth"
	"github.com/hongminglow/storefront-be/internal/http/respond"
	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/models/dto"
	"github.com/hongminglow/storefront-be/internal/storage"
)

// AuthHandler owns register, login, logout and refresh.
type AuthHandler struct {
	store  storage.UserStore
	tokens *auth.TokenManager
	authn  *auth.Authenticator
	log    logrus.FieldLogger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager, authn *auth.Authenticator, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, authn: authn, log: log}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r *mux.Router) {
	r.HandleFunc("/register", h.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/refresh", h.handleRefresh).Methods(http.MethodPost)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	_, err := h.store.FindByUsername(r.Context(), username)
	switch {
	case err == nil:
		respond.Msg(w, http.StatusBadRequest, "Username already exists!")
		return
	case !errors.Is(err, storage.ErrNotFound):
		h.log.WithError(err).Error("lookup user")
		respond.Error(w, http.StatusInternalServerError, "Error registering user")
		return
	}

	// Policy violations are a soft error with status 200.
	if err := auth.ValidatePassword(req.Password); err != nil {
		respond.Msg(w, http.StatusOK, auth.WeakPasswordMessage)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.WithError(err).Error("hash password")
		respond.Error(w, http.StatusInternalServerError, "Error registering user")
		return
	}
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Msg(w, http.StatusBadRequest, "Username already exists!")
			return
		}
		h.log.WithError(err).Error("create user")
		respond.Error(w, http.StatusInternalServerError, "Error registering user")
		return
	}

	h.log.WithField("user_id", user.ID).Info("user registered")
	respond.Message(w, http.StatusOK, "User registered successfully")
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}
	user, err := h.store.FindByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.WithError(err).Error("login: fetch user")
		respond.Error(w, http.StatusInternalServerError, "Error logging in")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respond.Error(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		h.log.WithError(err).Error("login: sign access token")
		respond.Error(w, http.StatusInternalServerError, "Error logging in")
		return
	}
	refresh, err := h.tokens.GenerateRefresh(user)
	if err != nil {
		h.log.WithError(err).Error("login: sign refresh token")
		respond.Error(w, http.StatusInternalServerError, "Error logging in")
		return
	}
	respond.JSON(w, http.StatusOK, dto.LoginResponse{Token: token, RefreshToken: refresh})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req dto.LogoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		respond.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.authn.Revoke(r.Context(), token); err != nil {
		h.writeRevokeError(w, err)
		return
	}
	if refresh := strings.TrimSpace(req.RefreshToken); refresh != "" {
		if err := h.authn.RevokeRefresh(r.Context(), refresh); err != nil {
			h.writeRevokeError(w, err)
			return
		}
	}
	respond.Message(w, http.StatusOK, "Logout successful")
}

func (h *AuthHandler) writeRevokeError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrUnauthorized) {
		respond.Error(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	h.log.WithError(err).Error("logout: revoke token")
	respond.Error(w, http.StatusInternalServerError, "Error logging out")
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		respond.Error(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	access, err := h.authn.Refresh(r.Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			respond.Error(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		h.log.WithError(err).Error("refresh token")
		respond.Error(w, http.StatusInternalServerError, "Error refreshing token")
		return
	}
	respond.JSON(w, http.StatusOK, dto.RefreshResponse{AccessToken: access})
}
