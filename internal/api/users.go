package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medstock/m/domain"
	"medstock/m/internal/auth"
)

type registerRequest struct {
	Username string      `json:"username"`
	Email    *string     `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        domain.User `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleWarehouse
	}
	if !req.Role.Valid() {
		respondError(w, http.StatusBadRequest, "role must be yönetici, depo or satış")
		return
	}
	// admins are bootstrapped at startup, never self-registered
	if req.Role == domain.RoleAdmin {
		respondError(w, http.StatusForbidden, "the admin role cannot be self-registered")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}
	user := domain.User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Email:     nullIfEmpty(req.Email),
		Role:      req.Role,
		CreatedAt: h.now().UTC(),
	}
	if err := h.store.CreateUser(r.Context(), domain.Credentials{User: user, PasswordHash: hashed}); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			respondError(w, http.StatusConflict, "username already exists")
			return
		}
		respondFailure(w, err, "unable to complete registration")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	creds, err := h.store.UserByUsername(r.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		respondFailure(w, err, "unable to load user")
		return
	}
	if !auth.CheckPassword(creds.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.tokens.Issue(creds.User)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer", User: creds.User})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		respondFailure(w, err, "unable to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == currentUserID(r) {
		respondError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		respondFailure(w, err, "unable to delete user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
