package api

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BrunoXDR/project-manager-v2/internal/auth"
	"github.com/BrunoXDR/project-manager-v2/internal/domain"
	"github.com/BrunoXDR/project-manager-v2/internal/storage"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// readCredentials accepts the OAuth2 password form as well as a JSON body.
func readCredentials(r *http.Request) (string, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var c credentials
		if err := decodeJSON(r, &c); err != nil {
			return "", "", err
		}
		if c.Username == "" {
			c.Username = c.Email
		}
		return c.Username, c.Password, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", "", err
	}
	return r.PostForm.Get("username"), r.PostForm.Get("password"), nil
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	email, password, err := readCredentials(r)
	if err != nil || email == "" || password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.writeStoreError(w, r, "User", err)
		return
	}
	if err != nil || !auth.VerifyPassword(password, user.HashedPassword) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.writeStoreError(w, r, "Token", err)
		return
	}
	if err := h.store.RecordLogin(ctx, user); err != nil {
		h.logger.Warn("login audit failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	var in domain.UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleMember
	}
	if failed := domain.ValidateUserInput(in); !domain.ValidationPassed(failed) {
		writeValidation(w, failed)
		return
	}
	// Elevated accounts are provisioned with pmctl create-user.
	if in.Role != domain.RoleMember {
		writeDetail(w, http.StatusForbidden, "The user does not have enough privileges for this action")
		return
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		h.writeStoreError(w, r, "User", err)
		return
	}
	user, err := h.store.CreateUser(ctx, in.Email, hashed, in.Role)
	if err != nil {
		h.writeStoreError(w, r, "User", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}
