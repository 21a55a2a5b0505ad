package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"crazypuzzle/internal/auth"
	"crazypuzzle/internal/database"
	"crazypuzzle/internal/models"
)

// EnsureGuestUser resolves the caller's identity from the auth_token cookie.
// A caller without a valid token gets a freshly created guest user and a new
// cookie, so anyone can play without signing up. Must be called before the
// response headers are written (in particular, before a WebSocket upgrade).
func (s *Server) EnsureGuestUser(w http.ResponseWriter, r *http.Request) (auth.Identity, error) {
	cookieHeader := r.Header.Get("Cookie")
	if strings.Contains(cookieHeader, "auth_token=") {
		token := extractCookieToken(cookieHeader, "auth_token")
		ident, err := auth.AuthenticateJWT(token)
		if err == nil {
			return ident, nil
		}
		// Stale or invalid token falls through to guest creation.
	}

	guest := models.User{
		DisplayName: "Guest",
		IsGuest:     true,
	}
	if err := s.CreateUser(context.Background(), &guest); err != nil {
		return auth.Identity{}, fmt.Errorf("failed to create guest user: %w", err)
	}

	ident := auth.Identity{
		UserID:      guest.ID.String(),
		DisplayName: guest.DisplayName,
		Guest:       true,
	}
	token, err := auth.CreateJWT(ident)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("failed to create guest JWT: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})

	if err := s.Stats.SetDisplayName(r.Context(), ident.UserID, ident.DisplayName); err != nil {
		log.Printf("failed to record guest display name: %v", err)
	}
	return ident, nil
}

// CreateUserHandler registers a new user account.
func (s *Server) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	user := models.User{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		IsGuest:     false,
	}

	ctx := r.Context()
	if err := s.CreateUser(ctx, &user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			http.Error(w, "email already exists", http.StatusConflict)
			return
		}
		http.Error(w, "error creating user", http.StatusInternalServerError)
		return
	}

	if err := s.Stats.SetDisplayName(ctx, user.ID.String(), user.DisplayName); err != nil {
		log.Printf("failed to record display name for %s: %v", user.ID, err)
	}

	user.Password = ""
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler handles user login requests. It expects a JSON payload with
// email and password, and returns a JSON response with an authentication
// token if the login is successful. The token is also sent via a cookie.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	token, err := database.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Printf("failed to authenticate user: %v", err)
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TOKEN_EXPIRE_TIME_SEC,
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
