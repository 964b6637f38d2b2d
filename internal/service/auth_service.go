package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mkowalczyk/divvy/internal/auth"
)

// AuthService exposes the register and login endpoints.
type AuthService struct {
	authenticator *auth.Authenticator
	tokens        *auth.TokenManager
}

// NewAuthService creates the auth endpoints over the given authenticator and
// token manager.
func NewAuthService(authenticator *auth.Authenticator, tokens *auth.TokenManager) *AuthService {
	return &AuthService{authenticator: authenticator, tokens: tokens}
}

// Register mounts the auth routes on mux.
func (s *AuthService) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userInfo `json:"user"`
}

type userInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func (s *AuthService) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Email == "" || req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, errors.New("email and display_name are required"))
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  userInfo{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName},
	})
}

func (s *AuthService) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token: token,
		User:  userInfo{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName},
	})
}
