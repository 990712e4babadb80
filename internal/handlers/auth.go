package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/middleware"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/session"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions *session.Store
	agents   *store.AgentStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, agents *store.AgentStore) *Auth {
	return &Auth{sessions: sessions, agents: agents}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an agent and issues a session cookie.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !readJSON(w, r, &req, 4<<10) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	agent, err := a.agents.Authenticate(req.Email, req.Password)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	if agent == nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		AgentID:     agent.ID,
		Email:       agent.Email,
		DisplayName: agent.DisplayName,
		Role:        string(agent.Role),
	}); err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	writeJSON(w, http.StatusOK, agent)
}

// Logout destroys the current session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated agent's identity from the session.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	agent, err := a.agents.FindByID(sess.AgentID)
	if err != nil {
		slog.Error("agent lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	if agent == nil {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	writeJSON(w, http.StatusOK, agent)
}
