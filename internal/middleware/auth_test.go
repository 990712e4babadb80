// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/session"
)

// withSession injects session data into a request context the way
// LoadSession would.
func withSession(r *http.Request, data *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionKey, data))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAgentUnauthenticated(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)

	RequireAgent(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}
}

func TestRequireAgentAuthenticated(t *testing.T) {
	rec := httptest.NewRecorder()
	req := withSession(httptest.NewRequest(http.MethodGet, "/api/templates", nil), &session.Data{
		AgentID: uuid.New(),
		Role:    "agent",
	})

	RequireAgent(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		name string
		data *session.Data
		want int
	}{
		{"no session", nil, http.StatusForbidden},
		{"agent role", &session.Data{AgentID: uuid.New(), Role: "agent"}, http.StatusForbidden},
		{"admin role", &session.Data{AgentID: uuid.New(), Role: "admin"}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
			if tc.data != nil {
				req = withSession(req, tc.data)
			}

			RequireAdmin(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Errorf("status: got %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestSessionFromCtxMissing(t *testing.T) {
	if got := SessionFromCtx(context.Background()); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
