// Package store provides database access methods for all application
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/models"
)

// AgentStore handles all agent account database operations.
type AgentStore struct {
	db *sql.DB
}

// NewAgentStore creates a new AgentStore with the given database connection.
func NewAgentStore(db *sql.DB) *AgentStore {
	return &AgentStore{db: db}
}

// FindByEmail retrieves an agent by email address. Returns nil if not found.
func (s *AgentStore) FindByEmail(email string) (*models.Agent, error) {
	a := &models.Agent{}
	err := s.db.QueryRow(`
		SELECT id, email, password_hash, display_name, role, created_at, updated_at
		FROM agents WHERE email = $1
	`, email).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.Role,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find agent by email: %w", err)
	}
	return a, nil
}

// FindByID retrieves an agent by UUID. Returns nil if not found.
func (s *AgentStore) FindByID(id uuid.UUID) (*models.Agent, error) {
	a := &models.Agent{}
	err := s.db.QueryRow(`
		SELECT id, email, password_hash, display_name, role, created_at, updated_at
		FROM agents WHERE id = $1
	`, id).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.Role,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find agent by id: %w", err)
	}
	return a, nil
}

// Create inserts a new agent with a bcrypt-hashed password.
func (s *AgentStore) Create(email, password, displayName string, role models.Role) (*models.Agent, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &models.Agent{}
	err = s.db.QueryRow(`
		INSERT INTO agents (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, display_name, role, created_at, updated_at
	`, email, string(hash), displayName, role).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.Role,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return a, nil
}

// Count returns the number of agent accounts. Used by seeding to decide
// whether a first admin account is needed.
func (s *AgentStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM agents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count agents: %w", err)
	}
	return n, nil
}

// Authenticate checks an email/password pair and returns the agent on
// success, or nil if the credentials do not match any account.
func (s *AgentStore) Authenticate(email, password string) (*models.Agent, error) {
	a, err := s.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if a == nil {
		// Burn a comparison anyway so missing accounts cost the same as
		// wrong passwords.
		bcrypt.CompareHashAndPassword([]byte("$2a$10$invalidsaltinvalidsaltinval"), []byte(password))
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return a, nil
}
