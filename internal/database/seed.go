package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// profileCatalog is the default agent profile schema installed on first
// boot. Keys are chosen so the prompt compiler's semantic rules recognize
// them.
var profileCatalog = []struct {
	key, fieldType, label, category, placeholder string
	required                                     bool
}{
	{"full_name", "text", "Full Name", "Identity", "Jane Doe", true},
	{"title", "text", "Professional Title", "Identity", "REALTOR(R)", false},
	{"headshot_url", "image", "Headshot", "Identity", "", false},
	{"bio", "textarea", "Short Bio", "Identity", "", false},
	{"phone", "phone", "Phone", "Contact", "(555) 555-0100", true},
	{"email", "email", "Email", "Contact", "jane@example.com", true},
	{"website", "url", "Website", "Contact", "https://", false},
	{"office_address", "text", "Office Address", "Contact", "", false},
	{"brokerage_name", "text", "Brokerage Name", "Brokerage", "", false},
	{"brokerage_logo_url", "image", "Brokerage Logo", "Brokerage", "", false},
	{"brand_color", "color", "Brand Color", "Branding", "#1a365d", false},
	{"facebook_url", "url", "Facebook", "Social", "", false},
	{"instagram_url", "url", "Instagram", "Social", "", false},
	{"linkedin_url", "url", "LinkedIn", "Social", "", false},
}

// Seed populates the database with initial development data: a default
// admin agent, the profile field catalog, and the default AI provider
// setting. Each section is independently idempotent.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	if err := seedProfileCatalog(db); err != nil {
		return err
	}
	if err := seedSettings(db); err != nil {
		return err
	}
	return nil
}

// seedAdmin creates a default admin account if no agents exist.
func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM agents").Scan(&count); err != nil {
		return fmt.Errorf("seed check agents: %w", err)
	}
	if count > 0 {
		slog.Info("agents already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO agents (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
	`, "admin@listingleads.local", string(hash), "Admin", "admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin agent",
		"email", "admin@listingleads.local",
		"password", "admin",
	)
	return nil
}

// seedProfileCatalog installs the default profile field schema.
func seedProfileCatalog(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM profile_fields").Scan(&count); err != nil {
		return fmt.Errorf("seed check profile fields: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i, f := range profileCatalog {
		_, err := db.Exec(`
			INSERT INTO profile_fields (field_key, field_type, label, category, placeholder, is_required, display_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, f.key, f.fieldType, f.label, f.category, f.placeholder, f.required, i)
		if err != nil {
			return fmt.Errorf("seed profile field %s: %w", f.key, err)
		}
	}

	slog.Info("database seeded with profile field catalog", "fields", len(profileCatalog))
	return nil
}

// seedSettings installs default settings without overwriting existing ones.
func seedSettings(db *sql.DB) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value)
		VALUES ('ai_provider', 'anthropic')
		ON CONFLICT (key) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}
