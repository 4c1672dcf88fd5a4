// ABOUTME: Caches the last authenticated user per backend origin
// ABOUTME: Lets whoami and the TUI header show a name before the session check returns
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/crmtui/models"
)

// SaveUser records the user the session belongs to.
func SaveUser(db *sql.DB, baseURL string, user models.User) error {
	_, err := db.Exec(`
		INSERT INTO session_user (base_url, user_id, name, email, role, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(base_url) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			updated_at = excluded.updated_at
	`, baseURL, user.ID, user.Name, user.Email, user.Role, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save session user: %w", err)
	}
	return nil
}

// GetUser returns the cached user for baseURL, or nil when none is cached.
func GetUser(db *sql.DB, baseURL string) (*models.User, error) {
	var (
		u           models.User
		email, role sql.NullString
	)
	err := db.QueryRow(`SELECT user_id, name, email, role FROM session_user WHERE base_url = ?`, baseURL).
		Scan(&u.ID, &u.Name, &email, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session user: %w", err)
	}
	u.Email = email.String
	u.Role = role.String
	return &u, nil
}

// ClearUser forgets the cached user for baseURL.
func ClearUser(db *sql.DB, baseURL string) error {
	_, err := db.Exec(`DELETE FROM session_user WHERE base_url = ?`, baseURL)
	return err
}

// Session binds the cached user store to one backend origin.
type Session struct {
	db      *sql.DB
	baseURL string
}

func NewSession(db *sql.DB, baseURL string) *Session {
	return &Session{db: db, baseURL: baseURL}
}

func (s *Session) SaveUser(user models.User) error { return SaveUser(s.db, s.baseURL, user) }

func (s *Session) ClearUser() error { return ClearUser(s.db, s.baseURL) }

// User returns the cached user, or nil.
func (s *Session) User() (*models.User, error) { return GetUser(s.db, s.baseURL) }
