// ABOUTME: Persistent cookie jar that keeps the backend session across CLI and TUI runs
// ABOUTME: Wraps the in-memory jar and mirrors every Set-Cookie into SQLite
package db

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/crmtui/api"
	"github.com/harperreed/crmtui/logging"
)

// CookieJar implements http.CookieJar. Reads are served from memory; writes also go to disk.
// Times are stored in UTC so expiry pruning can compare them as text.
type CookieJar struct {
	mu     sync.Mutex
	db     *sql.DB
	mem    http.CookieJar
	logger *log.Logger
	now    func() time.Time
}

// NewCookieJar loads unexpired cookies from db into a fresh in-memory jar.
func NewCookieJar(db *sql.DB, logger *log.Logger) (*CookieJar, error) {
	j := &CookieJar{
		db:     db,
		mem:    api.NewJar(),
		logger: logging.OrDiscard(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *CookieJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.mem.Cookies(u)
}

func (j *CookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.mem.SetCookies(u, cookies)
	for _, c := range cookies {
		if err := j.persist(u, c); err != nil {
			// The in-memory jar still carries the session for this run.
			j.logger.Warn("failed to persist cookie", "name", c.Name, "host", u.Host, "err", err)
		}
	}
}

// Clear drops every cookie, on disk and in memory.
func (j *CookieJar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.db.Exec(`DELETE FROM cookies`); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	j.mem = api.NewJar()
	return nil
}

// Count returns how many cookies are stored on disk.
func (j *CookieJar) Count() (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM cookies`).Scan(&n)
	return n, err
}

func (j *CookieJar) persist(u *url.URL, c *http.Cookie) error {
	path := c.Path
	if path == "" {
		path = "/"
	}

	expires, expired := j.expiry(c)
	if expired {
		_, err := j.db.Exec(`DELETE FROM cookies WHERE host = ? AND path = ? AND name = ?`, u.Host, path, c.Name)
		return err
	}

	_, err := j.db.Exec(`
		INSERT INTO cookies (host, path, name, scheme, value, domain, expires_at, secure, http_only, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(host, path, name) DO UPDATE SET
			scheme = excluded.scheme,
			value = excluded.value,
			domain = excluded.domain,
			expires_at = excluded.expires_at,
			secure = excluded.secure,
			http_only = excluded.http_only,
			updated_at = excluded.updated_at
	`, u.Host, path, c.Name, u.Scheme, c.Value, c.Domain, expires, c.Secure, c.HttpOnly, j.now())
	return err
}

// expiry resolves MaxAge and Expires. Session cookies have no expiry and are kept.
func (j *CookieJar) expiry(c *http.Cookie) (sql.NullTime, bool) {
	now := j.now()
	switch {
	case c.MaxAge < 0:
		return sql.NullTime{}, true
	case c.MaxAge > 0:
		return sql.NullTime{Time: now.Add(time.Duration(c.MaxAge) * time.Second), Valid: true}, false
	case !c.Expires.IsZero():
		return sql.NullTime{Time: c.Expires.UTC(), Valid: true}, !c.Expires.After(now)
	}
	return sql.NullTime{}, false
}

func (j *CookieJar) load() error {
	now := j.now()
	if _, err := j.db.Exec(`DELETE FROM cookies WHERE expires_at IS NOT NULL AND expires_at <= ?`, now); err != nil {
		return fmt.Errorf("failed to prune cookies: %w", err)
	}

	rows, err := j.db.Query(`SELECT host, path, name, scheme, value, domain, expires_at, secure, http_only FROM cookies`)
	if err != nil {
		return fmt.Errorf("failed to load cookies: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			host, path, name, scheme, value string
			domain                          sql.NullString
			expires                         sql.NullTime
			secure, httpOnly                bool
		)
		if err := rows.Scan(&host, &path, &name, &scheme, &value, &domain, &expires, &secure, &httpOnly); err != nil {
			return fmt.Errorf("failed to scan cookie: %w", err)
		}

		c := &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     path,
			Domain:   domain.String,
			Secure:   secure,
			HttpOnly: httpOnly,
		}
		if expires.Valid {
			c.Expires = expires.Time
		}
		j.mem.SetCookies(&url.URL{Scheme: scheme, Host: host, Path: path}, []*http.Cookie{c})
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	j.logger.Debug("loaded session cookies", "count", count)
	return nil
}
