package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oser-cs/apiview"
)

// Compile-time interface verification.
var _ apiview.CookieJar = (*CookieJar)(nil)

// CookieJar implements apiview.CookieJar using SQLite.
type CookieJar struct {
	db *DB
}

// NewCookieJar creates a new CookieJar.
func NewCookieJar(db *DB) *CookieJar {
	return &CookieJar{db: db}
}

// SetCookie creates or replaces a cookie.
func (j *CookieJar) SetCookie(ctx context.Context, cookie *apiview.Cookie) error {
	cookie.Host = normalizeHost(cookie.Host)
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	if err := cookie.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	var createdAt, updatedAt string
	err := j.db.QueryRowContext(ctx, `
		INSERT INTO cookies (id, host, path, name, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (host, path, name) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at
	`, uuid.New().String(), cookie.Host, cookie.Path, cookie.Name, cookie.Value,
		formatTime(now), formatTime(now)).Scan(&cookie.ID, &createdAt, &updatedAt)
	if err != nil {
		return err
	}

	if cookie.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return err
	}
	if cookie.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return err
	}
	return nil
}

// FindCookies retrieves cookies matching the filter.
func (j *CookieJar) FindCookies(ctx context.Context, filter apiview.CookieFilter) ([]*apiview.Cookie, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, host, path, name, value, created_at, updated_at FROM cookies WHERE 1=1")

	if filter.Host != nil {
		query.WriteString(" AND host = ?")
		args = append(args, normalizeHost(*filter.Host))
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}

	query.WriteString(" ORDER BY length(path) DESC, created_at ASC, rowid ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := j.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cookies []*apiview.Cookie
	for rows.Next() {
		var c apiview.Cookie
		var createdAt, updatedAt string

		if err := rows.Scan(&c.ID, &c.Host, &c.Path, &c.Name, &c.Value, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}

		cookies = append(cookies, &c)
	}

	return cookies, rows.Err()
}

// DeleteCookie permanently removes a cookie.
func (j *CookieJar) DeleteCookie(ctx context.Context, host, path, name string) error {
	if path == "" {
		path = "/"
	}

	result, err := j.db.ExecContext(ctx,
		"DELETE FROM cookies WHERE host = ? AND path = ? AND name = ?",
		normalizeHost(host), path, name)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return apiview.Errorf(apiview.ENOTFOUND, "cookie %q not found", name)
	}

	return nil
}

// Source returns a read-only view of the cookies stored for host.
func (j *CookieJar) Source(host string) apiview.CookieSource {
	return &apiview.JarCookies{Jar: j, Host: host}
}

func normalizeHost(host string) string {
	return strings.ToLower(strings.TrimSpace(host))
}
