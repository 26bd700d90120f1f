// Package catalog records the environments installed on this machine in a
// SQLite database under the environments root.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
	_ "modernc.org/sqlite" // database/sql driver "sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS environments (
	path              TEXT PRIMARY KEY,
	project_key       TEXT NOT NULL,
	project_dir       TEXT NOT NULL,
	platform          TEXT NOT NULL,
	env_fingerprint   TEXT NOT NULL,
	lock_content_hash TEXT NOT NULL,
	installed_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_environments_project ON environments(project_key);
`

// Catalog implements ports.Catalog. The database is opened on first use.
type Catalog struct {
	path string

	once    sync.Once
	db      *sql.DB
	openErr error
}

// New creates a Catalog stored at path.
func New(path string) *Catalog {
	return &Catalog{path: path}
}

// Record inserts or replaces the entry for entry.Path.
func (c *Catalog) Record(ctx context.Context, entry domain.CatalogEntry) error {
	db, err := c.open()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO environments
			(path, project_key, project_dir, platform, env_fingerprint, lock_content_hash, installed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			project_key = excluded.project_key,
			project_dir = excluded.project_dir,
			platform = excluded.platform,
			env_fingerprint = excluded.env_fingerprint,
			lock_content_hash = excluded.lock_content_hash,
			installed_at = excluded.installed_at`,
		entry.Path,
		ProjectKey(entry.ProjectDir),
		entry.ProjectDir,
		string(entry.Platform),
		entry.EnvFingerprint,
		entry.LockContentHash,
		entry.InstalledAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to record environment"), "path", entry.Path)
	}
	return nil
}

// List returns every recorded environment ordered by project and platform.
func (c *Catalog) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	return c.query(ctx, "")
}

// ForProject returns the environments recorded for projectDir.
func (c *Catalog) ForProject(ctx context.Context, projectDir string) ([]domain.CatalogEntry, error) {
	return c.query(ctx, "WHERE project_key = ?", ProjectKey(projectDir))
}

// Forget drops the entry for path.
func (c *Catalog) Forget(ctx context.Context, path string) error {
	db, err := c.open()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM environments WHERE path = ?", path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to forget environment"), "path", path)
	}
	return nil
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// ProjectKey identifies a project directory independent of its spelling.
func ProjectKey(projectDir string) string {
	if abs, err := filepath.Abs(projectDir); err == nil {
		projectDir = abs
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(projectDir))
}

func (c *Catalog) query(ctx context.Context, where string, args ...any) ([]domain.CatalogEntry, error) {
	db, err := c.open()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT path, project_dir, platform, env_fingerprint, lock_content_hash, installed_at
		FROM environments `+where+`
		ORDER BY project_dir, platform, installed_at DESC`, args...)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to query catalog")
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.CatalogEntry
	for rows.Next() {
		var (
			e           domain.CatalogEntry
			platform    string
			installedAt string
		)
		if err := rows.Scan(&e.Path, &e.ProjectDir, &platform, &e.EnvFingerprint, &e.LockContentHash, &installedAt); err != nil {
			return nil, zerr.Wrap(err, "failed to read catalog row")
		}
		e.Platform = domain.Platform(platform)
		if t, err := time.Parse(time.RFC3339Nano, installedAt); err == nil {
			e.InstalledAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, zerr.Wrap(err, "failed to read catalog")
	}
	return entries, nil
}

func (c *Catalog) open() (*sql.DB, error) {
	c.once.Do(func() {
		c.db, c.openErr = openDB(c.path)
	})
	return c.db, c.openErr
}

func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create catalog directory"), "path", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open catalog"), "path", path)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, zerr.With(zerr.Wrap(err, "failed to configure catalog"), "path", path)
		}
	}

	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, zerr.With(zerr.Wrap(err, "failed to migrate catalog"), "path", path)
		}
	}
	return db, nil
}
