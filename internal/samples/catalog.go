// Package samples downloads Apple sample-code ZIP archives and keeps a
// local catalog of what has been fetched.
//
// Extracted samples live on disk under a samples directory; the catalog is
// a small SQLite database beside them, keyed by the same derived key the
// document cache uses, so repeated downloads of a sample are detected
// instead of re-fetched.
package samples

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adx-tools/appledocs-mcp/internal/docs"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Record is one cataloged sample download.
type Record struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	SizeBytes    int64     `json:"size_bytes"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Catalog is the SQLite-backed index of downloaded samples.
type Catalog struct {
	db  *sql.DB
	dir string
}

// OpenCatalog opens (creating if needed) the catalog under dir. The
// returned catalog must be closed on shutdown.
func OpenCatalog(dir string) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("samples: create directory: %w", err)
	}

	dbPath := filepath.Join(dir, "catalog.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("samples: open catalog: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("samples: pragma %q: %w", p, err)
		}
	}

	c := &Catalog{db: db, dir: dir}
	if err := c.migrate(); err != nil {
		return nil, fmt.Errorf("samples: migration: %w", err)
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Dir returns the directory samples are extracted under.
func (c *Catalog) Dir() string {
	return c.dir
}

func (c *Catalog) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS samples (
			key           TEXT PRIMARY KEY,
			url           TEXT NOT NULL,
			name          TEXT NOT NULL,
			path          TEXT NOT NULL,
			size_bytes    INTEGER NOT NULL DEFAULT 0,
			downloaded_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Put upserts the record for a downloaded sample, keyed by the derived key
// of its source URL.
func (c *Catalog) Put(rec Record) error {
	if rec.Key == "" {
		rec.Key = docs.DeriveKey(rec.URL)
	}
	if rec.DownloadedAt.IsZero() {
		rec.DownloadedAt = time.Now().UTC()
	}

	_, err := c.db.Exec(`
		INSERT INTO samples (key, url, name, path, size_bytes, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			url = excluded.url,
			name = excluded.name,
			path = excluded.path,
			size_bytes = excluded.size_bytes,
			downloaded_at = excluded.downloaded_at`,
		rec.Key, rec.URL, rec.Name, rec.Path, rec.SizeBytes,
		rec.DownloadedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("samples: put %s: %w", rec.Key, err)
	}
	return nil
}

// Get looks up a cataloged sample by the derived key of its source URL.
func (c *Catalog) Get(url string) (Record, bool, error) {
	return c.GetByKey(docs.DeriveKey(url))
}

// GetByKey looks up a cataloged sample by key.
func (c *Catalog) GetByKey(key string) (Record, bool, error) {
	row := c.db.QueryRow(`
		SELECT key, url, name, path, size_bytes, downloaded_at
		FROM samples WHERE key = ?`, key)

	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("samples: get %s: %w", key, err)
	}
	return rec, true, nil
}

// List returns all cataloged samples, newest download first.
func (c *Catalog) List() ([]Record, error) {
	rows, err := c.db.Query(`
		SELECT key, url, name, path, size_bytes, downloaded_at
		FROM samples ORDER BY downloaded_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("samples: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("samples: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("samples: list: %w", err)
	}
	return records, nil
}

// Delete removes a catalog entry by key, reporting whether one existed.
// The extracted files on disk are not touched.
func (c *Catalog) Delete(key string) (bool, error) {
	res, err := c.db.Exec(`DELETE FROM samples WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("samples: delete %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("samples: delete %s: %w", key, err)
	}
	return n > 0, nil
}

func scanRecord(scan func(dest ...any) error) (Record, error) {
	var rec Record
	var downloadedAt string
	if err := scan(&rec.Key, &rec.URL, &rec.Name, &rec.Path, &rec.SizeBytes, &downloadedAt); err != nil {
		return Record{}, err
	}
	if ts, err := time.Parse(time.RFC3339, downloadedAt); err == nil {
		rec.DownloadedAt = ts
	}
	return rec, nil
}
