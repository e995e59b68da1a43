package samples

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adx-tools/appledocs-mcp/internal/docs"
	"github.com/adx-tools/appledocs-mcp/internal/registry"
)

const (
	// downloadTimeout bounds one archive download.
	downloadTimeout = 2 * time.Minute

	// maxArchiveBytes caps a sample archive download.
	maxArchiveBytes = 256 << 20
)

// Downloader fetches sample-code ZIP archives, extracts them under the
// catalog directory, and records them in the catalog.
type Downloader struct {
	catalog *Catalog
	httpc   *http.Client
}

// NewDownloader creates a downloader writing through the given catalog.
func NewDownloader(catalog *Catalog) *Downloader {
	return &Downloader{
		catalog: catalog,
		httpc:   &http.Client{Timeout: downloadTimeout},
	}
}

// Download fetches the ZIP archive at url, extracts it into a directory
// named after the sample, and catalogs the result. A sample already in the
// catalog whose directory still exists is returned without re-fetching.
func (d *Downloader) Download(ctx context.Context, url, name string) (Record, error) {
	if existing, ok, err := d.catalog.Get(url); err != nil {
		return Record{}, err
	} else if ok {
		if _, statErr := os.Stat(existing.Path); statErr == nil {
			return existing, nil
		}
		// Cataloged but the files are gone — fall through and re-download.
	}

	if name == "" {
		name = "sample"
	}
	name = registry.SanitizeName(name)
	destDir := filepath.Join(d.catalog.Dir(), name)

	archivePath, size, err := d.fetchArchive(ctx, url)
	if err != nil {
		return Record{}, err
	}
	defer func() { _ = os.Remove(archivePath) }()

	if err := extractZip(archivePath, destDir); err != nil {
		return Record{}, err
	}

	rec := Record{
		Key:          docs.DeriveKey(url),
		URL:          url,
		Name:         name,
		Path:         destDir,
		SizeBytes:    size,
		DownloadedAt: time.Now().UTC(),
	}
	if err := d.catalog.Put(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// fetchArchive downloads the archive to a temp file and returns its path
// and size.
func (d *Downloader) fetchArchive(ctx context.Context, url string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("samples: creating request: %w", err)
	}
	req.Header.Set("User-Agent", "appledocs-mcp")

	resp, err := d.httpc.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("samples: downloading %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("samples: downloading %s: unexpected status %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "appledocs-sample-*.zip")
	if err != nil {
		return "", 0, fmt.Errorf("samples: creating temp file: %w", err)
	}

	size, err := io.Copy(tmp, io.LimitReader(resp.Body, maxArchiveBytes))
	closeErr := tmp.Close()
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("samples: writing archive: %w", err)
	}
	if closeErr != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("samples: closing archive: %w", closeErr)
	}
	return tmp.Name(), size, nil
}

// extractZip unpacks archivePath under destDir. Entries that would escape
// destDir (zip-slip) are rejected.
func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("samples: opening archive: %w", err)
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("samples: creating %s: %w", destDir, err)
	}

	for _, file := range reader.File {
		target, err := safeJoin(destDir, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("samples: creating %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("samples: creating %s: %w", filepath.Dir(target), err)
		}
		if err := extractFile(file, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(file *zip.File, target string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("samples: opening %s in archive: %w", file.Name, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("samples: creating %s: %w", target, err)
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil {
		return fmt.Errorf("samples: extracting %s: %w", file.Name, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("samples: closing %s: %w", target, closeErr)
	}
	return nil
}

// safeJoin joins name under dir, refusing paths that escape dir.
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, name)
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("samples: archive entry %q escapes extraction directory", name)
	}
	return target, nil
}
