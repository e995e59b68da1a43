package samples

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// zipArchive builds an in-memory ZIP with the given name→content entries.
func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("writing zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func TestDownload_ExtractsAndCatalogs(t *testing.T) {
	archive := zipArchive(t, map[string]string{
		"MapSample/README.md":       "# Map Sample",
		"MapSample/Sources/main.sw": "print(1)",
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	catalog := testCatalog(t)
	d := NewDownloader(catalog)

	rec, err := d.Download(context.Background(), srv.URL+"/maps.zip", "Map Sample")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if rec.Name != "map-sample" {
		t.Errorf("Name = %s, want sanitized map-sample", rec.Name)
	}

	readme := filepath.Join(rec.Path, "MapSample", "README.md")
	data, err := os.ReadFile(readme)
	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
	if string(data) != "# Map Sample" {
		t.Errorf("README content = %q", string(data))
	}

	if _, ok, err := catalog.Get(srv.URL + "/maps.zip"); err != nil || !ok {
		t.Errorf("download should be cataloged: ok=%v err=%v", ok, err)
	}
}

func TestDownload_SecondCallUsesCatalog(t *testing.T) {
	archive := zipArchive(t, map[string]string{"a.txt": "x"})
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	catalog := testCatalog(t)
	d := NewDownloader(catalog)

	first, err := d.Download(context.Background(), srv.URL+"/s.zip", "s")
	if err != nil {
		t.Fatalf("first Download failed: %v", err)
	}
	second, err := d.Download(context.Background(), srv.URL+"/s.zip", "s")
	if err != nil {
		t.Fatalf("second Download failed: %v", err)
	}

	if requests != 1 {
		t.Errorf("server hit %d times, want 1 (second call served from catalog)", requests)
	}
	if second.Path != first.Path {
		t.Errorf("second Path = %s, want %s", second.Path, first.Path)
	}
}

func TestDownload_HTTPErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	catalog := testCatalog(t)
	d := NewDownloader(catalog)

	if _, err := d.Download(context.Background(), srv.URL+"/gone.zip", "gone"); err == nil {
		t.Fatal("Download should fail on HTTP 404")
	}
}

func TestExtractZip_RejectsEscapingEntries(t *testing.T) {
	// Build an archive with a path-traversal entry by hand.
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("../evil.txt")
	if err != nil {
		t.Fatalf("creating entry: %v", err)
	}
	if _, err := f.Write([]byte("pwned")); err != nil {
		t.Fatalf("writing entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	tmp := t.TempDir()
	archivePath := filepath.Join(tmp, "evil.zip")
	if err := os.WriteFile(archivePath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}

	err = extractZip(archivePath, filepath.Join(tmp, "out"))
	if err == nil {
		t.Fatal("extractZip should reject entries escaping the target directory")
	}
	if !strings.Contains(err.Error(), "escapes") {
		t.Errorf("error should mention escape, got: %v", err)
	}
}
