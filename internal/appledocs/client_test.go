package appledocs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDataURL(t *testing.T) {
	c := NewClient("")

	got, err := c.DataURL("https://developer.apple.com/documentation/mapkit/mapview")
	if err != nil {
		t.Fatalf("DataURL failed: %v", err)
	}
	want := "https://developer.apple.com/tutorials/data/documentation/mapkit/mapview.json"
	if got != want {
		t.Errorf("DataURL = %s, want %s", got, want)
	}
}

func TestDataURL_NoPathFails(t *testing.T) {
	c := NewClient("")
	if _, err := c.DataURL("https://developer.apple.com/"); err == nil {
		t.Error("DataURL should fail for a URL without a path")
	}
}

func TestFetchPage_DecodesServedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tutorials/data/documentation/mapkit/mapview.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	page, err := c.FetchPage(context.Background(), "https://developer.apple.com/documentation/mapkit/mapview")
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if page.Metadata.Title != "MapView" {
		t.Errorf("Title = %s, want MapView", page.Metadata.Title)
	}
}

func TestFetchPage_NonOKStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchPage(context.Background(), "https://developer.apple.com/documentation/mapkit")
	if err == nil {
		t.Fatal("FetchPage should fail on HTTP 500")
	}
	if !strings.Contains(err.Error(), "unexpected status") {
		t.Errorf("error should mention status, got: %v", err)
	}
}

func TestFetchMarkdown_RendersFetchedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	md, err := c.FetchMarkdown(context.Background(), "https://developer.apple.com/documentation/mapkit/mapview")
	if err != nil {
		t.Fatalf("FetchMarkdown failed: %v", err)
	}
	if !strings.HasPrefix(md, "# MapView") {
		t.Errorf("markdown should start with the page title, got %q", md[:40])
	}
}

func TestSearch_ExtractsDocumentationLinks(t *testing.T) {
	const searchHTML = `<html><body>
	  <a href="/documentation/mapkit/mapview" class="result">MapView</a>
	  <a href="/documentation/mapkit/mapview" class="dup">MapView again</a>
	  <a href="/documentation/swiftui/map">Map</a>
	  <a href="/support/">Support</a>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("q"); got != "map view" {
			t.Errorf("query = %q, want 'map view'", got)
		}
		_, _ = w.Write([]byte(searchHTML))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	results, err := c.Search(context.Background(), "map view")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (duplicates collapsed, non-doc links skipped)", len(results))
	}
	if results[0].Title != "MapView" {
		t.Errorf("results[0].Title = %s, want MapView", results[0].Title)
	}
	if results[0].URL != srv.URL+"/documentation/mapkit/mapview" {
		t.Errorf("results[0].URL = %s", results[0].URL)
	}
	if results[1].URL != srv.URL+"/documentation/swiftui/map" {
		t.Errorf("results[1].URL = %s", results[1].URL)
	}
}

func TestSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>No results</body></html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	results, err := c.Search(context.Background(), "zzz")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}
