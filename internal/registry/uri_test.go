package registry

import (
	"strings"
	"testing"
)

// --- ResourceURI ---

func TestResourceURI_StripsDocumentationSegment(t *testing.T) {
	got := ResourceURI("https://developer.apple.com/documentation/mapkit/mapview", "abc123")
	want := "apple-docs://mapkit/mapview"
	if got != want {
		t.Errorf("ResourceURI = %s, want %s", got, want)
	}
}

func TestResourceURI_SingleSegment(t *testing.T) {
	got := ResourceURI("https://developer.apple.com/documentation/swiftui", "abc123")
	if got != "apple-docs://swiftui" {
		t.Errorf("ResourceURI = %s, want apple-docs://swiftui", got)
	}
}

func TestResourceURI_EmptyPathIsUnknown(t *testing.T) {
	got := ResourceURI("https://developer.apple.com/", "abc123")
	if got != "apple-docs://unknown" {
		t.Errorf("ResourceURI = %s, want apple-docs://unknown", got)
	}
}

func TestResourceURI_OnlyStructuralSegmentsIsUnknown(t *testing.T) {
	got := ResourceURI("https://developer.apple.com/documentation/", "abc123")
	if got != "apple-docs://unknown" {
		t.Errorf("ResourceURI = %s, want apple-docs://unknown", got)
	}
}

func TestResourceURI_UnparseableURLFallsBackToKey(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	got := ResourceURI("http://bad url\x7f", key)
	want := Scheme + "doc-01234567"
	if got != want {
		t.Errorf("ResourceURI = %s, want %s", got, want)
	}
}

// --- FallbackURI ---

func TestFallbackURI_UsesKeyPrefix(t *testing.T) {
	got := FallbackURI("deadbeefcafe0000")
	if got != "apple-docs://doc-deadbeef" {
		t.Errorf("FallbackURI = %s, want apple-docs://doc-deadbeef", got)
	}
}

func TestFallbackURI_ShortKey(t *testing.T) {
	got := FallbackURI("ab")
	if got != "apple-docs://doc-ab" {
		t.Errorf("FallbackURI = %s, want apple-docs://doc-ab", got)
	}
	if !strings.HasPrefix(got, Scheme) {
		t.Errorf("fallback %s missing scheme", got)
	}
}

// --- SanitizeName ---

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"MapView", "mapview"},
		{"Drawing Maps with MapKit", "drawing-maps-with-mapkit"},
		{"UIView.AnimationOptions", "uiview.animationoptions"},
		{"  spaced  out  ", "spaced-out"},
		{"///", "untitled"},
		{"", "untitled"},
	}
	for _, tc := range cases {
		if got := SanitizeName(tc.in); got != tc.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
