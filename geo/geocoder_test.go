package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Botopiaorg/mietmap/utils"
)

func testLogger(t *testing.T) *utils.Logger {
	t.Helper()
	logger, err := utils.NewLogger("", false)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	return logger
}

func newTestGeocoder(t *testing.T, cachePath, searchURL string) *Geocoder {
	t.Helper()
	cache, err := LoadCache(cachePath)
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	g := NewGeocoder(cache, NewRateLimiter(1000, time.Second), 5*time.Second, "mietmap-test", testLogger(t))
	g.searchURL = searchURL
	return g
}

func TestGeocoderLookup(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.URL.Query().Get("q"); got == "" {
			t.Errorf("missing q parameter in %s", r.URL)
		}
		w.Write([]byte(`[{"lat":"49.0069","lon":"8.4037"}]`))
	}))
	defer server.Close()

	g := newTestGeocoder(t, filepath.Join(t.TempDir(), "cache.gob"), server.URL)

	result, err := g.Lookup(context.Background(), "Kaiserstraße 41, Karlsruhe")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !result.Found || result.Latitude != 49.0069 || result.Longitude != 8.4037 {
		t.Errorf("result = %+v; want found at (49.0069, 8.4037)", result)
	}
	if requests != 1 {
		t.Errorf("server saw %d requests; want 1", requests)
	}
}

func TestGeocoderCacheHitSkipsTransport(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`[{"lat":"49.0","lon":"8.4"}]`))
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "cache.gob")
	g := newTestGeocoder(t, cachePath, server.URL)

	if _, err := g.Lookup(context.Background(), "Musterweg 1, Karlsruhe"); err != nil {
		t.Fatalf("first Lookup: %v", err)
	}
	if _, err := g.Lookup(context.Background(), "Musterweg 1, Karlsruhe"); err != nil {
		t.Fatalf("second Lookup: %v", err)
	}
	if requests != 1 {
		t.Errorf("server saw %d requests; want 1 (second lookup served from cache)", requests)
	}

	// Restart: a fresh geocoder on the same cache file still never calls out.
	g2 := newTestGeocoder(t, cachePath, server.URL)
	result, err := g2.Lookup(context.Background(), "Musterweg 1, Karlsruhe")
	if err != nil {
		t.Fatalf("Lookup after reload: %v", err)
	}
	if !result.Found || result.Latitude != 49.0 {
		t.Errorf("result after reload = %+v; want cached (49.0, 8.4)", result)
	}
	if requests != 1 {
		t.Errorf("server saw %d requests after restart; want still 1", requests)
	}
}

func TestGeocoderCachesNoMatch(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	g := newTestGeocoder(t, filepath.Join(t.TempDir(), "cache.gob"), server.URL)

	result, err := g.Lookup(context.Background(), "Nowhere 1, Atlantis")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if result.Found {
		t.Errorf("result = %+v; want not found", result)
	}

	if _, err := g.Lookup(context.Background(), "Nowhere 1, Atlantis"); err != nil {
		t.Fatalf("second Lookup: %v", err)
	}
	if requests != 1 {
		t.Errorf("server saw %d requests; want 1 (no-match answer is cached)", requests)
	}
}

func TestGeocoderErrorNotCached(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"lat":"49.0","lon":"8.4"}]`))
	}))
	defer server.Close()

	g := newTestGeocoder(t, filepath.Join(t.TempDir(), "cache.gob"), server.URL)

	_, err := g.Lookup(context.Background(), "Musterweg 1, Karlsruhe")
	if err == nil {
		t.Fatal("expected error from failing upstream, got none")
	}
	var geocodeErr *GeocodeError
	if !errors.As(err, &geocodeErr) {
		t.Errorf("error = %T; want *GeocodeError", err)
	}

	// The failure was not cached: the retry reaches the service and
	// succeeds.
	result, err := g.Lookup(context.Background(), "Musterweg 1, Karlsruhe")
	if err != nil {
		t.Fatalf("retry Lookup: %v", err)
	}
	if !result.Found {
		t.Errorf("retry result = %+v; want found", result)
	}
	if requests != 2 {
		t.Errorf("server saw %d requests; want 2", requests)
	}
}
