package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Botopiaorg/mietmap/utils"
)

const defaultSearchURL = "https://nominatim.openstreetmap.org/search"

// GeocodeError reports a failed lookup against the geocoding service. Failed
// lookups are never cached, so a future run retries the address.
type GeocodeError struct {
	Address string
	Err     error
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("geo: geocode %q: %v", e.Address, e.Err)
}

func (e *GeocodeError) Unwrap() error { return e.Err }

// nominatimResult mirrors the relevant part of the OSM search payload.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocoder resolves address strings to coordinates via Nominatim, composed
// with a persistent cache and a sliding-window rate limiter. Cache hits never
// touch the limiter or the network.
type Geocoder struct {
	client    *http.Client
	searchURL string
	userAgent string
	limiter   *RateLimiter
	cache     *Cache
	logger    *utils.Logger
}

// NewGeocoder creates a Geocoder. As per Nominatim's terms of service the
// limiter should allow at most one call per second; timeout bounds a single
// lookup (the original service default is 5s).
func NewGeocoder(cache *Cache, limiter *RateLimiter, timeout time.Duration, userAgent string, logger *utils.Logger) *Geocoder {
	return &Geocoder{
		client:    &http.Client{Timeout: timeout},
		searchURL: defaultSearchURL,
		userAgent: userAgent,
		limiter:   limiter,
		cache:     cache,
		logger:    logger,
	}
}

// Lookup geocodes an address. A cache hit returns immediately and never
// touches the limiter or the network. On a miss the call is rate limited,
// and both positive and "no match" answers are persisted before returning.
// Transport errors propagate uncached.
func (g *Geocoder) Lookup(ctx context.Context, address string) (Result, error) {
	if r, ok := g.cache.Get(address); ok {
		return r, nil
	}

	g.limiter.Acquire()

	r, err := g.search(ctx, address)
	if err != nil {
		return Result{}, &GeocodeError{Address: address, Err: err}
	}

	if err := g.cache.Put(address, r); err != nil {
		return Result{}, err
	}
	return r, nil
}

func (g *Geocoder) search(ctx context.Context, address string) (Result, error) {
	params := url.Values{}
	params.Add("q", address)
	params.Add("format", "json")
	params.Add("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Result{}, fmt.Errorf("decode payload: %w", err)
	}

	if len(raw) == 0 {
		return Result{Found: false}, nil
	}

	lat, err := strconv.ParseFloat(raw[0].Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("invalid latitude %q", raw[0].Lat)
	}
	lon, err := strconv.ParseFloat(raw[0].Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("invalid longitude %q", raw[0].Lon)
	}

	return Result{Found: true, Latitude: lat, Longitude: lon}, nil
}
