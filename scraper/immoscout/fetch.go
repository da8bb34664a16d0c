package immoscout

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/Botopiaorg/mietmap/utils"
)

// FetchError reports a result page that could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("immoscout: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PageFetcher retrieves a result page as a parsed document.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// HTTPFetcher fetches pages over plain HTTP GET. Requests are throttled by a
// politeness limiter and transient failures are retried with back-off; both
// stay below the pagination driver, which itself never retries.
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	retry     *utils.RetryConfig
	userAgent string
}

// NewHTTPFetcher creates an HTTPFetcher allowing at most requestsPerSecond
// fetches and maxAttempts attempts per page.
func NewHTTPFetcher(requestsPerSecond float64, maxAttempts int, userAgent string, log *utils.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		userAgent: userAgent,
		retry: &utils.RetryConfig{
			MaxAttempts: maxAttempts,
			BaseDelay:   2 * time.Second,
			Logger:      log,
		},
	}
}

// Fetch downloads the document at url and parses it.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	var doc *goquery.Document

	err := f.retry.Do(fmt.Sprintf("fetch %s", url), func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", f.userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		d, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return fmt.Errorf("parse document: %w", err)
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return doc, nil
}
