package immoscout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/Botopiaorg/mietmap/models"
)

type fakeFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	f.fetched = append(f.fetched, url)
	html, ok := f.pages[url]
	if !ok {
		return nil, &FetchError{URL: url, Err: errors.New("not found")}
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

type fakeSink struct {
	seen    map[string]bool
	inserts []int
}

func (s *fakeSink) InsertNew(listings map[string]*models.Listing) (int, error) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	count := 0
	for id := range listings {
		if !s.seen[id] {
			s.seen[id] = true
			count++
		}
	}
	s.inserts = append(s.inserts, count)
	return count, nil
}

const pagerTwoPages = `<select id="pageSelection"><option>1</option><option>2</option></select>`

func TestCrawlerWalksAllPages(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		// Page 2 has no pager control: the count from page 1 must be
		// reused, never re-derived.
		"base":   pagerTwoPages + entryHTML("1", "Musterweg 1, Oststadt, Karlsruhe", "500 €", "50 m²"),
		"page-2": entryHTML("2", "Musterweg 2, Oststadt, Karlsruhe", "600 €", "60 m²"),
	}}
	sink := &fakeSink{}

	crawler := NewCrawler("base", "page-%d", fetcher, sink, testLogger(t))
	if err := crawler.Run(context.Background()); err != nil {
		t.Fatalf("Run unexpected error: %v", err)
	}

	if len(fetcher.fetched) != 2 {
		t.Fatalf("fetched %d pages (%v); want 2", len(fetcher.fetched), fetcher.fetched)
	}
	if fetcher.fetched[0] != "base" || fetcher.fetched[1] != "page-2" {
		t.Errorf("fetched URLs = %v; want [base page-2]", fetcher.fetched)
	}
	if len(sink.seen) != 2 {
		t.Errorf("stored %d listings; want 2", len(sink.seen))
	}
}

func TestCrawlerDeduplicatesAcrossPages(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"base":   pagerTwoPages + entryHTML("1", "Musterweg 1, Oststadt, Karlsruhe", "500 €", "50 m²"),
		"page-2": entryHTML("1", "Musterweg 1, Oststadt, Karlsruhe", "500 €", "50 m²"),
	}}
	sink := &fakeSink{}

	crawler := NewCrawler("base", "page-%d", fetcher, sink, testLogger(t))
	if err := crawler.Run(context.Background()); err != nil {
		t.Fatalf("Run unexpected error: %v", err)
	}

	want := []int{1, 0}
	for i, got := range sink.inserts {
		if got != want[i] {
			t.Errorf("page %d inserted %d new listings; want %d", i+1, got, want[i])
		}
	}
}

func TestCrawlerFetchFailureAborts(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"base": pagerTwoPages + entryHTML("1", "Musterweg 1, Oststadt, Karlsruhe", "500 €", "50 m²"),
		// page-2 missing
	}}
	sink := &fakeSink{}

	crawler := NewCrawler("base", "page-%d", fetcher, sink, testLogger(t))
	err := crawler.Run(context.Background())
	if err == nil {
		t.Fatal("expected fetch error, got none")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("error = %T; want *FetchError", err)
	}
}

func TestCrawlerMissingPagerAborts(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"base": entryHTML("1", "Musterweg 1, Oststadt, Karlsruhe", "500 €", "50 m²"),
	}}
	sink := &fakeSink{}

	crawler := NewCrawler("base", "page-%d", fetcher, sink, testLogger(t))
	err := crawler.Run(context.Background())
	if err == nil {
		t.Fatal("expected parse error, got none")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error = %T; want *ParseError", err)
	}
	if len(sink.inserts) != 0 {
		t.Errorf("sink received %d inserts; want 0", len(sink.inserts))
	}
}
