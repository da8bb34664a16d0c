package immoscout

import (
	"context"
	"fmt"

	"github.com/Botopiaorg/mietmap/models"
	"github.com/Botopiaorg/mietmap/utils"
)

// ListingSink persists freshly extracted listings. Satisfied by the listing
// store; inserts must ignore already-known IDs.
type ListingSink interface {
	InsertNew(listings map[string]*models.Listing) (int, error)
}

// Crawler walks the paginated result list and feeds every page's listings
// into the sink.
type Crawler struct {
	baseURL string
	pageURL string
	fetcher PageFetcher
	sink    ListingSink
	logger  *utils.Logger
}

// NewCrawler creates a Crawler. pageURL must contain one %d verb for the
// page number; baseURL is used for page 1.
func NewCrawler(baseURL, pageURL string, fetcher PageFetcher, sink ListingSink, logger *utils.Logger) *Crawler {
	return &Crawler{
		baseURL: baseURL,
		pageURL: pageURL,
		fetcher: fetcher,
		sink:    sink,
		logger:  logger,
	}
}

func (c *Crawler) pageAddress(page int) string {
	if page == 1 {
		return c.baseURL
	}
	return fmt.Sprintf(c.pageURL, page)
}

// Run fetches every result page once and stores the new listings.
//
// The total page count is taken from page 1 and deliberately not re-derived
// on later pages; a page count changing mid-run is undefined behaviour.
// Fetch and page-count failures abort the pass without retry.
func (c *Crawler) Run(ctx context.Context) error {
	totalPages := 0
	totalNew := 0
	totalNoAddress := 0

	for page := 1; totalPages == 0 || page <= totalPages; page++ {
		c.logger.Info("Fetching page %d", page)

		doc, err := c.fetcher.Fetch(ctx, c.pageAddress(page))
		if err != nil {
			return err
		}

		if totalPages == 0 {
			totalPages, err = ExtractPageCount(doc)
			if err != nil {
				return err
			}
			c.logger.Info("Result list spans %d pages", totalPages)
		}

		listings, noAddresses := ExtractListings(doc, c.logger)
		newCount, err := c.sink.InsertNew(listings)
		if err != nil {
			return fmt.Errorf("store page %d listings: %w", page, err)
		}

		c.logger.Info("Extracted %d listings (%d new)", len(listings), newCount)
		c.logger.Info("%d listings without addresses", noAddresses)

		totalNew += newCount
		totalNoAddress += noAddresses
	}

	c.logger.Info("Overall %d listings without addresses", totalNoAddress)
	c.logger.Info("Overall %d new listings", totalNew)
	return nil
}
