package services

import (
	"context"
	"fmt"

	"github.com/Botopiaorg/mietmap/geo"
	"github.com/Botopiaorg/mietmap/models"
	"github.com/Botopiaorg/mietmap/storage"
	"github.com/Botopiaorg/mietmap/utils"
)

// AddressGeocoder resolves a composite address string into coordinates.
// Satisfied by *geo.Geocoder.
type AddressGeocoder interface {
	Lookup(ctx context.Context, address string) (geo.Result, error)
}

// Backfill enriches stored listings that lack coordinates but carry a
// complete address.
type Backfill struct {
	store    storage.ListingStore
	geocoder AddressGeocoder
	city     string
	logger   *utils.Logger
}

// NewBackfill creates a Backfill pass for the given city.
func NewBackfill(store storage.ListingStore, geocoder AddressGeocoder, city string, logger *utils.Logger) *Backfill {
	return &Backfill{
		store:    store,
		geocoder: geocoder,
		city:     city,
		logger:   logger,
	}
}

// Run geocodes every candidate row and writes the resolved coordinates back
// in one batch. A failed lookup is logged and skipped; the failed address is
// not cached, so the next run retries it.
func (b *Backfill) Run(ctx context.Context) error {
	rows, err := b.store.SelectMissingCoordinates()
	if err != nil {
		return err
	}

	b.logger.Info("Looking up coordinates for %d addresses (this might take a while)", len(rows))

	var updates []models.CoordinateUpdate
	for _, row := range rows {
		address := fmt.Sprintf("%s %s, %s, %s", row.Street, row.Number, row.Suburb, b.city)

		result, err := b.geocoder.Lookup(ctx, address)
		if err != nil {
			b.logger.Warn("[backfill] %v — skipping listing %s", err, row.ID)
			continue
		}
		if !result.Found {
			b.logger.Debug("[backfill] No match for %q", address)
			continue
		}

		updates = append(updates, models.CoordinateUpdate{
			ID:        row.ID,
			Latitude:  result.Latitude,
			Longitude: result.Longitude,
		})
	}

	updated, err := b.store.UpdateCoordinates(updates)
	if err != nil {
		return err
	}

	b.logger.Info("Updated %d listings with coordinates", updated)
	return nil
}
