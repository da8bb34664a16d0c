package storage

import "github.com/Botopiaorg/mietmap/models"

// ListingStore is the interface the persistence backend must satisfy.
type ListingStore interface {
	// InsertNew stores listings, ignoring IDs already present. Returns the
	// number of rows actually written.
	InsertNew(listings map[string]*models.Listing) (int, error)
	// SelectMissingCoordinates returns listings without coordinates whose
	// address is complete enough to geocode.
	SelectMissingCoordinates() ([]models.AddressRow, error)
	// UpdateCoordinates applies staged geolocations in one batch.
	UpdateCoordinates(updates []models.CoordinateUpdate) (int, error)
	// FetchAll returns every stored listing.
	FetchAll() ([]models.Listing, error)
	// FetchMarkers returns the rows eligible for the marker export.
	FetchMarkers() ([]models.MarkerRow, error)
	Close() error
}
