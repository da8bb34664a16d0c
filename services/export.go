package services

import (
	"math"

	"github.com/Botopiaorg/mietmap/models"
	"github.com/Botopiaorg/mietmap/storage"
	"github.com/Botopiaorg/mietmap/utils"
)

const (
	// MarkersFile holds the map marker view: [lat, lon, rent per m²].
	MarkersFile = "markers.json"
	// ListingsFile holds the raw dump, one object per stored row.
	ListingsFile = "listings.json"
)

// Exporter serialises the two JSON views of the listing store.
type Exporter struct {
	store  storage.ListingStore
	writer *storage.JSONWriter
	logger *utils.Logger
}

// NewExporter creates an Exporter writing into the given JSON writer's
// directory.
func NewExporter(store storage.ListingStore, writer *storage.JSONWriter, logger *utils.Logger) *Exporter {
	return &Exporter{store: store, writer: writer, logger: logger}
}

// ExportMarkers writes the marker view for every geolocated row with a house
// number. Coordinates are rounded to 5 decimals, rent per m² to 1 decimal.
// Rows with zero area cannot yield a rent-per-area figure and are skipped.
func (e *Exporter) ExportMarkers() error {
	e.logger.Info("Exporting marker data to JSON file %q", e.writer.Path(MarkersFile))

	rows, err := e.store.FetchMarkers()
	if err != nil {
		return err
	}

	markers := BuildMarkers(rows, e.logger)
	return e.writer.Write(MarkersFile, markers)
}

// ExportRaw writes every column of every row as a flat record, in store
// iteration order.
func (e *Exporter) ExportRaw() error {
	e.logger.Info("Exporting raw data to JSON file %q", e.writer.Path(ListingsFile))

	listings, err := e.store.FetchAll()
	if err != nil {
		return err
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return e.writer.Write(ListingsFile, listings)
}

// BuildMarkers converts marker rows into the exported marker tuples.
func BuildMarkers(rows []models.MarkerRow, logger *utils.Logger) []models.Marker {
	markers := make([]models.Marker, 0, len(rows))
	for _, r := range rows {
		if r.Area == 0 {
			logger.Warn("[export] Listing with zero area at (%f, %f) — skipping marker", r.Latitude, r.Longitude)
			continue
		}
		markers = append(markers, models.Marker{
			round(r.Latitude, 5),
			round(r.Longitude, 5),
			round(r.Rent/r.Area, 1),
		})
	}
	return markers
}

func round(f float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(f*shift) / shift
}
