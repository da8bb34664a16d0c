package models

// Listing is one scraped rent listing. Street and Number are nil when the
// source address was too sparse to split (suburb-only addresses); all three
// address fields are empty strings when the listing carried no address element
// at all. Latitude/Longitude stay nil until the coordinate backfill resolves
// them.
type Listing struct {
	ID        string   `json:"id"`
	Street    *string  `json:"street"`
	Number    *string  `json:"number"`
	Suburb    *string  `json:"suburb"`
	Rent      float64  `json:"rent"`
	Area      float64  `json:"area"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Date      string   `json:"date"`
}

// AddressRow is a listing still lacking coordinates but carrying a complete,
// geocodable address.
type AddressRow struct {
	ID     string
	Street string
	Number string
	Suburb string
}

// CoordinateUpdate stages one resolved geolocation for a batch write-back.
type CoordinateUpdate struct {
	ID        string
	Latitude  float64
	Longitude float64
}

// MarkerRow is the store projection the marker export is computed from.
type MarkerRow struct {
	Latitude  float64
	Longitude float64
	Rent      float64
	Area      float64
}

// Marker is a minimal map data point: [latitude, longitude, rent per m²].
type Marker [3]float64

// RentReport holds the computed statistics over the stored data set.
type RentReport struct {
	TotalListings     int
	WithAddress       int
	Geocoded          int
	AverageRent       float64
	MinRent           float64
	MaxRent           float64
	AverageArea       float64
	AverageRentPerSqm float64
	MostExpensive     *Listing
	ListingsBySuburb  map[string]int
}
