package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Botopiaorg/mietmap/models"
	"github.com/Botopiaorg/mietmap/utils"
)

// InsightService computes rent statistics over the stored data set and
// prints them as an end-of-run report.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes the report over all stored listings.
func (s *InsightService) Generate(listings []models.Listing) *models.RentReport {
	report := &models.RentReport{
		ListingsBySuburb: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var rentTotal, areaTotal, sqmTotal float64
	var sqmCount int
	report.MinRent = listings[0].Rent
	report.MaxRent = listings[0].Rent

	for i := range listings {
		l := &listings[i]

		if l.Street != nil && *l.Street != "" {
			report.WithAddress++
		}
		if l.Latitude != nil {
			report.Geocoded++
		}
		if l.Suburb != nil && *l.Suburb != "" {
			report.ListingsBySuburb[*l.Suburb]++
		}

		rentTotal += l.Rent
		areaTotal += l.Area
		if l.Area > 0 {
			sqmTotal += l.Rent / l.Area
			sqmCount++
		}

		if l.Rent < report.MinRent {
			report.MinRent = l.Rent
		}
		if l.Rent > report.MaxRent {
			report.MaxRent = l.Rent
			report.MostExpensive = l
		}
	}

	report.AverageRent = round(rentTotal/float64(len(listings)), 2)
	report.AverageArea = round(areaTotal/float64(len(listings)), 2)
	if sqmCount > 0 {
		report.AverageRentPerSqm = round(sqmTotal/float64(sqmCount), 2)
	}

	return report
}

// Log writes the report through the run logger.
func (s *InsightService) Log(r *models.RentReport) {
	s.logger.Info("Stored listings: %d total, %d with address, %d geocoded",
		r.TotalListings, r.WithAddress, r.Geocoded)

	if r.TotalListings == 0 {
		return
	}

	s.logger.Info("Rent: avg %.2f € (min %.2f, max %.2f), avg area %.2f m², avg %.2f €/m²",
		r.AverageRent, r.MinRent, r.MaxRent, r.AverageArea, r.AverageRentPerSqm)

	if r.MostExpensive != nil && r.MostExpensive.Suburb != nil {
		s.logger.Info("Most expensive listing: %s (%.2f €)", *r.MostExpensive.Suburb, r.MostExpensive.Rent)
	}

	type suburbCount struct {
		suburb string
		count  int
	}
	var suburbs []suburbCount
	for suburb, count := range r.ListingsBySuburb {
		suburbs = append(suburbs, suburbCount{suburb, count})
	}
	sort.Slice(suburbs, func(i, j int) bool {
		if suburbs[i].count != suburbs[j].count {
			return suburbs[i].count > suburbs[j].count
		}
		return suburbs[i].suburb < suburbs[j].suburb
	})

	top := suburbs
	if len(top) > 5 {
		top = top[:5]
	}
	parts := make([]string, 0, len(top))
	for _, sc := range top {
		parts = append(parts, fmt.Sprintf("%s (%d)", sc.suburb, sc.count))
	}
	if len(parts) > 0 {
		s.logger.Info("Busiest suburbs: %s", strings.Join(parts, ", "))
	}
}
