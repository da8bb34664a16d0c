package immoscout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Botopiaorg/mietmap/models"
	"github.com/Botopiaorg/mietmap/utils"
)

const (
	exposePrefix    = "/expose/"
	rentSuffix      = " €"
	areaSuffix      = " m²"
	entrySelector   = "article.result-list-entry"
	addressSelector = "div.result-list-entry__address span"
	criteriaSel     = "dl.result-list-entry__primary-criterion"
	pagerSelector   = "#pageSelection option"
)

// ParseError reports an expected HTML element that could not be located.
type ParseError struct {
	Element string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("immoscout: extract %s: %s", e.Element, e.Reason)
}

// ExtractListings extracts individual rent listings from a result page.
//
// It returns a map of listing IDs to listings, plus the number of listings
// that carried no address element. Blocks without a detail link are not
// listings and are skipped silently; listings whose address or criteria
// cannot be parsed are dropped with a warning so one malformed block never
// aborts the page. Repeated IDs within a page overwrite earlier entries.
func ExtractListings(doc *goquery.Document, log *utils.Logger) (map[string]*models.Listing, int) {
	listings := make(map[string]*models.Listing)
	noAddresses := 0

	doc.Find(entrySelector).Each(func(_ int, entry *goquery.Selection) {
		id := findListingID(entry)
		if id == "" {
			return
		}

		var street, number *string
		suburb := ""

		addr := firstTextNode(entry.Find(addressSelector).First())
		if addr == "" {
			// Listing published without an address. Stored as empty
			// strings, not NULL, so the row is still distinguishable
			// from a sparse suburb-only address.
			noAddresses++
			empty := ""
			street, number = &empty, &empty
		} else {
			var err error
			street, number, suburb, err = ParseAddress(addr)
			if err != nil {
				log.Warn("[extract] Listing %s: %v — dropping listing", id, err)
				return
			}
		}

		rent, area, err := extractCriteria(entry)
		if err != nil {
			log.Warn("[extract] Listing %s: %v — dropping listing", id, err)
			return
		}

		listings[id] = &models.Listing{
			ID:     id,
			Street: street,
			Number: number,
			Suburb: &suburb,
			Rent:   rent,
			Area:   area,
		}
	})

	return listings, noAddresses
}

// ExtractPageCount extracts the number of result pages from the page-selector
// control of a result page.
func ExtractPageCount(doc *goquery.Document) (int, error) {
	options := doc.Find(pagerSelector)
	if options.Length() == 0 {
		return 0, &ParseError{Element: "page selector", Reason: "control not found"}
	}

	last := strings.TrimSpace(options.Last().Text())
	fields := strings.Fields(last)
	if len(fields) == 0 {
		return 0, &ParseError{Element: "page selector", Reason: "last option is empty"}
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, &ParseError{Element: "page selector", Reason: fmt.Sprintf("non-numeric option %q", last)}
	}
	return n, nil
}

// findListingID returns the trailing path segment of the block's detail link,
// or "" if the block has no such link.
func findListingID(entry *goquery.Selection) string {
	id := ""
	entry.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, exposePrefix) {
			return true
		}
		segments := strings.Split(href, "/")
		id = segments[len(segments)-1]
		return false
	})
	return id
}

// firstTextNode returns the trimmed content of the selection's first child
// text node. The address span may nest further markup; only the leading text
// belongs to the street line.
func firstTextNode(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	for c := sel.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			return strings.TrimSpace(c.Data)
		}
	}
	return ""
}

// extractCriteria scans the block's primary-criterion definition lists for
// the rent and area values. Entries with any other unit are ignored. A block
// yielding neither value for one of the two required fields is an anomaly
// and fails the listing, so no value ever leaks between listings.
func extractCriteria(entry *goquery.Selection) (rent, area float64, err error) {
	var rentSet, areaSet bool
	var parseErr error

	entry.Find(criteriaSel).EachWithBreak(func(_ int, dl *goquery.Selection) bool {
		content := strings.TrimSpace(dl.Find("dd").First().Text())
		fields := strings.Fields(content)
		if len(fields) == 0 {
			return true
		}

		switch {
		case strings.HasSuffix(content, rentSuffix):
			rent, parseErr = ParseNumber(fields[0])
			rentSet = parseErr == nil
		case strings.HasSuffix(content, areaSuffix):
			area, parseErr = ParseNumber(fields[0])
			areaSet = parseErr == nil
		}
		return parseErr == nil
	})

	if parseErr != nil {
		return 0, 0, parseErr
	}
	if !rentSet || !areaSet {
		return 0, 0, &ParseError{Element: "primary criteria", Reason: "rent or area missing"}
	}
	return rent, area, nil
}
