package immoscout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FormatError reports a German-locale string that could not be parsed.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("immoscout: cannot parse %q: %s", e.Input, e.Reason)
}

// strasseRegexp matches the trailing "strasse"/"str." spellings that get
// normalised to "straße", keeping the case of the leading s.
var strasseRegexp = regexp.MustCompile(`([Ss])(trasse|tr\.)$`)

// ParseNumber parses a German float string. German uses a dot for the
// thousands separator and a comma for the decimal mark.
func ParseNumber(s string) (float64, error) {
	cleaned := strings.ReplaceAll(s, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &FormatError{Input: s, Reason: "not a German-formatted number"}
	}
	return f, nil
}

// ParseAddress splits an address string into street, house number, and
// suburb. A sparse two-field address without a house number
// ("Innenstadt-Ost, Karlsruhe") cannot be split further: the whole first
// field becomes the suburb and street/number stay nil. Otherwise the first
// field is split on its last space into street and number, with trailing
// "strasse"/"str." spellings normalised to "straße", and the second field is
// the suburb.
func ParseAddress(address string) (street, number *string, suburb string, err error) {
	parts := strings.Split(address, ", ")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		fields = append(fields, strings.TrimSpace(p))
	}

	if len(fields) < 2 {
		return nil, nil, "", &FormatError{Input: address, Reason: "expected at least two comma-separated fields"}
	}

	idx := strings.LastIndex(fields[0], " ")
	if idx < 0 {
		if len(fields) == 2 {
			return nil, nil, fields[0], nil
		}
		return nil, nil, "", &FormatError{Input: address, Reason: "no house number in street field"}
	}

	s := strasseRegexp.ReplaceAllString(fields[0][:idx], "${1}traße")
	n := fields[0][idx+1:]
	return &s, &n, fields[1], nil
}
