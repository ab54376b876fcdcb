package rfc7089

import (
	"fmt"
	"strings"
	"time"
)

// §  2.1.1.  Memento-Datetime
// §
// §     The "Memento-Datetime" response header is used by a server to indicate
// §     that a response reflects a prior state of an Original Resource.  Its
// §     value expresses the datetime of that state.
// §
// §     The "Memento-Datetime" response header MUST be expressed as
// §     [RFC1123] datetime in Greenwich Mean Time (GMT).
// §
// §       Memento-Datetime = "Memento-Datetime" ":" HTTP-date

// HeaderName is the lower-cased name of the Memento-Datetime header.
const HeaderName = "memento-datetime"

// MementoDatetime returns the datetime of the archived state from a header
// map with lower-cased names.
func MementoDatetime(headers map[string]string) (time.Time, bool) {
	value, ok := headers[HeaderName]
	if !ok {
		return time.Time{}, false
	}
	date, err := ParseDate(value)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// §  HTTP-date    = IMF-fixdate / obs-date
// §  obs-date     = rfc850-date / asctime-date
//
// The IMF-fixdate layout has a literal GMT, so other zones are rejected.
var dateLayouts = []string{
	"Mon, 02 Jan 2006 15:04:05 GMT",
	time.RFC850,
	time.ANSIC,
}

// ParseDate parses an HTTP-date in any of its three formats. Archives are
// not always careful about case, so the value is upper-cased first.
func ParseDate(value string) (time.Time, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	var err error
	for _, layout := range dateLayouts {
		var date time.Time
		if date, err = time.Parse(layout, value); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an HTTP-date: %w", value, err)
}
