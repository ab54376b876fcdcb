package snapshot

import (
	"regexp"
	"time"

	"github.com/ericselin/header-lottery/headers"
	"github.com/ericselin/header-lottery/rfc7089"
)

// Sources whose headers are the ones originally served, i.e. not replayed
// by a web archive.
const (
	Live        = "live"
	CommonCrawl = "c-crawl"
)

// MaxDrift is how far the archived datetime may be from the requested one
// for the snapshot to count as a capture of that point in time.
const MaxDrift = 42 * 24 * time.Hour

var archivedURLRegex = regexp.MustCompile(`[0-9]+(?:mp_)?/(http.*)$`)

// Snapshot is a response of a site at some point in time, either fetched
// live or replayed from a web archive.
type Snapshot struct {
	// URL is the final URL of a live response, or the memento URL of an archived one.
	URL string `json:"url"`
	// Archive is the name of the web archive, or Live.
	Archive     string      `json:"archive"`
	RequestedAt time.Time   `json:"requestedAt"`
	Headers     headers.Set `json:"headers"`
}

// IsArchived reports whether the headers were replayed by a web archive.
func (s Snapshot) IsArchived() bool {
	return s.Archive != Live && s.Archive != CommonCrawl
}

// OriginalURL returns the URL of the captured resource.
func (s Snapshot) OriginalURL() string {
	if !s.IsArchived() {
		return s.URL
	}
	if u, ok := ArchivedURL(s.URL); ok {
		return u
	}
	return s.URL
}

// Served returns the headers the site itself served.
func (s Snapshot) Served() headers.Set {
	h := headers.Lower(s.Headers)
	if !s.IsArchived() {
		return h
	}
	return headers.Unwrap(h, headers.ArchivePrefix)
}

// MementoTime returns the datetime of the archived capture.
func (s Snapshot) MementoTime() (time.Time, bool) {
	return rfc7089.MementoDatetime(headers.Lower(s.Headers))
}

// Valid reports whether the snapshot can be used for analysis: an archived
// snapshot must be captured within MaxDrift of the requested date and must
// carry the originally served headers.
func (s Snapshot) Valid() bool {
	if !s.IsArchived() {
		return true
	}
	captured, ok := s.MementoTime()
	if !ok {
		return false
	}
	drift := s.RequestedAt.Sub(captured)
	if drift < 0 {
		drift = -drift
	}
	return drift < MaxDrift && headers.HasPrefixed(headers.Lower(s.Headers), headers.ArchivePrefix)
}

// Classify classifies the served headers. If the origin cannot be derived
// from the URL, frame-ancestors sources only match 'self'.
func (s Snapshot) Classify() headers.Result {
	origin, err := headers.Origin(s.OriginalURL())
	if err != nil {
		origin = ""
	}
	return headers.Classify(s.Served(), origin)
}

// ArchivedURL extracts the original URL from a memento URL such as
// https://web.archive.org/web/20200101000000/https://example.com/.
func ArchivedURL(memento string) (string, bool) {
	m := archivedURLRegex.FindStringSubmatch(memento)
	if m == nil {
		return "", false
	}
	return m[1], true
}
