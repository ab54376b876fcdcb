package headers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// ArchivePrefix is prepended by web archives to the names of the headers
// the archived response was originally served with.
const ArchivePrefix = "x-archive-orig-"

var ErrNoOrigin = errors.New("URL has no scheme or host")

// Set maps lower-cased header names to their raw values.
type Set map[string]string

// Lower returns a copy of the headers with lower-cased names.
// If two names only differ in case, the one that was already lower case wins.
func Lower(h map[string]string) Set {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	// upper case sorts first, so lower case is assigned last
	sort.Strings(names)
	s := make(Set, len(h))
	for _, name := range names {
		s[strings.ToLower(name)] = h[name]
	}
	return s
}

// FromHTTP converts an http.Header. Multiple values of the same header are
// joined with a comma.
func FromHTTP(h http.Header) Set {
	s := make(Set, len(h))
	for name, values := range h {
		s[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	return s
}

// Unwrap returns the originally served headers of an archived response,
// i.e. all headers with the given prefix, with the prefix removed.
// Headers without the prefix were added by the archive and are dropped.
func Unwrap(h Set, prefix string) Set {
	s := make(Set)
	for name, value := range h {
		if strings.HasPrefix(name, prefix) {
			s[strings.TrimPrefix(name, prefix)] = value
		}
	}
	return s
}

// HasPrefixed reports whether any header name has the given prefix.
func HasPrefixed(h Set, prefix string) bool {
	for name := range h {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Origin returns `scheme://host` for the given URL.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return "", fmt.Errorf("%q: %w", rawURL, ErrNoOrigin)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Hostname()), nil
}
