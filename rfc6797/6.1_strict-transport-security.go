package rfc6797

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

// §  6.1.  Strict-Transport-Security HTTP Response Header Field
// §
// §     The Strict-Transport-Security HTTP response header field (STS header
// §     field) indicates to a UA that it MUST enforce the HSTS Policy in
// §     regards to the host emitting the response message containing this
// §     header field.
// §
// §     Strict-Transport-Security = "Strict-Transport-Security" ":"
// §                                 [ directive ]  *( ";" [ directive ] )
// §
// §     directive                 = directive-name [ "=" directive-value ]
// §     directive-name            = token
// §     directive-value           = token | quoted-string

// Directives is a parsed STS header field.
type Directives struct {
	MaxAge            int
	IncludeSubDomains bool
	Preload           bool
}

// Normalize returns the canonical form of a Strict-Transport-Security value.
// The directives are lower-cased, trimmed and sorted.
//
// §  8.1.  Strict-Transport-Security Response Header Field Processing
// §
// §     If a UA receives more than one STS header field in an HTTP response
// §     message over secure transport, then the UA MUST process only the
// §     first such header field.
func Normalize(value string) string {
	value = strings.SplitN(strings.ToLower(value), ",", 2)[0]
	toks := strings.Split(value, ";")
	for i, tok := range toks {
		toks[i] = strings.TrimSpace(tok)
	}
	sort.Strings(toks)
	return strings.Join(toks, ";")
}

// Parse parses an STS header field value.
// It returns false if the value carries no usable max-age, in which case
// the header provides no protection at all.
func Parse(value string) (Directives, bool) {
	var d Directives
	hasMaxAge := false
	for _, tok := range strings.Split(Normalize(value), ";") {
		switch {
		// §  6.1.2.  The includeSubDomains Directive
		// §
		// §     The OPTIONAL "includeSubDomains" directive is a valueless directive
		// §     which, if present (i.e., it is "asserted"), signals the UA that the
		// §     HSTS Policy applies to this HSTS Host as well as any subdomains of
		// §     the host's domain name.
		case tok == "includesubdomains":
			d.IncludeSubDomains = true
		case tok == "preload":
			d.Preload = true
		// §  6.1.1.  The max-age Directive
		// §
		// §     The REQUIRED "max-age" directive specifies the number of seconds,
		// §     after the reception of the STS header field, during which the UA
		// §     regards the host (from whom the message was received) as a Known
		// §     HSTS Host.
		case strings.HasPrefix(tok, "max-age="):
			maxAge, err := maxAgeValue(tok)
			if err != nil {
				// e.g. "max-age=1234 includesubdomains" (missing semicolon)
				return Directives{}, false
			}
			d.MaxAge = maxAge
			hasMaxAge = true
		}
	}
	if !hasMaxAge {
		return Directives{}, false
	}
	return d, true
}

// §     delta-seconds = 1*DIGIT
// §
// §     If a cache receives a delta-seconds value greater than the greatest
// §     integer it can represent, or if any of its subsequent calculations
// §     overflows, the cache MUST consider the value to be 2147483648
// §     (2^31) or the greatest positive integer it can conveniently
// §     represent.
//
// The same applies here: an out of range value saturates instead of
// invalidating the header.
func maxAgeValue(tok string) (int, error) {
	arg := strings.TrimSpace(strings.SplitN(strings.TrimPrefix(tok, "max-age="), "=", 2)[0])
	maxAge, err := strconv.Atoi(arg)
	// Atoi reports overflow before looking at the remaining characters
	if errors.Is(err, strconv.ErrRange) && isInteger(arg) {
		if strings.HasPrefix(arg, "-") {
			return math.MinInt, nil
		}
		return math.MaxInt, nil
	}
	return maxAge, err
}

func isInteger(s string) bool {
	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 || digits == "" {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
