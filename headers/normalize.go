package headers

import (
	"sort"
	"strings"

	"github.com/ericselin/header-lottery/csp3"
	"github.com/ericselin/header-lottery/rfc6797"
)

// Normalize returns the canonical form of a header value.
// Semantically identical values of the same kind normalize to the same string.
func Normalize(kind Kind, value string) string {
	switch kind {
	case CSP:
		return csp3.Normalize(value)
	case HSTS:
		return rfc6797.Normalize(value)
	case XFO, PermissionsPolicy:
		return normalizeList(value)
	case ReferrerPolicy, COOP, CORP, COEP:
		return normalizeToken(value)
	}
	return value
}

// NormalizeSet returns the canonical form of every recognized header.
// Unrecognized headers are dropped.
func NormalizeSet(h Set) Set {
	s := make(Set)
	for _, kind := range Kinds {
		if value, ok := h[kind.Name()]; ok {
			s[kind.Name()] = Normalize(kind, value)
		}
	}
	return s
}

// normalizeList lower-cases a comma-separated list, trims and sorts its elements.
func normalizeList(value string) string {
	toks := strings.Split(strings.ToLower(value), ",")
	for i, tok := range toks {
		toks[i] = strings.TrimSpace(tok)
	}
	sort.Strings(toks)
	return strings.Join(toks, ",")
}

func normalizeToken(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
