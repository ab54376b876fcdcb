package headers

import (
	"errors"
	"fmt"

	"github.com/ericselin/header-lottery/rfc6797"
)

var ErrNotComparable = errors.New("header kind has no protection order")

// Comparable reports whether AtLeastAsProtective supports the kind.
func (k Kind) Comparable() bool {
	switch k {
	case XFO, HSTS, ReferrerPolicy, COOP, CORP, COEP:
		return true
	}
	return false
}

// AtLeastAsProtective reports whether the later value of a header protects
// at least as well as the earlier one. A false result for two snapshots of
// the same site means the protection regressed.
func AtLeastAsProtective(kind Kind, earlier, later string) (bool, error) {
	switch kind {
	case XFO:
		return ClassifyXFO(earlier) <= ClassifyXFO(later), nil
	case HSTS:
		return rfc6797.AtLeastAsProtective(earlier, later), nil
	case ReferrerPolicy, COOP, CORP, COEP:
		return !IsProtective(kind, earlier) || IsProtective(kind, later), nil
	}
	return false, fmt.Errorf("%s: %w", kind, ErrNotComparable)
}

// AbsentValue is the raw value assumed for a header missing from one of two
// compared responses.
func AbsentValue(kind Kind) string {
	switch kind {
	case ReferrerPolicy:
		return "unsafe-url"
	case COOP, COEP:
		return "unsafe-none"
	case CORP:
		return "cross-origin"
	}
	return ""
}
