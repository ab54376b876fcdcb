package headers

import "fmt"

// Kind is a security header recognized by the classifier.
type Kind int

const (
	CSP Kind = iota
	XFO
	HSTS
	ReferrerPolicy
	PermissionsPolicy
	COOP
	CORP
	COEP
)

// Kinds lists every recognized header kind.
var Kinds = []Kind{CSP, XFO, HSTS, ReferrerPolicy, PermissionsPolicy, COOP, CORP, COEP}

// Name returns the lower-cased header field name.
func (k Kind) Name() string {
	switch k {
	case CSP:
		return "content-security-policy"
	case XFO:
		return "x-frame-options"
	case HSTS:
		return "strict-transport-security"
	case ReferrerPolicy:
		return "referrer-policy"
	case PermissionsPolicy:
		return "permissions-policy"
	case COOP:
		return "cross-origin-opener-policy"
	case CORP:
		return "cross-origin-resource-policy"
	case COEP:
		return "cross-origin-embedder-policy"
	}
	return ""
}

// String returns the abbreviation of the header.
func (k Kind) String() string {
	switch k {
	case CSP:
		return "CSP"
	case XFO:
		return "XFO"
	case HSTS:
		return "HSTS"
	case ReferrerPolicy:
		return "RP"
	case PermissionsPolicy:
		return "PP"
	case COOP:
		return "COOP"
	case CORP:
		return "CORP"
	case COEP:
		return "COEP"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindOf returns the kind for a lower-cased header name.
func KindOf(name string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Name() == name {
			return k, true
		}
	}
	return 0, false
}
