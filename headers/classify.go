package headers

import (
	"github.com/ericselin/header-lottery/csp3"
	"github.com/ericselin/header-lottery/rfc6797"
)

// XFOLevel ranks X-Frame-Options values, higher is more protective.
type XFOLevel int

const (
	XFONone XFOLevel = iota
	XFOSameOrigin
	XFODeny
)

// Result holds the classification of every recognized header of a response.
// A nil field means the header was not present.
type Result struct {
	CSP               *csp3.Classes  `json:"content-security-policy,omitempty"`
	XFO               *XFOLevel      `json:"x-frame-options,omitempty"`
	HSTS              *rfc6797.Level `json:"strict-transport-security,omitempty"`
	ReferrerPolicy    *bool          `json:"referrer-policy,omitempty"`
	PermissionsPolicy *string        `json:"permissions-policy,omitempty"`
	COOP              *bool          `json:"cross-origin-opener-policy,omitempty"`
	CORP              *bool          `json:"cross-origin-resource-policy,omitempty"`
	COEP              *bool          `json:"cross-origin-embedder-policy,omitempty"`
}

// weakValues are the values of the boolean headers that offer no protection.
var weakValues = map[Kind][]string{
	ReferrerPolicy: {"no-referrer-when-downgrade", "unsafe-url"},
	COOP:           {"unsafe-none", ""},
	CORP:           {"cross-origin", ""},
	COEP:           {"unsafe-none", ""},
}

// Classify classifies every recognized header in h. Unrecognized headers are
// ignored. origin is the `scheme://host` of the response, only used for the
// frame-ancestors directive of a CSP.
func Classify(h Set, origin string) Result {
	var r Result
	for _, kind := range Kinds {
		if value, ok := h[kind.Name()]; ok {
			r.set(kind, value, origin)
		}
	}
	return r
}

func (r *Result) set(kind Kind, value, origin string) {
	switch kind {
	case CSP:
		c := csp3.Classify(origin, value)
		r.CSP = &c
	case XFO:
		l := ClassifyXFO(value)
		r.XFO = &l
	case HSTS:
		l := rfc6797.Classify(value)
		r.HSTS = &l
	case ReferrerPolicy:
		b := IsProtective(kind, value)
		r.ReferrerPolicy = &b
	case PermissionsPolicy:
		s := Normalize(kind, value)
		r.PermissionsPolicy = &s
	case COOP:
		b := IsProtective(kind, value)
		r.COOP = &b
	case CORP:
		b := IsProtective(kind, value)
		r.CORP = &b
	case COEP:
		b := IsProtective(kind, value)
		r.COEP = &b
	}
}

// Len returns the number of classified headers.
func (r Result) Len() int {
	n := 0
	for _, present := range []bool{
		r.CSP != nil, r.XFO != nil, r.HSTS != nil, r.ReferrerPolicy != nil,
		r.PermissionsPolicy != nil, r.COOP != nil, r.CORP != nil, r.COEP != nil,
	} {
		if present {
			n++
		}
	}
	return n
}

// ClassifyXFO classifies an X-Frame-Options value. ALLOW-FROM is not
// supported by modern browsers and ranks with a missing header.
func ClassifyXFO(value string) XFOLevel {
	switch Normalize(XFO, value) {
	case "sameorigin":
		return XFOSameOrigin
	case "deny":
		return XFODeny
	}
	return XFONone
}

// IsProtective reports whether the value of a Referrer-Policy, COOP, CORP or
// COEP header offers protection. It is false for every other kind.
func IsProtective(kind Kind, value string) bool {
	weak, ok := weakValues[kind]
	if !ok {
		return false
	}
	value = Normalize(kind, value)
	for _, w := range weak {
		if value == w {
			return false
		}
	}
	return true
}

// Insecure returns the classification of a response lacking every header.
func Insecure() Result {
	csp := csp3.Insecure
	xfo := XFONone
	hsts := rfc6797.Insecure
	pp := ""
	f1, f2, f3, f4 := false, false, false, false
	return Result{
		CSP:               &csp,
		XFO:               &xfo,
		HSTS:              &hsts,
		ReferrerPolicy:    &f1,
		PermissionsPolicy: &pp,
		COOP:              &f2,
		CORP:              &f3,
		COEP:              &f4,
	}
}
