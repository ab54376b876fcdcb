package csp3

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ClassesVersion identifies the ordinals below.
// Changing any of them invalidates stored classifications.
const ClassesVersion = 1

// FA is the framing protection class, derived from frame-ancestors.
type FA int

const (
	FAMissing FA = iota
	FANone
	FASelf
	FAConstrained
	FAUnsafe
)

func (c FA) String() string {
	switch c {
	case FAMissing:
		return "MISSING"
	case FANone:
		return "NONE"
	case FASelf:
		return "SELF"
	case FAConstrained:
		return "CONSTRAINED"
	case FAUnsafe:
		return "UNSAFE"
	}
	return fmt.Sprintf("FA(%d)", int(c))
}

// XSS is the script-injection mitigation class.
type XSS int

const (
	XSSMissing XSS = iota
	XSSUnsafe
	XSSSafe
)

func (c XSS) String() string {
	switch c {
	case XSSMissing:
		return "MISSING"
	case XSSUnsafe:
		return "UNSAFE"
	case XSSSafe:
		return "SAFE"
	}
	return fmt.Sprintf("XSS(%d)", int(c))
}

// TLS is the transport enforcement class.
type TLS int

const (
	TLSMissing TLS = iota
	TLSUnsafe
	TLSEnabled
)

func (c TLS) String() string {
	switch c {
	case TLSMissing:
		return "MISSING"
	case TLSUnsafe:
		return "UNSAFE"
	case TLSEnabled:
		return "ENABLED"
	}
	return fmt.Sprintf("TLS(%d)", int(c))
}

// Classes is the classification of a CSP along its three dimensions.
type Classes struct {
	FA  FA  `json:"FA"`
	XSS XSS `json:"XSS"`
	TLS TLS `json:"TLS"`
}

// Insecure is the classification used when no CSP value is available at all.
var Insecure = Classes{FA: FAUnsafe, XSS: XSSUnsafe, TLS: TLSUnsafe}

func (c Classes) String() string {
	return fmt.Sprintf("FA=%s XSS=%s TLS=%s", c.FA, c.XSS, c.TLS)
}

// MarshalJSON writes the dimensions in a stable order.
func (c Classes) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int{
		"FA":  int(c.FA),
		"XSS": int(c.XSS),
		"TLS": int(c.TLS),
	})
}

// unsafeSources allow scripts or framing from essentially anywhere.
var unsafeSources = map[string]struct{}{
	"*":         {},
	"http:":     {},
	"http://":   {},
	"http://*":  {},
	"https:":    {},
	"https://":  {},
	"https://*": {},
	"data:":     {},
}

var inlineNeutralizer = regexp.MustCompile(
	`(?i)^('nonce'|'nonce-[a-z0-9+/\-_]+={0,2}'|'sha(256|384|512)-[a-z0-9+/\-_]+={0,2}'|'strict-dynamic')$`)

// Classify parses a raw Content-Security-Policy value and classifies it.
// origin is the `scheme://host` of the response, used for frame-ancestors.
func Classify(origin, raw string) Classes {
	return Parse(raw).Classify(origin)
}

// Classify combines the classes of every policy in the list by taking,
// per dimension, the maximum.
func (l PolicyList) Classify(origin string) Classes {
	var combined Classes
	for _, p := range l {
		c := p.Classify(origin)
		if c.FA > combined.FA {
			combined.FA = c.FA
		}
		if c.XSS > combined.XSS {
			combined.XSS = c.XSS
		}
		if c.TLS > combined.TLS {
			combined.TLS = c.TLS
		}
	}
	return combined
}

// Classify returns the classes of a single policy.
func (p Policy) Classify(origin string) Classes {
	classes := Classes{FA: FAMissing, XSS: XSSMissing, TLS: TLSMissing}
	if p.Has("script-src") || p.Has("default-src") {
		classes.XSS = XSSUnsafe
	}
	if p.IsXSSSafe() {
		classes.XSS = XSSSafe
	}
	if p.Has("upgrade-insecure-requests") || p.Has("block-all-mixed-content") {
		classes.TLS = TLSEnabled
	}
	if fa, ok := p.Get("frame-ancestors"); ok {
		classes.FA = classifyFraming(origin, fa)
	}
	return classes
}

// EffectiveScriptSources returns script-src, falling back to default-src.
func (p Policy) EffectiveScriptSources() (Directive, bool) {
	if d, ok := p.Get("script-src"); ok {
		return d, true
	}
	return p.Get("default-src")
}

// IsXSSSafe reports whether the effective script sources neither allow
// arbitrary inline scripts nor scripts from arbitrary hosts.
func (p Policy) IsXSSSafe() bool {
	sources, ok := p.EffectiveScriptSources()
	if !ok || isUnsafeInlineActive(sources) {
		return false
	}
	if !sources.Has("'strict-dynamic'") && sources.HasAny(unsafeSources) {
		return false
	}
	return true
}

// isUnsafeInlineActive reports whether 'unsafe-inline' is present and not
// neutralized by a nonce, hash or 'strict-dynamic'.
func isUnsafeInlineActive(d Directive) bool {
	allowAllInline := false
	for src := range d.sources {
		if inlineNeutralizer.MatchString(src) {
			return false
		}
		if strings.EqualFold(src, "'unsafe-inline'") {
			allowAllInline = true
		}
	}
	return allowAllInline
}

func classifyFraming(origin string, d Directive) FA {
	if d.Len() == 0 || (d.Len() == 1 && d.Has("'none'")) {
		return FANone
	}
	origin = strings.ToLower(origin)
	httpsOrigin := strings.Replace(origin, "http://", "https://", 1)
	host := strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://")
	sameOrigin := true
	for src := range d.sources {
		if src != "'self'" && src != origin && src != httpsOrigin && src != host {
			sameOrigin = false
			break
		}
	}
	if sameOrigin {
		return FASelf
	}
	if d.HasAny(unsafeSources) {
		return FAUnsafe
	}
	return FAConstrained
}
