package csp3

import (
	"regexp"
	"sort"
	"strings"
)

// §  2.2. Policies
// §
// §  A policy defines allowed and restricted behaviors, and may be applied to a
// §  Document, WorkerGlobalScope, or WorkletGlobalScope.
// §
// §  Each policy has an associated directive set, which is an ordered set of
// §  directives that define the policy's implications when applied.

// Placeholders substituted for per-response random values before parsing,
// so that two responses differing only in nonce or reporting endpoint
// yield the same directive table.
const (
	NoncePlaceholder  = "'NONCE'"
	ReportPlaceholder = "REPORT_URI"
)

var nonceRegex = regexp.MustCompile(`'nonce-[^']*'`)

// Directive is a named rule of a policy together with its set of source expressions.
type Directive struct {
	name    string
	sources map[string]struct{}
}

// NewDirective creates a directive. The name is lower-cased, duplicate
// and empty source expressions are dropped.
func NewDirective(name string, sources ...string) Directive {
	d := Directive{
		name:    strings.ToLower(name),
		sources: make(map[string]struct{}, len(sources)),
	}
	for _, s := range sources {
		if s = strings.TrimSpace(s); s != "" {
			d.sources[s] = struct{}{}
		}
	}
	return d
}

func (d Directive) Name() string {
	return d.name
}

// Has reports whether the directive value contains the source expression.
func (d Directive) Has(source string) bool {
	_, ok := d.sources[source]
	return ok
}

func (d Directive) Len() int {
	return len(d.sources)
}

// Sources returns the source expressions, sorted.
func (d Directive) Sources() []string {
	s := make([]string, 0, len(d.sources))
	for src := range d.sources {
		s = append(s, src)
	}
	sort.Strings(s)
	return s
}

// HasAny reports whether at least one of the given sources is in the directive.
func (d Directive) HasAny(sources map[string]struct{}) bool {
	for src := range sources {
		if d.Has(src) {
			return true
		}
	}
	return false
}

// Policy is an immutable directive set.
type Policy struct {
	directives map[string]Directive
	order      []string
}

// NewPolicy creates a policy from the given directives.
// If a directive name repeats, the first occurrence wins.
func NewPolicy(directives ...Directive) Policy {
	p := Policy{directives: make(map[string]Directive, len(directives))}
	for _, d := range directives {
		if d.name == "" {
			continue
		}
		if _, ok := p.directives[d.name]; ok {
			continue
		}
		p.directives[d.name] = d
		p.order = append(p.order, d.name)
	}
	return p
}

// Get returns the directive with the given (lower-case) name.
func (p Policy) Get(name string) (Directive, bool) {
	d, ok := p.directives[name]
	return d, ok
}

func (p Policy) Has(name string) bool {
	_, ok := p.directives[name]
	return ok
}

// Names returns the directive names in the order they were declared.
func (p Policy) Names() []string {
	return append([]string(nil), p.order...)
}

func (p Policy) Len() int {
	return len(p.order)
}

// PolicyList holds one policy per comma-separated header instance.
type PolicyList []Policy

// §  2.2.1. Parse a serialized CSP
// §
// §  To parse a serialized CSP, given a byte sequence or string serialized, a
// §  source source, and a disposition disposition, execute the following steps.
// §
// §  This algorithm returns a Content Security Policy object. If serialized could
// §  not be parsed, the object's directive set will be empty.
func ParsePolicy(serialized string) Policy {
	// §  2. Let policy be a new policy with an empty directive set [...]
	directives := make([]Directive, 0)
	// §  3. For each token returned by strictly splitting serialized on the
	// §     U+003B SEMICOLON character (;):
	for _, token := range strings.Split(serialized, ";") {
		// §  1. Strip leading and trailing ASCII whitespace from token.
		// §  2. If token is an empty string [...], continue.
		fields := strings.Fields(token)
		if len(fields) == 0 {
			continue
		}
		// §  3. Let directive name be the result of collecting a sequence of
		// §     code points from token which are not ASCII whitespace.
		// §  4. Set directive name to be the result of running ASCII lowercase
		// §     on directive name.
		name := strings.ToLower(fields[0])
		// §  6. Let directive value be the result of splitting a string on ASCII
		// §     whitespace with the remaining portion of token.
		value := fields[1:]
		if isReportingDirective(name) && len(value) > 0 {
			value = []string{ReportPlaceholder}
		}
		// §  5. If policy's directive set contains a directive whose name is
		// §     directive name, continue.
		// (handled by NewPolicy, first occurrence wins)
		directives = append(directives, NewDirective(name, value...))
	}
	// §  4. Return policy.
	return NewPolicy(directives...)
}

// §  2.2.2. Parse response's Content Security Policies
// §
// §  1. Let policies be an empty list.
// §  2. For each token returned by extracting header list values given
// §     Content-Security-Policy and response's header list:
// §     1. Let policy be the result of parsing token, with a source of
// §        "header", and a disposition of "enforce".
// §     2. If policy's directive set is not empty, append policy to policies.
//
// Unlike the browser algorithm, empty policies are kept, so that the list
// has exactly one entry per comma-separated header instance.
func Parse(raw string) PolicyList {
	value := substituteRandomValues(strings.ToLower(raw))
	instances := strings.Split(value, ",")
	policies := make(PolicyList, 0, len(instances))
	for _, instance := range instances {
		policies = append(policies, ParsePolicy(instance))
	}
	return policies
}

// substituteRandomValues replaces nonces with a fixed placeholder.
// Reporting endpoints are replaced while parsing the directive.
func substituteRandomValues(value string) string {
	return nonceRegex.ReplaceAllString(value, NoncePlaceholder)
}

func isReportingDirective(name string) bool {
	return name == "report-uri" || name == "report-to"
}
