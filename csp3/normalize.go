package csp3

import (
	"sort"
	"strings"
)

// Placeholders used in the canonical form. They are lower case so that
// normalizing a canonical value again does not change it.
const (
	canonicalNonce  = "'nonce-'"
	canonicalReport = "uri"
)

// Normalize returns the canonical form of a Content-Security-Policy value.
// The value is lower-cased and split into policies (comma), directives
// (semicolon) and source expressions (whitespace). Nonces and reporting
// endpoints are replaced by placeholders, duplicates are dropped and
// everything is sorted. Directives are sorted in reverse, so script-src
// precedes default-src.
func Normalize(value string) string {
	policies := make([]string, 0)
	for _, policy := range strings.Split(strings.ToLower(value), ",") {
		if p := normalizePolicy(policy); p != "" {
			policies = append(policies, p)
		}
	}
	sort.Strings(policies)
	return strings.Join(policies, ",")
}

func normalizePolicy(policy string) string {
	seen := make(map[string]bool)
	directives := make([]string, 0)
	for _, directive := range strings.Split(policy, ";") {
		toks := strings.Fields(directive)
		if len(toks) == 0 || seen[toks[0]] {
			continue
		}
		seen[toks[0]] = true
		directives = append(directives, normalizeDirective(toks[0], toks[1:]))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(directives)))
	return strings.Join(directives, ";")
}

func normalizeDirective(name string, value []string) string {
	sources := make(map[string]struct{}, len(value))
	for _, tok := range value {
		switch {
		case isReportingDirective(name):
			tok = canonicalReport
		case strings.HasPrefix(tok, "'nonce-"):
			tok = canonicalNonce
		}
		sources[tok] = struct{}{}
	}
	toks := make([]string, 0, len(sources))
	for tok := range sources {
		toks = append(toks, tok)
	}
	sort.Strings(toks)
	return strings.Join(append([]string{name}, toks...), " ")
}
