package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/ericselin/header-lottery/headers"
)

func TestDiffHeaders(t *testing.T) {
	earlier := headers.Set{
		"strict-transport-security":  "max-age=31536000; includeSubDomains",
		"x-frame-options":            "SAMEORIGIN",
		"cross-origin-opener-policy": "same-origin",
		"content-security-policy":    "default-src 'self'",
	}
	later := headers.Set{
		"strict-transport-security": "max-age=63072000",
		"x-frame-options":           "DENY",
	}
	r := DiffHeaders(earlier, later)
	if r.Verdict != Regressed {
		t.Fatalf("Verdict is %s", r.Verdict)
	}
	changes := make(map[string]Change)
	for _, c := range r.Comparisons {
		changes[c.Header] = c.Change
	}
	want := map[string]Change{
		"strict-transport-security":  Regressed,
		"x-frame-options":            Improved,
		"cross-origin-opener-policy": Regressed,
	}
	if len(changes) != len(want) {
		t.Fatalf("Changes are %v", changes)
	}
	for h, c := range want {
		if changes[h] != c {
			t.Fatalf("%s: %s, expected %s", h, changes[h], c)
		}
	}
}

func TestDiffImproved(t *testing.T) {
	r := DiffHeaders(headers.Set{}, headers.Set{"referrer-policy": "no-referrer"})
	if r.Verdict != Improved || len(r.Comparisons) != 1 || r.Comparisons[0].EarlierPresent {
		t.Fatalf("Report is %+v", r)
	}
}

func TestDiffUnchanged(t *testing.T) {
	h := headers.Set{"strict-transport-security": "max-age=100"}
	r := DiffHeaders(h, headers.Set{"strict-transport-security": "MAX-AGE=200"})
	if r.Verdict != Unchanged {
		t.Fatalf("Verdict is %s", r.Verdict)
	}
}

func TestReportJSON(t *testing.T) {
	r := DiffHeaders(headers.Set{"x-frame-options": "deny"}, headers.Set{})
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Report
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Verdict != Regressed || decoded.Comparisons[0].Later != "" {
		t.Fatalf("Decoded %+v from %s", decoded, b)
	}
}
