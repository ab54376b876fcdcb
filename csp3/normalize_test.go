package csp3

import "testing"

func TestNormalize(t *testing.T) {
	got := Normalize("Default-Src 'self';  SCRIPT-SRC https://b.com 'self' 'nonce-xyz'; report-uri /r1 /r2")
	want := "script-src 'nonce-' 'self' https://b.com;report-uri uri;default-src 'self'"
	if got != want {
		t.Fatalf("Normalized to %q", got)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, v := range []string{
		"default-src 'self' , script-src * 'nonce-1'; upgrade-insecure-requests",
		"frame-ancestors 'none';;",
		"",
		" , ",
		"report-to a b c; REPORT-URI x",
	} {
		once := Normalize(v)
		if twice := Normalize(once); once != twice {
			t.Fatalf("%q: %q != %q", v, once, twice)
		}
	}
}

func TestNormalizeIsOrderInsensitive(t *testing.T) {
	a := Normalize("script-src b a; object-src 'none', frame-ancestors 'self'")
	b := Normalize("frame-ancestors 'self', object-src 'none';script-src a b")
	if a != b {
		t.Fatalf("%q != %q", a, b)
	}
}

func TestNormalizedValueClassifiesLikeRaw(t *testing.T) {
	raw := "script-src 'self' 'unsafe-inline' 'nonce-abc'; frame-ancestors https://a.com; upgrade-insecure-requests"
	if a, b := Classify("https://a.com", raw), Classify("https://a.com", Normalize(raw)); a != b {
		t.Fatalf("Classes differ: %s vs %s", a, b)
	}
}
