package headers

import (
	"errors"
	"testing"
)

func TestAtLeastAsProtective(t *testing.T) {
	cases := []struct {
		kind           Kind
		earlier, later string
		want           bool
	}{
		{XFO, "sameorigin", "deny", true},
		{XFO, "deny", "sameorigin", false},
		{XFO, "allow-from https://x", "", true},
		{HSTS, "max-age=100", "max-age=200", true},
		{HSTS, "max-age=100; includeSubDomains", "max-age=200", false},
		{ReferrerPolicy, "no-referrer", "unsafe-url", false},
		{ReferrerPolicy, "unsafe-url", "no-referrer", true},
		{COOP, "same-origin", "same-origin-allow-popups", true},
		{CORP, "same-origin", AbsentValue(CORP), false},
		{COEP, AbsentValue(COEP), AbsentValue(COEP), true},
	}
	for _, c := range cases {
		got, err := AtLeastAsProtective(c.kind, c.earlier, c.later)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Fatalf("%s %q -> %q: %v, expected %v", c.kind, c.earlier, c.later, got, c.want)
		}
	}
}

func TestNotComparable(t *testing.T) {
	for _, kind := range []Kind{CSP, PermissionsPolicy} {
		if kind.Comparable() {
			t.Fatalf("%s is comparable", kind)
		}
		if _, err := AtLeastAsProtective(kind, "", ""); !errors.Is(err, ErrNotComparable) {
			t.Fatalf("%s: error is %v", kind, err)
		}
	}
}

func TestAbsentValueIsInsecure(t *testing.T) {
	insecure := Insecure()
	for _, kind := range []Kind{ReferrerPolicy, COOP, CORP, COEP} {
		r := Classify(Set{kind.Name(): AbsentValue(kind)}, "")
		if r.Len() != 1 {
			t.Fatalf("%s not classified", kind)
		}
		if IsProtective(kind, AbsentValue(kind)) {
			t.Fatalf("%s absent value is protective", kind)
		}
	}
	if ClassifyXFO(AbsentValue(XFO)) != *insecure.XFO {
		t.Fatal("XFO absent value is not insecure")
	}
}
