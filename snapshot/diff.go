package snapshot

import (
	"fmt"

	"github.com/ericselin/header-lottery/headers"
)

// Change describes how the protection of a header evolved.
type Change int

const (
	Unchanged Change = iota
	Improved
	Regressed
)

func (c Change) String() string {
	switch c {
	case Unchanged:
		return "unchanged"
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	}
	return fmt.Sprintf("Change(%d)", int(c))
}

func (c Change) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Change) UnmarshalText(b []byte) error {
	switch string(b) {
	case "unchanged":
		*c = Unchanged
	case "improved":
		*c = Improved
	case "regressed":
		*c = Regressed
	default:
		return fmt.Errorf("unknown change %q", b)
	}
	return nil
}

// Comparison is the evolution of a single header.
type Comparison struct {
	Header  string `json:"header"`
	Earlier string `json:"earlier"`
	Later   string `json:"later"`
	// Absent values are replaced by headers.AbsentValue before comparing.
	EarlierPresent bool   `json:"earlierPresent"`
	LaterPresent   bool   `json:"laterPresent"`
	Change         Change `json:"change"`
}

// Report is the evolution of all comparable headers of a site.
type Report struct {
	Verdict     Change       `json:"verdict"`
	Comparisons []Comparison `json:"comparisons"`
}

// Diff compares the served headers of two snapshots of the same site.
func Diff(earlier, later Snapshot) Report {
	return DiffHeaders(earlier.Served(), later.Served())
}

// DiffHeaders compares every comparable header present in either set.
// A header whose later value is not at least as protective as the earlier
// one (including values that are not ordered at all) is a regression.
func DiffHeaders(earlier, later headers.Set) Report {
	report := Report{Verdict: Unchanged, Comparisons: make([]Comparison, 0)}
	for _, kind := range headers.Kinds {
		if !kind.Comparable() {
			continue
		}
		e, eok := earlier[kind.Name()]
		l, lok := later[kind.Name()]
		if !eok && !lok {
			continue
		}
		if !eok {
			e = headers.AbsentValue(kind)
		}
		if !lok {
			l = headers.AbsentValue(kind)
		}
		c := Comparison{
			Header:         kind.Name(),
			Earlier:        e,
			Later:          l,
			EarlierPresent: eok,
			LaterPresent:   lok,
			Change:         compare(kind, e, l),
		}
		report.Comparisons = append(report.Comparisons, c)
		if c.Change > report.Verdict {
			report.Verdict = c.Change
		}
	}
	return report
}

func compare(kind headers.Kind, earlier, later string) Change {
	// kinds are filtered by Comparable, errors cannot happen
	forward, _ := headers.AtLeastAsProtective(kind, earlier, later)
	backward, _ := headers.AtLeastAsProtective(kind, later, earlier)
	switch {
	case forward && backward:
		return Unchanged
	case forward:
		return Improved
	}
	return Regressed
}
