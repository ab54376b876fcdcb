package rfc6797

import (
	"encoding/json"
	"fmt"
)

// OneYear is the max-age (in seconds) from which a policy gets the highest age class.
const OneYear = 31536000

// AgeClass ranks the max-age of a policy.
//
// An absent or malformed header ranks above an explicit max-age=0: the latter
// is a deliberate instruction to forget the host.
type AgeClass int

const (
	AgeDisabled AgeClass = iota
	AgeAbsent
	AgeShort
	AgeLong
)

// Level is the classification of an STS header field.
type Level struct {
	Age               AgeClass
	IncludeSubDomains bool
	// Preload is only set when the policy is eligible for preloading:
	// preload and includeSubDomains with at least a year of max-age.
	Preload bool
}

// Insecure is the level used when no value is available at all.
var Insecure = Level{Age: AgeDisabled}

func (l Level) String() string {
	return fmt.Sprintf("(%d, %d, %d)", l.Age, btoi(l.IncludeSubDomains), btoi(l.Preload))
}

// Less orders levels lexicographically.
func (l Level) Less(o Level) bool {
	if l.Age != o.Age {
		return l.Age < o.Age
	}
	if l.IncludeSubDomains != o.IncludeSubDomains {
		return !l.IncludeSubDomains
	}
	return !l.Preload && o.Preload
}

// MarshalJSON writes the level as a three-element array.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{int(l.Age), btoi(l.IncludeSubDomains), btoi(l.Preload)})
}

func (l *Level) UnmarshalJSON(b []byte) error {
	var t [3]int
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	*l = Level{Age: AgeClass(t[0]), IncludeSubDomains: t[1] != 0, Preload: t[2] != 0}
	return nil
}

// Classify returns the level of a raw STS header field value.
func Classify(value string) Level {
	d, ok := Parse(value)
	if !ok {
		return Level{Age: AgeAbsent}
	}
	age := ageClass(d, ok)
	return Level{
		Age:               age,
		IncludeSubDomains: d.IncludeSubDomains,
		Preload:           d.Preload && d.IncludeSubDomains && age == AgeLong,
	}
}

func ageClass(d Directives, ok bool) AgeClass {
	switch {
	case !ok:
		return AgeAbsent
	case d.MaxAge <= 0:
		return AgeDisabled
	case d.MaxAge < OneYear:
		return AgeShort
	default:
		return AgeLong
	}
}

// AtLeastAsProtective reports whether the later value protects at least as
// well as the earlier one.
func AtLeastAsProtective(earlier, later string) bool {
	e, eok := Parse(earlier)
	l, lok := Parse(later)
	if !eok {
		return true
	}
	if !lok {
		return ageClass(e, eok) == AgeDisabled
	}
	if e.IncludeSubDomains && !l.IncludeSubDomains {
		return false
	}
	if e.Preload && !l.Preload {
		return false
	}
	return ageClass(e, eok) <= ageClass(l, lok)
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
