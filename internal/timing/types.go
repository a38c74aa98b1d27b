// Package timing builds headline and bullet timing phrases ("until 1015 PM MDT
// this evening", "from late tonight through Tuesday afternoon") for VTEC records.
//
// Every routine takes an explicit *time.Location; nothing reads or mutates the
// process TZ environment.
package timing

import (
	"fmt"
	"strings"
	"time"

	_ "time/tzdata" // zone database for hosts without /usr/share/zoneinfo
)

// Type selects how precisely a time is phrased.
type Type int

const (
	None Type = iota
	Explicit
	Fuzzy4
	Fuzzy8
	DayNightOnly
)

var typeNames = map[Type]string{
	None:         "NONE",
	Explicit:     "EXPLICIT",
	Fuzzy4:       "FUZZY4",
	Fuzzy8:       "FUZZY8",
	DayNightOnly: "DAY_NIGHT_ONLY",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType converts a configuration name to a Type. "FUZZY" is accepted as FUZZY4.
func ParseType(s string) (Type, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "FUZZY" {
		return Fuzzy4, nil
	}
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return None, fmt.Errorf("unknown timing type %q", s)
}

// Pair is the (start, end) timing type of a record.
type Pair struct {
	Start Type
	End   Type
}

// ParsePair parses a (start, end) pair of configuration names.
func ParsePair(start, end string) (Pair, error) {
	s, err := ParseType(start)
	if err != nil {
		return Pair{}, err
	}
	e, err := ParseType(end)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Start: s, End: e}, nil
}

// LoadZones resolves IANA zone names, dropping duplicates and keeping order.
func LoadZones(names []string) ([]*time.Location, error) {
	seen := make(map[string]bool, len(names))
	out := make([]*time.Location, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		loc, err := time.LoadLocation(n)
		if err != nil {
			return nil, fmt.Errorf("load time zone %q: %w", n, err)
		}
		seen[n] = true
		out = append(out, loc)
	}
	return out, nil
}
