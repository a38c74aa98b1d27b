package product

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// AttributionInput is what the attribution matrix is keyed on.
type AttributionInput struct {
	Action     domain.Action
	HazardName string
	AreaPhrase string
	WFOCity    string
	// Timing is the record's timing phrase, used by EXP before the end.
	Timing  string
	GeoType domain.GeoType
	Issue   time.Time
	End     time.Time
}

// Attribution returns the attribution sentence opening and the first bullet
// for a section.
func Attribution(in AttributionInput) (string, string) {
	nws := "The National Weather Service in " + in.WFOCity

	switch in.Action {
	case domain.ActionNew, domain.ActionRou:
		return nws + " has issued a", join(in.HazardName+" for", sentence(in.AreaPhrase))
	case domain.ActionCon:
		return "The " + in.HazardName + " remains in effect for", sentence(in.AreaPhrase)
	case domain.ActionExa, domain.ActionExb:
		return nws + " has expanded the", join(in.HazardName+" to include", sentence(in.AreaPhrase))
	case domain.ActionExt:
		if in.GeoType == domain.GeoPoint {
			return nws + " has extended the", join(in.HazardName+" for", sentence(in.AreaPhrase))
		}
		return "The " + in.HazardName + " is now in effect for", sentence(in.AreaPhrase)
	case domain.ActionCan:
		return "The " + in.HazardName + " for " + in.AreaPhrase + " has been cancelled.", ""
	case domain.ActionUpg:
		return "The " + in.HazardName + " for " + in.AreaPhrase + " is no longer in effect.", ""
	case domain.ActionExp:
		if !in.Issue.Before(in.End) {
			return "The " + in.HazardName + " for " + in.AreaPhrase + " has expired.", ""
		}
		return "The " + in.HazardName + " for " + in.AreaPhrase + " will expire " + in.Timing + ".", ""
	default:
		return nws + " has issued a", join(in.HazardName+" for", sentence(in.AreaPhrase))
	}
}

// join separates a and b by a space unless b starts on its own line.
func join(a, b string) string {
	if strings.HasPrefix(b, "\n") {
		return a + b
	}
	return a + " " + b
}

// sentence terminates s with a period unless it already ends a sentence.
func sentence(s string) string {
	s = strings.TrimRight(s, " ")
	if s == "" || strings.HasSuffix(s, ".") || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "."
}

// capitalize upper-cases the first rune of s.
func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
