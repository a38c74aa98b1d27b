package product

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/timing"
)

// expiredGrace keeps an EXP record in the headlines shortly after its end.
const expiredGrace = 30 * time.Minute

var actionOrder = map[domain.Action]int{
	domain.ActionNew: 0, domain.ActionExb: 1, domain.ActionExa: 2, domain.ActionExt: 3,
	domain.ActionRou: 4, domain.ActionCon: 5, domain.ActionCan: 6, domain.ActionExp: 7,
	domain.ActionUpg: 8,
}

var sigOrder = map[string]int{"W": 0, "Y": 1, "A": 2}

func rank(m map[string]int, k string) int {
	if v, ok := m[k]; ok {
		return v
	}
	return len(m)
}

// OrderRecords filters and sorts a segment's records into headline order:
// active actions before terminal ones, then by start time, action code,
// significance (W, Y, A) and phenomenon. Records that ended before issue are
// dropped except EXP records within 30 minutes of their end.
func OrderRecords(recs []domain.VTECRecord, issue time.Time) []domain.VTECRecord {
	out := make([]domain.VTECRecord, 0, len(recs))
	for _, r := range recs {
		if includeInHeadlines(r, issue) {
			out = append(out, r)
		}
	}
	sortRecords(out)
	return out
}

func sortRecords(recs []domain.VTECRecord) {
	slices.SortStableFunc(recs, func(a, b domain.VTECRecord) int {
		if at, bt := a.Action.Terminal(), b.Action.Terminal(); at != bt {
			if at {
				return 1
			}
			return -1
		}
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		if c := cmp.Compare(actionRank(a.Action), actionRank(b.Action)); c != 0 {
			return c
		}
		if c := cmp.Compare(rank(sigOrder, a.Sig), rank(sigOrder, b.Sig)); c != 0 {
			return c
		}
		return strings.Compare(a.Phen, b.Phen)
	})
}

func actionRank(a domain.Action) int {
	if v, ok := actionOrder[a]; ok {
		return v
	}
	return len(actionOrder)
}

func includeInHeadlines(r domain.VTECRecord, issue time.Time) bool {
	if r.EndTime.IsZero() || r.UFN() {
		return true
	}
	if r.Action == domain.ActionExp {
		return issue.Sub(r.EndTime) <= expiredGrace
	}
	return r.EndTime.After(issue)
}

// Headline renders one summary headline for rec without the framing dots.
func Headline(rec domain.VTECRecord, phrase string, issue time.Time) string {
	name := rec.Headline
	if name == "" {
		name = domain.HazardHeadline(rec.Key)
	}
	with := func(s string) string {
		if phrase == "" {
			return s
		}
		return s + " " + phrase
	}
	switch rec.Action {
	case domain.ActionCon:
		return with(name + " remains in effect")
	case domain.ActionExt:
		return with(name + " now in effect")
	case domain.ActionCan:
		return name + " is cancelled"
	case domain.ActionUpg:
		return name + " is no longer in effect"
	case domain.ActionExp:
		if !issue.Before(rec.EndTime) {
			return name + " has expired"
		}
		return with(name + " will expire")
	default:
		return with(name + " in effect")
	}
}

// SummaryHeadlines renders "...Flood Watch in effect until 1015 PM MDT this evening..."
// lines for ordered records, one per line.
func SummaryHeadlines(recs []domain.VTECRecord, phraser *timing.Phraser, zones []*time.Location, issue time.Time) (string, []string) {
	lines := make([]string, 0, len(recs))
	for _, r := range recs {
		h := Headline(r, phraser.Phrase(r, zones, issue), issue)
		if !slices.Contains(lines, h) {
			lines = append(lines, h)
		}
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString("..." + l + "...\n")
	}
	return b.String(), lines
}
