package timing

import (
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// UntilFurtherNotice ends the phrase of an open-ended record.
const UntilFurtherNotice = "until further notice"

// Phrase renders the headline timing phrase of rec issued at issue. zones are
// the segment's time zones, primary first.
func (p *Phraser) Phrase(rec domain.VTECRecord, zones []*time.Location, issue time.Time) string {
	types := p.ChooseTypes(rec, issue)
	conn, ok := ConnectorFor(types, rec.Action)
	if !ok {
		return Sentinel
	}
	if len(zones) == 0 {
		zones = []*time.Location{time.UTC}
	}

	var starts, ends []Description
	if conn.Start != "" && types.Start != None {
		starts = describeAll(issue, rec.StartTime, zones, types.Start)
	}
	endType := types.End
	if rec.Action == domain.ActionExp {
		endType = Explicit
	}
	if conn.End != "" && endType != None {
		ends = describeAll(issue, rec.EndTime, zones, endType)
	}

	var parts []string
	if len(starts) > 0 {
		parts = append(parts, conn.Start)
	}

	switch {
	case domain.IsUFN(rec.EndTime) && rec.Action != domain.ActionExp:
		if len(starts) > 0 {
			parts = append(parts, braid(starts))
		}
		parts = append(parts, UntilFurtherNotice)
	case len(starts) == 1 && len(ends) == 1:
		parts = append(parts, joinPair(starts[0], ends[0], strings.ToLower(conn.End))...)
	default:
		if len(starts) > 0 {
			parts = append(parts, braid(starts))
		}
		if len(ends) > 0 {
			parts = append(parts, strings.ToLower(conn.End), braid(ends))
		}
	}
	return strings.Join(parts, " ")
}

// joinPair renders a single-zone start and end, merging shared trailing text.
func joinPair(start, end Description, endWord string) []string {
	if start.Text == "early this morning" && end.Text == "this morning" {
		start.Text = end.Text
	}
	if start.Text != end.Text {
		return []string{start.String(), endWord, end.String()}
	}
	if start.Clock != "" && end.Clock != "" && start.Zone == end.Zone {
		return []string{start.Clock, endWord, end.String()}
	}
	if start.Clock == "" && end.Clock == "" {
		// Both fuzzy and identical: only the end is phrased.
		return []string{endWord, end.Text}
	}
	return []string{start.String(), endWord, end.String()}
}

func describeAll(issue, t time.Time, zones []*time.Location, typ Type) []Description {
	out := make([]Description, 0, len(zones))
	for _, z := range zones {
		d := Describe(issue, t, z, typ)
		if d == (Description{}) || slices.Contains(out, d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// braid merges one time across several zones: "1015 PM MDT /915 PM PDT/ this evening".
func braid(ds []Description) string {
	if len(ds) == 1 {
		return ds[0].String()
	}
	sameText := true
	for _, d := range ds[1:] {
		if d.Text != ds[0].Text || d.Clock == "" {
			sameText = false
			break
		}
	}
	if !sameText || ds[0].Clock == "" {
		strs := make([]string, len(ds))
		for i, d := range ds {
			strs[i] = d.String()
		}
		return strings.Join(strs, " / ")
	}

	var b strings.Builder
	b.WriteString(ds[0].Clock + " " + ds[0].Zone + " /")
	for _, d := range ds[1:] {
		b.WriteString(d.Clock + " " + d.Zone + "/")
	}
	if ds[0].Text != "" {
		b.WriteString(" " + ds[0].Text)
	}
	return b.String()
}
