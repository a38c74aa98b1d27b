package product

import (
	"strconv"
	"strings"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/hydro"
	"github.com/couchcryptid/hazard-product-generator/internal/metadata"
)

// PairingRole marks sections that share text because a segment both ends one
// hazard and starts or grows another.
type PairingRole string

const (
	RoleNone PairingRole = ""
	// RoleReplaced is the CAN/EXP/UPG section whose text is carried into the
	// paired section.
	RoleReplaced PairingRole = "replaced"
	// RoleReplacement is a NEW/EXA/EXB/EXT section that carries the text of
	// the replaced section.
	RoleReplacement PairingRole = "replacement"
)

// Section is one (record, metadata, event) triple of a segment.
type Section struct {
	Record   domain.VTECRecord
	Event    domain.HazardEvent
	Metadata metadata.Set
	Point    *hydro.ForecastPoint
	Role     PairingRole
}

// sectionText is everything the section handlers write, computed once.
type sectionText struct {
	hazardName  string
	areaPhrase  string
	attribution string
	firstBullet string
	timeBullet  string
	timing      string
	basis       string
	impacts     string
	ctas        []string
	hydro       hydro.Bullets
	polygonText string
	description string
}

var sigWords = map[string]string{"W": "WARNING", "A": "WATCH", "Y": "ADVISORY", "S": "STATEMENT"}

func framedFor(what, sig string) string {
	word, ok := sigWords[sig]
	if !ok {
		word = "HAZARD"
	}
	return metadata.Frame(what + " FOR THE " + word)
}

func (b *Builder) sectionText(seg *SegmentState, sec Section) sectionText {
	rec, ev := sec.Record, sec.Event
	st := sectionText{hazardName: rec.Headline}
	if st.hazardName == "" {
		st.hazardName = domain.HazardHeadline(rec.Key)
	}

	st.areaPhrase = AreaPhrase(b.areas, ev, rec, sec.Point, seg.UGCs)
	st.timing = b.phraser.Phrase(rec, seg.Zones, seg.issue)
	st.attribution, st.firstBullet = Attribution(AttributionInput{
		Action:     rec.Action,
		HazardName: st.hazardName,
		AreaPhrase: st.areaPhrase,
		WFOCity:    b.site.WFOCity,
		Timing:     st.timing,
		GeoType:    ev.GeoType,
		Issue:      seg.issue,
		End:        rec.EndTime,
	})
	if st.timing != "" && !rec.Action.Terminal() {
		st.timeBullet = sentence(capitalize(st.timing))
	}

	if rec.Action.Terminal() {
		st.basis = b.resolver.ProductString(ev, sec.Metadata, "endingSynopsis", "")
	} else {
		st.basis = b.resolver.ProductString(ev, sec.Metadata, "basis", "")
		if st.basis == "" {
			st.basis = framedFor("BASIS", rec.Sig)
		}
		st.impacts = b.resolver.ProductString(ev, sec.Metadata, "impacts", "")
		if st.impacts == "" {
			st.impacts = metadata.Frame("IMPACTS")
		}
		st.ctas = b.resolver.ProductStrings(ev, sec.Metadata, "cta", "")
	}

	if ev.IsPoint() && sec.Point != nil {
		w := hydro.NewWriter(seg.issue, seg.primaryZone())
		st.hydro = w.Build(*sec.Point, rec.Action, selectedStages(ev))
	}
	if !ev.IsPoint() {
		st.polygonText = EncodeLatLon(ev.Geometry.Polygons())
	}
	st.description = st.runningText()
	return st
}

func selectedStages(ev domain.HazardEvent) []float64 {
	if !ev.Attributes.Has("impactStages") {
		return nil
	}
	raw := ev.Attributes.Strings("impactStages")
	out := make([]float64, 0, len(raw))
	for _, s := range raw {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

func (st sectionText) opening() string {
	if st.firstBullet == "" {
		return st.attribution
	}
	if strings.HasPrefix(st.firstBullet, "\n") {
		return st.attribution + st.firstBullet
	}
	return st.attribution + " " + st.firstBullet
}

// runningText accumulates the section's paragraphs in reading order.
func (st sectionText) runningText() string {
	paras := []string{
		st.opening(), st.timeBullet, st.basis, st.impacts,
		st.hydro.Observed, st.hydro.FloodStage, st.hydro.Forecast, st.hydro.FloodHistory,
	}
	paras = append(paras, st.hydro.Impacts...)
	out := paras[:0]
	for _, p := range paras {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}
