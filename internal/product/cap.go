package product

import (
	"strings"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// capCodes are the CAP urgency, severity, certainty and response type of a
// record.
type capCodes struct {
	urgency, severity, certainty, response string
}

func codesFor(rec domain.VTECRecord) capCodes {
	if rec.Action.Terminal() {
		return capCodes{"Past", "Minor", "Observed", "AllClear"}
	}
	switch rec.Sig {
	case "W":
		c := capCodes{"Immediate", "Severe", "Likely", "Avoid"}
		if rec.Phen == "TO" || rec.Phen == "SV" {
			c.response = "Shelter"
		}
		return c
	case "A":
		return capCodes{"Future", "Severe", "Possible", "Prepare"}
	case "Y":
		return capCodes{"Expected", "Minor", "Likely", "Execute"}
	default:
		return capCodes{"Unknown", "Unknown", "Unknown", "Monitor"}
	}
}

// capInfo writes the CAP info block of a section.
func capInfo(b *Builder, s scope, d *domain.Dict) {
	sec, txt := s.section(), s.sectionText()
	rec := sec.Record
	codes := codesFor(rec)
	loc := s.seg.primaryZone()

	names := make([]string, len(s.seg.UGCs))
	for i, code := range s.seg.UGCs {
		names[i] = b.areas.Name(code).Name
	}
	onset := rec.StartTime
	if onset.IsZero() || onset.Before(s.product.issue) {
		onset = s.product.issue
	}

	info := domain.NewDict()
	info.Set("event", txt.hazardName)
	info.Set("headline", Headline(rec, txt.timing, s.product.issue))
	info.Set("description", txt.description)
	info.Set("instruction", strings.Join(txt.ctas, "\n\n"))
	info.Set("urgency", codes.urgency)
	info.Set("severity", codes.severity)
	info.Set("certainty", codes.certainty)
	info.Set("responseType", codes.response)
	info.Set("onset", formatCAPTime(onset, loc))
	info.Set("expires", formatCAPTime(s.seg.Expire, loc))
	info.Set("areaDesc", strings.Join(names, "; "))
	var polys []string
	for _, p := range sec.Event.Geometry.Polygons() {
		polys = append(polys, CAPPolygon(p))
	}
	info.Set("polygon", polys)
	d.SetEditable("info", info, sectionProvenance(s, false))
}
