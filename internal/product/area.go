package product

import (
	"strings"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/hydro"
	"github.com/couchcryptid/hazard-product-generator/internal/ugc"
)

var shortFusedPhens = map[string]bool{
	"FF": true, "FA": true, "TO": true, "SV": true, "SM": true, "EW": true, "FL": true,
}

var causePhrases = map[string]string{
	"DM": "a dam failure in",
	"DR": "a dam or levee release in",
	"GO": "a glacier-dammed lake outburst in",
	"IJ": "an ice jam in",
	"RS": "rain and snowmelt in",
	"SM": "snowmelt in",
}

// AreaPhrase picks the area wording of a section:
//   - short-fused area warnings that add area get one bullet line per UGC
//   - dam, levee, glacier, ice jam and snowmelt causes get a cause prefix
//   - point events name the river and forecast point
//   - everything else gets the grouped county phrase
func AreaPhrase(areas *ugc.Dictionary, ev domain.HazardEvent, rec domain.VTECRecord, point *hydro.ForecastPoint, ugcs []string) string {
	if ev.IsPoint() {
		if p := pointPhrase(ev, point); p != "" {
			return p
		}
	} else if bulleted(ev, rec) {
		lines := areas.Bullets(ugcs)
		for i, l := range lines {
			lines[i] = "  " + l
		}
		return "\n" + strings.Join(lines, "\n") + "\n"
	}

	phrase := areas.Phrase(areas.DescribeAreas(ugcs))
	cause := ev.Attributes.String("immediateCause")
	if prefix, ok := causePhrases[cause]; ok && !ev.IsPoint() {
		dam, river := ev.Attributes.String("damOrLeveeName"), ev.Attributes.String("riverName")
		if (cause == "DM" || cause == "DR") && dam != "" && river != "" {
			return "The " + river + " below " + dam + " in " + phrase
		}
		return prefix + " " + phrase
	}
	return phrase
}

func bulleted(ev domain.HazardEvent, rec domain.VTECRecord) bool {
	if !shortFusedPhens[ev.Phen] || ev.Sig == "A" {
		return false
	}
	switch rec.Action {
	case domain.ActionNew, domain.ActionExa, domain.ActionExt, domain.ActionExb:
		return true
	}
	return false
}

func pointPhrase(ev domain.HazardEvent, point *hydro.ForecastPoint) string {
	if point != nil && point.Name != "" {
		return hydro.PointPhrase(*point)
	}
	a := ev.Attributes
	fp := hydro.ForecastPoint{
		RiverName: a.String("riverName"),
		Proximity: a.String("proximity"),
		Name:      a.String("riverPointName"),
	}
	if fp.Name == "" {
		return ""
	}
	return hydro.PointPhrase(fp)
}
