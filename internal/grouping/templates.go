package grouping

import "github.com/couchcryptid/hazard-product-generator/internal/domain"

var productHeader = domain.Leaves(
	"productID", "productName", "productLabel", "wmoHeader", "issueTime", "sentTimeZ", "sentTimeLocal", "timeZones",
)

var sectionCommon = domain.Leaves(
	"hazardName", "attribution", "firstBullet", "timeBullet", "basisBullet", "impactsBullet",
	"callsToAction", "polygonText", "description", "pairingRole", "vtecRecord", "info",
)

var sectionHydro = domain.Leaves(
	"hazardName", "attribution", "firstBullet", "timeBullet", "observedStage", "floodStage",
	"forecastStage", "floodHistory", "impactsAtStages", "basisBullet", "impactsBullet",
	"callsToAction", "description", "pairingRole", "vtecRecord", "info",
)

func segmentParts(sections []domain.Part, polygons bool) domain.Part {
	parts := domain.Leaves(
		"ugcCodes", "ugcHeader", "vtecRecords", "vtecStrings", "areaList", "cityList", "timeZones",
		"expireTime", "summaryHeadlines",
	)
	parts = append(parts, domain.SectionsPart(sections...), domain.Leaf("callsToAction"))
	if polygons {
		parts = append(parts, domain.Leaf("polygonText"), domain.Leaf("polygons"))
	}
	return domain.SegmentsPart(append(parts, domain.Leaf("endSegment"))...)
}

func recipe(overview bool, seg domain.Part) []domain.Part {
	parts := append([]domain.Part(nil), productHeader...)
	if overview {
		parts = append(parts, domain.Leaf("overview"))
	}
	return append(parts, seg, domain.Leaf("wrapUp"))
}

// DefaultTemplates are the product-parts recipes by template name.
func DefaultTemplates() map[string][]domain.Part {
	return map[string][]domain.Part{
		"watch":         recipe(true, segmentParts(sectionCommon, false)),
		"areaWarning":   recipe(false, segmentParts(sectionCommon, true)),
		"pointProduct":  recipe(true, segmentParts(sectionHydro, false)),
		"nonPrecip":     recipe(true, segmentParts(sectionCommon, false)),
		"areaStatement": recipe(false, segmentParts(sectionCommon, true)),
	}
}
