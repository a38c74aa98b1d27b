package product

import (
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/ugc"
)

const (
	isoLayout   = "2006-01-02T15:04:05Z"
	localLayout = "304 PM MST Mon Jan 2 2006"
	wrapUp      = "$$"
)

var registry = map[level]map[string]handler{
	levelProduct: {
		"productID":     productID,
		"productName":   productName,
		"productLabel":  productLabel,
		"wmoHeader":     wmoHeader,
		"overview":      overview,
		"issueTime":     productIssueTime,
		"sentTimeZ":     sentTimeZ,
		"sentTimeLocal": sentTimeLocal,
		"timeZones":     productTimeZones,
		"wrapUp":        productWrapUp,
	},
	levelSegment: {
		"ugcCodes":         ugcCodes,
		"ugcHeader":        ugcHeader,
		"vtecRecords":      vtecRecords,
		"vtecStrings":      vtecStrings,
		"areaList":         areaList,
		"cityList":         cityList,
		"timeZones":        segmentTimeZones,
		"expireTime":       expireTime,
		"summaryHeadlines": summaryHeadlines,
		"callsToAction":    segmentCTAs,
		"polygonText":      segmentPolygonText,
		"polygons":         segmentPolygons,
		"endSegment":       endSegment,
	},
	levelSection: {
		"hazardName":      hazardName,
		"attribution":     attribution,
		"firstBullet":     firstBullet,
		"timeBullet":      timeBullet,
		"basisBullet":     basisBullet,
		"impactsBullet":   impactsBullet,
		"callsToAction":   sectionCTAs,
		"observedStage":   observedStage,
		"floodStage":      floodStage,
		"forecastStage":   forecastStage,
		"floodHistory":    floodHistory,
		"impactsAtStages": impactsAtStages,
		"polygonText":     sectionPolygonText,
		"description":     description,
		"pairingRole":     pairingRole,
		"vtecRecord":      vtecRecord,
		"info":            capInfo,
	},
}

// Product level.

func productID(_ *Builder, s scope, d *domain.Dict) { d.Set("productID", s.product.Group.ProductID) }

func productName(_ *Builder, s scope, d *domain.Dict) {
	d.Set("productName", s.product.Group.ProductName)
}

func productLabel(_ *Builder, s scope, d *domain.Dict) {
	d.Set("productLabel", s.product.Group.ProductLabel)
}

// wmoHeader writes the WMO abbreviated heading and the AWIPS identifiers.
func wmoHeader(b *Builder, s scope, d *domain.Dict) {
	id := s.product.Group.ProductID
	ttaaii := b.site.TTAAii[id]
	ddhhmm := s.product.issue.Format("021504")
	pil := b.site.CCC + id + b.site.SiteID

	h := domain.NewDict()
	h.Set("TTAAii", ttaaii)
	h.Set("fullStationID", b.site.FullStationID)
	h.Set("ddhhmm", ddhhmm)
	h.Set("productID", id)
	h.Set("siteID", b.site.SiteID)
	h.Set("wmoHeaderLine", ttaaii+" "+b.site.FullStationID+" "+ddhhmm)
	h.Set("awipsWANPil", pil)
	h.Set("textDBPil", pil)
	h.Set("awipsIdentifierLine", id+b.site.SiteID)
	d.Set("wmoHeader", h)
}

func overview(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("overview", s.product.attrs.OverviewHeadline, domain.Provenance{
		EventIDs: s.product.Group.EventIDs(),
		Editable: true,
	})
}

func productIssueTime(_ *Builder, s scope, d *domain.Dict) {
	d.Set("issueTime", domain.Millis(s.product.issue))
}

func sentTimeZ(_ *Builder, s scope, d *domain.Dict) {
	d.Set("sentTimeZ", s.product.issue.Format(isoLayout))
}

// sentTimeLocal renders the issue time in the site zone, e.g.
// "1200 PM MDT Mon Jun 15 2026".
func sentTimeLocal(b *Builder, s scope, d *domain.Dict) {
	d.Set("sentTimeLocal", s.product.issue.In(b.site.location()).Format(localLayout))
}

func productTimeZones(_ *Builder, s scope, d *domain.Dict) {
	var out []string
	for _, seg := range s.product.Segments {
		for _, tz := range seg.TimeZones {
			if !slices.Contains(out, tz) {
				out = append(out, tz)
			}
		}
	}
	d.Set("timeZones", out)
}

func productWrapUp(_ *Builder, _ scope, d *domain.Dict) { d.Set("wrapUp", wrapUp) }

// Segment level.

func ugcCodes(_ *Builder, s scope, d *domain.Dict) { d.Set("ugcCodes", s.seg.UGCs) }

func ugcHeader(_ *Builder, s scope, d *domain.Dict) {
	d.Set("ugcHeader", ugc.FormatUGCs(s.seg.UGCs, s.seg.Expire))
}

func vtecRecords(_ *Builder, s scope, d *domain.Dict) {
	list := make([]*domain.Dict, len(s.seg.Records))
	for i, r := range s.seg.Records {
		list[i] = recordDict(r)
	}
	d.Set("vtecRecords", list)
}

func vtecStrings(_ *Builder, s scope, d *domain.Dict) {
	d.Set("vtecStrings", s.seg.Segment.VTECStrings)
}

// areaList joins the area names with dashes as in the product's area line.
func areaList(b *Builder, s scope, d *domain.Dict) {
	names := make([]string, len(s.seg.UGCs))
	for i, code := range s.seg.UGCs {
		names[i] = b.areas.Name(code).Name
	}
	d.SetEditable("areaList", strings.Join(names, "-"), s.seg.provenance(false))
}

func cityList(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("cityList", s.seg.Cities, s.seg.provenance(true))
}

func segmentTimeZones(_ *Builder, s scope, d *domain.Dict) { d.Set("timeZones", s.seg.TimeZones) }

func expireTime(_ *Builder, s scope, d *domain.Dict) {
	d.Set("expireTime", domain.Millis(s.seg.Expire))
}

func summaryHeadlines(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("summaryHeadlines", s.seg.SummaryHeadlines, s.seg.provenance(true))
}

func segmentCTAs(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("callsToAction", s.seg.CTAs, s.seg.provenance(true))
}

func segmentPolygonText(_ *Builder, s scope, d *domain.Dict) {
	d.Set("polygonText", s.seg.PolygonText)
}

func segmentPolygons(_ *Builder, s scope, d *domain.Dict) { d.Set("polygons", s.seg.Polygons) }

func endSegment(_ *Builder, _ scope, d *domain.Dict) { d.Set("endSegment", wrapUp) }

// Section level.

func sectionProvenance(s scope, editable bool) domain.Provenance {
	return domain.Provenance{
		EventIDs:   []string{s.section().Event.EventID},
		SegmentKey: s.seg.Segment.Key.String(),
		Editable:   editable,
	}
}

func hazardName(_ *Builder, s scope, d *domain.Dict) {
	d.Set("hazardName", s.sectionText().hazardName)
}

func attribution(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("attribution", s.sectionText().attribution, sectionProvenance(s, true))
}

func firstBullet(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("firstBullet", s.sectionText().firstBullet, sectionProvenance(s, true))
}

func timeBullet(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("timeBullet", s.sectionText().timeBullet, sectionProvenance(s, true))
}

func basisBullet(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("basisBullet", s.sectionText().basis, sectionProvenance(s, true))
}

func impactsBullet(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("impactsBullet", s.sectionText().impacts, sectionProvenance(s, true))
}

func sectionCTAs(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("callsToAction", s.sectionText().ctas, sectionProvenance(s, true))
}

func observedStage(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("observedStage", s.sectionText().hydro.Observed, sectionProvenance(s, true))
}

func floodStage(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("floodStage", s.sectionText().hydro.FloodStage, sectionProvenance(s, true))
}

func forecastStage(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("forecastStage", s.sectionText().hydro.Forecast, sectionProvenance(s, true))
}

func floodHistory(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("floodHistory", s.sectionText().hydro.FloodHistory, sectionProvenance(s, true))
}

func impactsAtStages(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("impactsAtStages", s.sectionText().hydro.Impacts, sectionProvenance(s, true))
}

func sectionPolygonText(_ *Builder, s scope, d *domain.Dict) {
	d.Set("polygonText", s.sectionText().polygonText)
}

func description(_ *Builder, s scope, d *domain.Dict) {
	d.SetEditable("description", s.sectionText().description, sectionProvenance(s, true))
}

func pairingRole(_ *Builder, s scope, d *domain.Dict) {
	d.Set("pairingRole", string(s.section().Role))
}

func vtecRecord(_ *Builder, s scope, d *domain.Dict) {
	d.Set("vtecRecord", recordDict(s.section().Record))
}

// recordDict renders a record with epoch-millisecond times.
func recordDict(r domain.VTECRecord) *domain.Dict {
	d := domain.NewDict()
	d.Set("act", string(r.Action))
	d.Set("phen", r.Phen)
	d.Set("sig", r.Sig)
	if r.Subtype != "" {
		d.Set("subtype", r.Subtype)
	}
	d.Set("etn", r.ETN)
	d.Set("pil", r.PIL)
	d.Set("key", r.Key)
	d.Set("hdln", r.Headline)
	d.Set("startTime", domain.Millis(r.StartTime))
	d.Set("endTime", domain.Millis(r.EndTime))
	d.Set("issueTime", domain.Millis(r.IssueTime))
	d.Set("officeid", r.OfficeID)
	d.Set("id", r.IDs)
	d.Set("eventIDs", r.EventIDs)
	if r.VTECString != "" {
		d.Set("vtecstr", r.VTECString)
	}
	if h := r.HVTEC; h != nil {
		d.Set("pointID", h.PointID)
		d.Set("floodSeverity", h.FloodSeverity)
		d.Set("immediateCause", h.ImmediateCause)
		d.Set("riseAbove", domain.Millis(h.RiseAbove))
		d.Set("crest", domain.Millis(h.Crest))
		d.Set("fallBelow", domain.Millis(h.FallBelow))
		d.Set("floodRecord", h.FloodRecord)
	}
	return d
}

// formatCAPTime renders t in the site zone with a numeric offset.
func formatCAPTime(t time.Time, loc *time.Location) string {
	if t.IsZero() || domain.IsUFN(t) {
		return ""
	}
	return t.In(loc).Format("2006-01-02T15:04:05-07:00")
}
