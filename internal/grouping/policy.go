// Package grouping splits VTEC segments into the products they are issued in
// and assigns each product its product-parts recipe.
package grouping

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/vtec"
)

// ErrNoTemplate is returned when a product family names a recipe that is not
// configured.
var ErrNoTemplate = errors.New("no product-parts template")

// family describes how one product ID is grouped.
type family struct {
	name     string
	template string
	// perEvent issues one product per event and hazard type.
	perEvent      bool
	formatPolygon bool
}

var families = map[string]family{
	"FFA": {name: "Flood Watch", template: "watch"},
	"FFW": {name: "Flash Flood Warning", template: "areaWarning", perEvent: true, formatPolygon: true},
	"FFS": {name: "Flash Flood Statement", template: "areaStatement", perEvent: true, formatPolygon: true},
	"FLW": {name: "Flood Warning", template: "areaWarning", perEvent: true, formatPolygon: true},
	"FLS": {name: "Flood Statement", template: "areaStatement", perEvent: true, formatPolygon: true},
	"TOR": {name: "Tornado Warning", template: "areaWarning", perEvent: true, formatPolygon: true},
	"SVR": {name: "Severe Thunderstorm Warning", template: "areaWarning", perEvent: true, formatPolygon: true},
	"SVS": {name: "Severe Weather Statement", template: "areaStatement", perEvent: true, formatPolygon: true},
	"NPW": {name: "Non-Precipitation Warnings", template: "nonPrecip"},
	"ESF": {name: "Hydrologic Outlook", template: "nonPrecip"},
}

// Policy groups segments into product segment groups.
type Policy struct {
	templates map[string][]domain.Part
}

// New returns a Policy using templates, or DefaultTemplates when nil.
func New(templates map[string][]domain.Part) *Policy {
	if templates == nil {
		templates = DefaultTemplates()
	}
	return &Policy{templates: templates}
}

// Group returns one group per output product. Groups are ordered by first
// appearance in segs; segments keep engine order within a group. Point and
// area hazards never share a product, and labels are unique.
func (p *Policy) Group(segs []domain.Segment) ([]domain.ProductSegmentGroup, error) {
	var (
		order  []string
		groups = make(map[string]*domain.ProductSegmentGroup)
	)
	for _, seg := range segs {
		for _, sp := range split(seg) {
			label := sp.label.String()
			g, ok := groups[label]
			if !ok {
				ng, err := p.newGroup(sp)
				if err != nil {
					return nil, err
				}
				g = &ng
				groups[label] = g
				order = append(order, label)
			}
			g.Segments = append(g.Segments, sp.segment)
			for _, r := range sp.segment.Records {
				if !slices.Contains(g.Actions, r.Action) {
					g.Actions = append(g.Actions, r.Action)
				}
			}
		}
	}

	out := make([]domain.ProductSegmentGroup, 0, len(order))
	for _, label := range order {
		g := groups[label]
		g.Segmented = g.Segmented || len(g.Segments) > 1
		out = append(out, *g)
	}
	return out, nil
}

func (p *Policy) newGroup(sp piece) (domain.ProductSegmentGroup, error) {
	fam := familyOf(sp.label.ProductID, sp.segment.GeoType)
	parts, ok := p.templates[fam.template]
	if !ok {
		return domain.ProductSegmentGroup{}, fmt.Errorf("%w: %q for %s", ErrNoTemplate, fam.template, sp.label)
	}
	name := fam.name
	if sp.label.AdvisoryKind == "advisory" || (sp.label.ProductID == "FLS" && sp.sig == "Y") {
		name = "Flood Advisory"
	}
	return domain.ProductSegmentGroup{
		ProductID:     sp.label.ProductID,
		ProductName:   name,
		GeoType:       sp.segment.GeoType,
		MapType:       mapType(sp.segment),
		Segmented:     !fam.perEvent,
		ETN:           sp.etn,
		FormatPolygon: fam.formatPolygon,
		Label:         sp.label,
		ProductLabel:  sp.label.String(),
		Parts:         slices.Clone(parts),
	}, nil
}

func familyOf(productID string, geo domain.GeoType) family {
	fam, ok := families[productID]
	if !ok {
		fam = family{name: productID, template: "nonPrecip"}
	}
	if geo == domain.GeoPoint {
		fam.template = "pointProduct"
		fam.perEvent = false
		fam.formatPolygon = false
	}
	return fam
}

// piece is the part of one segment that belongs to one product.
type piece struct {
	label   domain.ProductLabel
	segment domain.Segment
	sig     string
	etn     int
}

// split partitions the records of seg by product.
func split(seg domain.Segment) []piece {
	var (
		order  []string
		pieces = make(map[string]*piece)
	)
	for _, r := range seg.Records {
		pil := r.PIL
		if pil == "" {
			pil = vtec.PILFor(r.PhenSig(), r.Action)
		}
		label := domain.ProductLabel{ProductID: pil, GeoType: seg.GeoType}
		fam := familyOf(pil, seg.GeoType)

		eventIDs := r.EventIDs
		switch {
		case seg.GeoType == domain.GeoPoint && pil == "FLS":
			label.AdvisoryKind = "warning"
			if r.Sig == "Y" {
				label.AdvisoryKind = "advisory"
			}
		case fam.perEvent:
			for _, id := range r.EventIDs {
				if !seg.Key.HasEvent(id) {
					continue
				}
				l := label
				l.EventID, l.HazardType = id, r.Key
				add(pieces, &order, l, seg, r, []string{id})
			}
			continue
		}
		add(pieces, &order, label, seg, r, eventIDs)
	}

	out := make([]piece, 0, len(order))
	for _, k := range order {
		p := pieces[k]
		p.segment.Key = domain.NewSegmentKey(seg.Key.IDs, p.segment.Key.EventIDs)
		p.segment.VTECStrings = vtecLines(seg.VTECStrings, p.segment.Records)
		out = append(out, *p)
	}
	return out
}

func add(pieces map[string]*piece, order *[]string, label domain.ProductLabel, seg domain.Segment, r domain.VTECRecord, eventIDs []string) {
	k := label.String()
	p, ok := pieces[k]
	if !ok {
		p = &piece{label: label, sig: r.Sig, etn: r.ETN, segment: domain.Segment{GeoType: seg.GeoType}}
		pieces[k] = p
		*order = append(*order, k)
	}
	p.segment.Records = append(p.segment.Records, r)
	for _, id := range eventIDs {
		if seg.Key.HasEvent(id) && !slices.Contains(p.segment.Key.EventIDs, id) {
			p.segment.Key.EventIDs = append(p.segment.Key.EventIDs, id)
		}
	}
}

// vtecLines keeps the P-VTEC lines of recs and the H-VTEC line following each.
func vtecLines(lines []string, recs []domain.VTECRecord) []string {
	var out []string
	keep := false
	for _, l := range lines {
		fields := strings.Split(strings.Trim(l, "/"), ".")
		if len(fields) >= 5 && len(fields[1]) == 3 && isAction(fields[1]) {
			keep = slices.ContainsFunc(recs, func(r domain.VTECRecord) bool {
				return string(r.Action) == fields[1] && r.Phen == fields[3] && r.Sig == fields[4]
			})
		}
		if keep {
			out = append(out, l)
		}
	}
	return out
}

func isAction(s string) bool {
	switch domain.Action(s) {
	case domain.ActionNew, domain.ActionCon, domain.ActionExt, domain.ActionExa, domain.ActionExb,
		domain.ActionCan, domain.ActionExp, domain.ActionUpg, domain.ActionRou:
		return true
	}
	return false
}

func mapType(seg domain.Segment) string {
	if seg.GeoType == domain.GeoPoint {
		return "points"
	}
	for _, id := range seg.Key.IDs {
		if len(id) > 2 && id[2] == 'Z' {
			return "publicZones"
		}
	}
	return "counties"
}
