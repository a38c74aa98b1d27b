package product

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/hydro"
	"github.com/couchcryptid/hazard-product-generator/internal/metadata"
	"github.com/couchcryptid/hazard-product-generator/internal/timing"
)

// ErrSegmentEvents reports a segment whose events are missing from the
// working set or do not touch the segment's identifiers.
var ErrSegmentEvents = errors.New("segment events do not match segment identifiers")

// SegmentState is everything product text needs to know about one segment.
type SegmentState struct {
	Segment   domain.Segment
	UGCs      []string
	TimeZones []string
	Zones     []*time.Location
	Expire    time.Time
	// Records are the segment's VTEC records in headline order.
	Records          []domain.VTECRecord
	Sections         []Section
	CanRecord        *domain.VTECRecord
	Cities           []string
	SummaryHeadlines string
	Headlines        []string
	CTAs             []string
	PolygonText      string
	Polygons         [][]domain.LatLon

	issue time.Time
	texts []sectionText
}

// Key returns the segment key.
func (s *SegmentState) Key() domain.SegmentKey { return s.Segment.Key }

func (s *SegmentState) primaryZone() *time.Location {
	if len(s.Zones) == 0 {
		return time.UTC
	}
	return s.Zones[0]
}

func (s *SegmentState) provenance(editable bool) domain.Provenance {
	return domain.Provenance{
		EventIDs:   s.Segment.Key.EventIDs,
		SegmentKey: s.Segment.Key.String(),
		Editable:   editable,
	}
}

// BuildSegment assembles the state of seg from the working event set.
func (b *Builder) BuildSegment(ctx context.Context, group domain.ProductSegmentGroup, seg domain.Segment, events map[string]domain.HazardEvent, issue time.Time) (*SegmentState, error) {
	if err := checkSegment(seg, events); err != nil {
		return nil, err
	}

	st := &SegmentState{Segment: seg, issue: issue.UTC()}
	st.UGCs = segmentUGCs(seg, events)
	st.TimeZones = b.areas.TimeZones(st.UGCs)
	st.Zones = b.loadZones(st.TimeZones)
	st.Cities = b.areas.Cities(st.UGCs)
	st.Expire = b.site.Policy(group.ProductID).Expire(st.issue, seg.Records)

	st.Records = OrderRecords(seg.Records, st.issue)
	if len(st.Records) == 0 {
		st.Records = slices.Clone(seg.Records)
		sortRecords(st.Records)
	}
	st.SummaryHeadlines, st.Headlines = SummaryHeadlines(st.Records, b.phraser, st.Zones, st.issue)
	for i, r := range st.Records {
		if r.Action.Terminal() {
			st.CanRecord = &st.Records[i]
			break
		}
	}

	if err := b.buildSections(ctx, st, events); err != nil {
		return nil, err
	}
	b.pair(st)

	for i, sec := range st.Sections {
		txt := st.texts[i]
		for _, cta := range txt.ctas {
			if !slices.Contains(st.CTAs, cta) {
				st.CTAs = append(st.CTAs, cta)
			}
		}
		if txt.polygonText != "" && group.FormatPolygon {
			if st.PolygonText != "" {
				st.PolygonText += "\n"
			}
			st.PolygonText += txt.polygonText
		}
		if !sec.Event.IsPoint() {
			st.Polygons = append(st.Polygons, sec.Event.Geometry.Polygons()...)
		}
	}
	return st, nil
}

// checkSegment enforces that every segment event exists and shares at least
// one UGC or point ID with the segment.
func checkSegment(seg domain.Segment, events map[string]domain.HazardEvent) error {
	for _, id := range seg.Key.EventIDs {
		ev, ok := events[id]
		if !ok {
			return fmt.Errorf("%w: segment %s: event %s not in working set", ErrSegmentEvents, seg.Key, id)
		}
		ids := ev.UGCs()
		if ev.IsPoint() {
			ids = append(ids, ev.PointID())
		}
		if !slices.ContainsFunc(ids, seg.Key.HasID) {
			return fmt.Errorf("%w: segment %s: event %s", ErrSegmentEvents, seg.Key, id)
		}
	}
	return nil
}

// segmentUGCs returns the sorted UGCs of the segment. Point segments are keyed
// by point ID, so their UGCs come from the events.
func segmentUGCs(seg domain.Segment, events map[string]domain.HazardEvent) []string {
	if seg.GeoType != domain.GeoPoint {
		return slices.Clone(seg.Key.IDs)
	}
	var out []string
	for _, id := range seg.Key.EventIDs {
		out = append(out, events[id].UGCs()...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (b *Builder) loadZones(names []string) []*time.Location {
	zones, err := timing.LoadZones(names)
	if err != nil {
		b.logger.Warn("time zone lookup failed, using site zone", "zones", strings.Join(names, ","), "error", err)
		zones = nil
	}
	if len(zones) == 0 {
		zones = []*time.Location{b.site.location()}
	}
	return zones
}

// buildSections creates one section per (record, event) pair in headline
// order and computes its text.
func (b *Builder) buildSections(ctx context.Context, st *SegmentState, events map[string]domain.HazardEvent) error {
	points := make(map[string]*hydro.ForecastPoint)
	for _, rec := range st.Records {
		for _, id := range rec.EventIDs {
			if !st.Segment.Key.HasEvent(id) {
				continue
			}
			ev := events[id]
			sec := Section{
				Record:   rec,
				Event:    ev,
				Metadata: b.sectionMetadata(ctx, ev, rec),
			}
			if ev.IsPoint() {
				sec.Point = b.forecastPoint(ctx, ev.PointID(), points)
			}
			st.Sections = append(st.Sections, sec)
		}
	}
	if len(st.Sections) == 0 {
		return fmt.Errorf("%w: segment %s has no sections", ErrSegmentEvents, st.Segment.Key)
	}
	return nil
}

func (b *Builder) sectionMetadata(ctx context.Context, ev domain.HazardEvent, rec domain.VTECRecord) metadata.Set {
	if b.meta == nil {
		return nil
	}
	if rec.Action.Terminal() {
		ev = ev.Clone()
		ev.Status = domain.StatusEnding
	}
	set, err := b.meta.HazardMetadata(ctx, ev)
	if err != nil {
		b.logger.Warn("hazard metadata unavailable", "event_id", ev.EventID, "hazard_type", ev.HazardType(), "error", err)
		return nil
	}
	return set
}

func (b *Builder) forecastPoint(ctx context.Context, pointID string, seen map[string]*hydro.ForecastPoint) *hydro.ForecastPoint {
	if pointID == "" || b.rivers == nil {
		return nil
	}
	if p, ok := seen[pointID]; ok {
		return p
	}
	fp, err := b.rivers.ForecastPoint(ctx, pointID, true)
	if err != nil {
		b.logger.Warn("river forecast point unavailable", "point_id", pointID, "error", err)
		seen[pointID] = nil
		return nil
	}
	seen[pointID] = &fp
	return &fp
}

// pair computes section text and marks replaced and replacement sections.
// A replacement's description opens with the replaced section's attribution
// and the replaced section carries no description of its own.
func (b *Builder) pair(st *SegmentState) {
	st.texts = make([]sectionText, len(st.Sections))

	replaced := -1
	if st.CanRecord != nil {
		for i, sec := range st.Sections {
			if sec.Record.Action == st.CanRecord.Action && sec.Record.Key == st.CanRecord.Key && sec.Record.ETN == st.CanRecord.ETN {
				replaced = i
				break
			}
		}
	}
	hasReplacement := false
	for i := range st.Sections {
		if replaced >= 0 && replacementAction(st.Sections[i].Record.Action) {
			st.Sections[i].Role = RoleReplacement
			hasReplacement = true
		}
		st.texts[i] = b.sectionText(st, st.Sections[i])
	}
	if !hasReplacement {
		return
	}

	st.Sections[replaced].Role = RoleReplaced
	carried := st.texts[replaced].attribution
	st.texts[replaced].description = ""
	for i, sec := range st.Sections {
		if sec.Role == RoleReplacement {
			st.texts[i].description = carried + "\n\n" + st.texts[i].description
		}
	}
}

func replacementAction(a domain.Action) bool {
	switch a {
	case domain.ActionNew, domain.ActionExa, domain.ActionExb, domain.ActionExt:
		return true
	}
	return false
}
