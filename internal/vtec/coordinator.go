package vtec

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// Coordinator drives one engine for area events and one for point events.
type Coordinator struct {
	factory Factory
	logger  *slog.Logger
}

// NewCoordinator returns a Coordinator over factory.
func NewCoordinator(factory Factory, logger *slog.Logger) *Coordinator {
	return &Coordinator{factory: factory, logger: logger}
}

// Result is the engine output of one generation.
type Result struct {
	Segments []domain.Segment
	engines  []Engine
}

// Merge commits every engine after issuance.
func (r *Result) Merge(ctx context.Context) error {
	for _, e := range r.engines {
		if err := e.MergeResults(ctx); err != nil {
			return domain.ExternalServiceError("vtec engine merge", err)
		}
	}
	return nil
}

// Records returns every record of every segment.
func (r *Result) Records() []domain.VTECRecord {
	var out []domain.VTECRecord
	for _, s := range r.Segments {
		out = append(out, s.Records...)
	}
	return out
}

// Run asks the engines for segments and records. Any engine failure aborts the
// whole run.
func (c *Coordinator) Run(ctx context.Context, set domain.EventSet, officeID string) (*Result, error) {
	var area, point []domain.HazardEvent
	for _, e := range set.Events {
		if e.IsPoint() {
			point = append(point, e)
		} else {
			area = append(area, e)
		}
	}

	res := &Result{}
	for _, fam := range []struct {
		geo    domain.GeoType
		events []domain.HazardEvent
	}{{domain.GeoArea, area}, {domain.GeoPoint, point}} {
		if len(fam.events) == 0 {
			continue
		}
		req := Request{
			Events:    fam.events,
			GeoType:   fam.geo,
			IssueTime: set.IssueTime(),
			SiteID:    set.Attributes.SiteID,
			OfficeID:  officeID,
			Mode:      set.VTECMode(),
			Issue:     set.Attributes.IssueFlag,
		}
		segs, eng, err := c.run(ctx, req)
		if err != nil {
			return nil, err
		}
		res.Segments = append(res.Segments, segs...)
		res.engines = append(res.engines, eng)
	}
	c.logger.Debug("vtec segments computed", "segments", len(res.Segments))
	return res, nil
}

func (c *Coordinator) run(ctx context.Context, req Request) ([]domain.Segment, Engine, error) {
	eng, err := c.factory(ctx, req)
	if err != nil {
		return nil, nil, domain.ExternalServiceError("vtec engine", err)
	}
	raw, err := eng.Segments(ctx)
	if err != nil {
		return nil, nil, domain.ExternalServiceError("vtec engine segments", err)
	}

	out := make([]domain.Segment, 0, len(raw))
	for _, rs := range raw {
		recs, err := eng.Records(ctx, rs)
		if err != nil {
			return nil, nil, domain.ExternalServiceError("vtec engine records", fmt.Errorf("segment %v: %w", rs.IDs, err))
		}
		strs, err := eng.VTECStrings(ctx, rs)
		if err != nil {
			return nil, nil, domain.ExternalServiceError("vtec engine strings", fmt.Errorf("segment %v: %w", rs.IDs, err))
		}
		seg := domain.Segment{
			Key:         domain.NewSegmentKey(rs.IDs, rs.EventIDs),
			GeoType:     req.GeoType,
			VTECStrings: strs,
		}
		for _, r := range recs {
			seg.Records = append(seg.Records, Convert(r))
		}
		out = append(out, seg)
	}
	return out, eng, nil
}
