// Package generator runs one product generation: VTEC segments, product
// grouping, cancellation analysis and product assembly, followed on issuance
// by VTEC persistence and event lifecycle updates.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/cancellation"
	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/grouping"
	"github.com/couchcryptid/hazard-product-generator/internal/lifecycle"
	"github.com/couchcryptid/hazard-product-generator/internal/observability"
	"github.com/couchcryptid/hazard-product-generator/internal/product"
	"github.com/couchcryptid/hazard-product-generator/internal/validation"
	"github.com/couchcryptid/hazard-product-generator/internal/vtec"
)

// VTECStore persists the VTEC records of issued products.
type VTECStore interface {
	SaveRecords(ctx context.Context, records []domain.VTECRecord, mode domain.HazardMode) error
}

// Generator turns event sets into product dictionaries.
type Generator struct {
	coordinator *vtec.Coordinator
	policy      *grouping.Policy
	builder     *product.Builder
	analyzer    *cancellation.Analyzer
	lifecycle   *lifecycle.Manager
	records     VTECStore
	officeID    string
	logger      *slog.Logger
	metrics     *observability.Metrics

	// issueMu serializes issuances so ETN allocation and record saving
	// happen as one step.
	issueMu sync.Mutex
}

// Output is the result of one generation.
type Output struct {
	Products     []*product.Product
	Events       []domain.HazardEvent
	Cancellation cancellation.Result
	Issued       bool
	Ended        []string
}

// MarshalJSON renders the product dictionaries, the events and the
// cancellation dialog.
func (o *Output) MarshalJSON() ([]byte, error) {
	type tab struct {
		ProductLabel string           `json:"productLabel"`
		EventIDs     []string         `json:"eventIDs"`
		Fields       []map[string]any `json:"fields"`
	}
	dicts := make([]*domain.Dict, len(o.Products))
	for i, p := range o.Products {
		dicts[i] = p.Dict
	}
	tabs := make([]tab, len(o.Cancellation.Tabs))
	for i, t := range o.Cancellation.Tabs {
		tabs[i] = tab{ProductLabel: t.ProductLabel, EventIDs: t.EventIDs, Fields: t.Fields.Maps()}
	}
	return json.Marshal(struct {
		Products         []*domain.Dict       `json:"products"`
		Events           []domain.HazardEvent `json:"events"`
		CanceledEventIDs []string             `json:"canceledEventIDs"`
		Cancellation     []tab                `json:"cancellationDialog"`
		Issued           bool                 `json:"issued"`
		Ended            []string             `json:"endedEventIDs,omitempty"`
	}{dicts, o.Events, o.Cancellation.CanceledEventIDs, tabs, o.Issued, o.Ended})
}

// Generate produces the products of set. Engine, event store and VTEC store
// failures abort the whole generation. When set asks for issuance, events
// are validated first and the lifecycle runs only after the VTEC records are
// saved and merged. Issuances run one at a time; previews run concurrently.
func (g *Generator) Generate(ctx context.Context, set domain.EventSet) (*Output, error) {
	start := time.Now()
	mode := "preview"
	if set.Attributes.IssueFlag {
		mode = "issue"
		g.issueMu.Lock()
		defer g.issueMu.Unlock()
	}

	out, err := g.generate(ctx, set)
	g.metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		g.metrics.Generations.WithLabelValues(mode, "error").Inc()
		g.logger.Error("product generation aborted", "mode", mode, "events", len(set.Events), "error", err)
		return nil, err
	}
	g.metrics.Generations.WithLabelValues(mode, "success").Inc()
	for _, p := range out.Products {
		g.metrics.ProductsGenerated.WithLabelValues(p.Group.ProductID).Inc()
	}
	g.logger.Info("products generated", "mode", mode, "products", len(out.Products),
		"canceled", len(out.Cancellation.CanceledEventIDs), "duration", time.Since(start))
	return out, nil
}

func (g *Generator) generate(ctx context.Context, set domain.EventSet) (*Output, error) {
	if set.Attributes.IssueFlag {
		if err := validation.Validate(set.Events); err != nil {
			return nil, err
		}
	}
	issue := set.IssueTime()
	hazardMode := Mode(set)
	ctx = domain.WithHazardMode(ctx, hazardMode)

	res, err := g.coordinator.Run(ctx, set, g.officeID)
	if err != nil {
		return nil, err
	}
	groups, err := g.policy.Group(res.Segments)
	if err != nil {
		return nil, fmt.Errorf("group segments: %w", err)
	}
	canceled, err := g.analyzer.Analyze(ctx, set.Events, groups, hazardMode)
	if err != nil {
		return nil, err
	}
	g.metrics.CancellationsDetected.Add(float64(len(canceled.CanceledEventIDs)))

	events := append(append([]domain.HazardEvent(nil), set.Events...), canceled.Fetched...)
	byID := make(map[string]domain.HazardEvent, len(events))
	for _, e := range events {
		byID[e.EventID] = e
	}

	out := &Output{Events: events, Cancellation: canceled}
	for _, grp := range groups {
		p, err := g.builder.Build(ctx, product.Request{
			Group:      grp,
			Events:     byID,
			Issue:      issue,
			Attributes: set.Attributes,
		})
		if err != nil {
			return nil, err
		}
		out.Products = append(out.Products, p)
	}

	if set.Attributes.IssueFlag {
		if err := g.issue(ctx, out, res, issue, hazardMode); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// issue saves and merges the VTEC records, then applies the lifecycle. If
// saving or merging fails the events keep their pre-issuance state.
func (g *Generator) issue(ctx context.Context, out *Output, res *vtec.Result, issue time.Time, mode domain.HazardMode) error {
	if err := g.records.SaveRecords(ctx, res.Records(), mode); err != nil {
		g.metrics.IssuanceFailures.WithLabelValues("vtec_save").Inc()
		return domain.ExternalServiceError("vtec store", err)
	}
	if err := res.Merge(ctx); err != nil {
		g.metrics.IssuanceFailures.WithLabelValues("merge").Inc()
		return err
	}

	lc, err := g.lifecycle.Apply(ctx, out.Events, Entries(out.Products), issue, mode)
	if err != nil {
		g.metrics.IssuanceFailures.WithLabelValues("lifecycle").Inc()
		return err
	}
	g.metrics.EventsEnded.Add(float64(len(lc.Ended)))
	out.Events = lc.Events
	out.Ended = lc.Ended
	out.Issued = true
	return nil
}

// Entries lists what each issued segment did to each of its events.
func Entries(products []*product.Product) []lifecycle.Entry {
	var out []lifecycle.Entry
	for _, p := range products {
		for _, st := range p.Segments {
			for _, r := range st.Segment.Records {
				pil := r.PIL
				if pil == "" {
					pil = p.Group.ProductID
				}
				for _, id := range r.EventIDs {
					if !st.Key().HasEvent(id) {
						continue
					}
					out = append(out, lifecycle.Entry{EventID: id, Action: r.Action, ETN: r.ETN, PIL: pil, Expire: st.Expire})
				}
			}
		}
	}
	return out
}

// Mode returns the session hazard mode, defaulting to operational.
func Mode(set domain.EventSet) domain.HazardMode {
	if m := set.Attributes.Session.HazardMode; m != "" {
		return m
	}
	return domain.ModeOperational
}

// IsRejected reports whether err is a request problem rather than a service
// failure: invalid forecaster input or an unusable recipe.
func IsRejected(err error) bool {
	return errors.Is(err, domain.ErrValidation) || errors.Is(err, grouping.ErrNoTemplate) ||
		errors.Is(err, product.ErrUnknownPart) || errors.Is(err, product.ErrSegmentEvents)
}
