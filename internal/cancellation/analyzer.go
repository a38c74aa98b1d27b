// Package cancellation finds the events a set of products cancels, either
// partially or automatically, and builds the cancellation dialog metadata for
// them.
package cancellation

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strconv"
	"unicode"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/metadata"
	"github.com/couchcryptid/hazard-product-generator/internal/ugc"
)

// EventStore reads persisted hazard events.
type EventStore interface {
	GetHazardEvent(ctx context.Context, eventID string, mode domain.HazardMode) (domain.HazardEvent, error)
}

// Tab is one product's page of the cancellation dialog.
type Tab struct {
	ProductLabel string       `json:"productLabel"`
	EventIDs     []string     `json:"eventIDs"`
	Fields       metadata.Set `json:"-"`
}

// Result is the outcome of one analysis.
type Result struct {
	// CanceledEventIDs lists every cancelled event across all groups in
	// dialog order, each once.
	CanceledEventIDs []string
	// Fetched are events that were absent from the input and read from the
	// event store.
	Fetched []domain.HazardEvent
	// Tabs holds one entry per product with cancelled events, in group order.
	Tabs []Tab
}

// Dialog returns the metadata fields keyed by product label.
func (r Result) Dialog() map[string]metadata.Set {
	out := make(map[string]metadata.Set, len(r.Tabs))
	for _, t := range r.Tabs {
		out[t.ProductLabel] = t.Fields
	}
	return out
}

// Analyzer detects partial and automatic cancellations.
type Analyzer struct {
	store  EventStore
	meta   metadata.Service
	areas  *ugc.Dictionary
	logger *slog.Logger
}

// NewAnalyzer returns an Analyzer. meta may be nil, in which case tabs carry
// only their labels.
func NewAnalyzer(store EventStore, meta metadata.Service, areas *ugc.Dictionary, logger *slog.Logger) *Analyzer {
	return &Analyzer{store: store, meta: meta, areas: areas, logger: logger}
}

// Analyze inspects groups built from inputs. An event is cancelled in a group
// when a CAN record names it, when it has CAN and non-CAN records, or when the
// group names it but the input does not. Events missing from the input are
// fetched from the store; a store failure aborts the analysis.
func (a *Analyzer) Analyze(ctx context.Context, inputs []domain.HazardEvent, groups []domain.ProductSegmentGroup, mode domain.HazardMode) (Result, error) {
	known := make(map[string]domain.HazardEvent, len(inputs))
	for _, e := range inputs {
		known[e.EventID] = e
	}

	var res Result
	for _, g := range groups {
		ids := canceledIn(g, known)
		if len(ids) == 0 {
			continue
		}

		events := make([]domain.HazardEvent, 0, len(ids))
		for _, id := range ids {
			ev, ok := known[id]
			if !ok {
				fetched, err := a.store.GetHazardEvent(ctx, id, mode)
				if err != nil {
					return Result{}, domain.ExternalServiceError("hazard event store", err)
				}
				a.logger.Info("fetched automatically cancelled event", "event_id", id, "product_label", g.ProductLabel)
				known[id] = fetched
				res.Fetched = append(res.Fetched, fetched)
				ev = fetched
			}
			events = append(events, ev)
		}
		slices.SortStableFunc(events, Order)

		tab := Tab{ProductLabel: g.ProductLabel}
		for _, ev := range events {
			tab.EventIDs = append(tab.EventIDs, ev.EventID)
			tab.Fields = append(tab.Fields, a.fields(ctx, ev)...)
			if !slices.Contains(res.CanceledEventIDs, ev.EventID) {
				res.CanceledEventIDs = append(res.CanceledEventIDs, ev.EventID)
			}
		}
		res.Tabs = append(res.Tabs, tab)
	}
	return res, nil
}

// canceledIn returns the IDs of the events g cancels, in first-seen order.
func canceledIn(g domain.ProductSegmentGroup, known map[string]domain.HazardEvent) []string {
	actions := make(map[string][]domain.Action)
	var order []string
	for _, s := range g.Segments {
		for _, r := range s.Records {
			for _, id := range r.EventIDs {
				if !s.Key.HasEvent(id) {
					continue
				}
				if _, ok := actions[id]; !ok {
					order = append(order, id)
				}
				if !slices.Contains(actions[id], r.Action) {
					actions[id] = append(actions[id], r.Action)
				}
			}
		}
		for _, id := range s.Key.EventIDs {
			if _, ok := actions[id]; !ok {
				actions[id] = nil
				order = append(order, id)
			}
		}
	}

	var out []string
	for _, id := range order {
		_, input := known[id]
		if slices.Contains(actions[id], domain.ActionCan) || !input {
			out = append(out, id)
		}
	}
	return out
}

// fields resolves the ending metadata of ev and prefixes it with a label
// naming the area. The event itself is not modified.
func (a *Analyzer) fields(ctx context.Context, ev domain.HazardEvent) metadata.Set {
	ending := ev.Clone()
	ending.Status = domain.StatusEnding

	var set metadata.Set
	if a.meta != nil {
		s, err := a.meta.HazardMetadata(ctx, ending)
		if err != nil {
			a.logger.Warn("cancellation metadata unavailable", "event_id", ev.EventID, "error", err)
		} else {
			set = s
		}
	}
	area := a.areas.Phrase(a.areas.DescribeAreas(ev.UGCs()))
	return metadata.LabelAll(set, metadata.Frame("Enter information for cancellation — "+area+"."))
}

// Order sorts events for the cancellation dialog: earliest creation time
// first, then by event ID with embedded numbers compared numerically.
func Order(a, b domain.HazardEvent) int {
	if c := a.CreationTime.Compare(b.CreationTime); c != 0 {
		return c
	}
	return CompareIDs(a.EventID, b.EventID)
}

// CompareIDs compares event IDs so that "HZ-9" sorts before "HZ-10".
func CompareIDs(a, b string) int {
	for a != "" && b != "" {
		ca, ra := chunk(a)
		cb, rb := chunk(b)
		na, errA := strconv.ParseUint(ca, 10, 64)
		nb, errB := strconv.ParseUint(cb, 10, 64)
		var c int
		if errA == nil && errB == nil {
			c = cmp.Compare(na, nb)
		} else {
			c = cmp.Compare(ca, cb)
		}
		if c != 0 {
			return c
		}
		a, b = ra, rb
	}
	return cmp.Compare(len(a), len(b))
}

// chunk splits off the leading run of digits or non-digits.
func chunk(s string) (string, string) {
	digit := unicode.IsDigit(rune(s[0]))
	i := 1
	for i < len(s) && unicode.IsDigit(rune(s[i])) == digit {
		i++
	}
	return s[:i], s[i:]
}
