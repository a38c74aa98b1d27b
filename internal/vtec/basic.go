package vtec

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// expireGrace is how close to its end an event is expired rather than continued.
const expireGrace = 30 * time.Minute

// History reads what earlier issuances recorded.
type History interface {
	LastRecords(ctx context.Context, eventID string) ([]domain.VTECRecord, error)
	NextETN(ctx context.Context, officeID, phen, sig string, year int) (int, error)
}

// NewBasicFactory returns a Factory for the built-in engine. It derives
// NEW/CON/EXT/EXA/EXB/CAN/EXP from event status and issued history and
// segments identifiers that share the same event/action combination.
// Upgrades and ROU are left to the host engine.
func NewBasicFactory(history History) Factory {
	return func(ctx context.Context, req Request) (Engine, error) {
		e := &BasicEngine{req: req, history: history, etns: map[string]int{}}
		if err := e.compute(ctx); err != nil {
			return nil, err
		}
		return e, nil
	}
}

// BasicEngine is the built-in reference engine.
type BasicEngine struct {
	req      Request
	history  History
	etns     map[string]int
	segments []EngineSegment
	records  map[string][]EngineRecord
}

type target struct {
	event domain.HazardEvent
	act   domain.Action
	etn   int
}

func (t target) key() string { return t.event.EventID + "/" + string(t.act) }

func (e *BasicEngine) compute(ctx context.Context) error {
	byID := map[string][]target{}
	for _, ev := range e.req.Events {
		targets, err := e.classify(ctx, ev)
		if err != nil {
			return err
		}
		for id, t := range targets {
			byID[id] = append(byID[id], t)
		}
	}

	groups := map[string][]string{}
	members := map[string][]target{}
	for id, ts := range byID {
		sort.Slice(ts, func(i, j int) bool { return ts[i].key() < ts[j].key() })
		keys := make([]string, len(ts))
		for i, t := range ts {
			keys[i] = t.key()
		}
		k := strings.Join(keys, ",")
		groups[k] = append(groups[k], id)
		members[k] = ts
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		slices.Sort(groups[k])
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int { return strings.Compare(groups[a][0], groups[b][0]) })

	e.records = make(map[string][]EngineRecord, len(keys))
	for _, k := range keys {
		ids := groups[k]
		seg := EngineSegment{IDs: ids}
		for _, t := range members[k] {
			if !slices.Contains(seg.EventIDs, t.event.EventID) {
				seg.EventIDs = append(seg.EventIDs, t.event.EventID)
			}
			e.records[segKey(seg)] = append(e.records[segKey(seg)], e.record(t, ids))
		}
		e.segments = append(e.segments, seg)
	}
	return nil
}

func segKey(s EngineSegment) string { return strings.Join(s.IDs, ",") }

// classify returns the action taken for each identifier of ev.
func (e *BasicEngine) classify(ctx context.Context, ev domain.HazardEvent) (map[string]target, error) {
	if ev.Status == domain.StatusEnded || ev.Status == domain.StatusElapsed {
		return nil, nil
	}
	ids := ev.UGCs()
	if ev.IsPoint() && ev.PointID() != "" {
		ids = []string{ev.PointID()}
	}

	prev, err := e.history.LastRecords(ctx, ev.EventID)
	if err != nil {
		return nil, fmt.Errorf("history for event %s: %w", ev.EventID, err)
	}
	issued := len(prev) > 0 || len(ev.History.VTECCodes) > 0

	out := map[string]target{}
	if !issued {
		if ev.Status == domain.StatusEnding {
			return nil, nil
		}
		etn, err := e.allocate(ctx, ev)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			out[id] = target{ev, domain.ActionNew, etn}
		}
		return out, nil
	}

	etn, prevIDs, prevEnd := summarize(prev, ev)
	switch {
	case ev.Status == domain.StatusEnding:
		for _, id := range union(prevIDs, ids) {
			out[id] = target{ev, domain.ActionCan, etn}
		}
	case !domain.IsUFN(ev.EndTime) && !e.req.IssueTime.Before(ev.EndTime.Add(-expireGrace)):
		for _, id := range ids {
			out[id] = target{ev, domain.ActionExp, etn}
		}
	default:
		changed := !prevEnd.IsZero() && !prevEnd.Equal(ev.EndTime)
		for _, id := range ids {
			act := domain.ActionCon
			switch had := slices.Contains(prevIDs, id); {
			case had && changed:
				act = domain.ActionExt
			case !had && changed:
				act = domain.ActionExb
			case !had:
				act = domain.ActionExa
			}
			out[id] = target{ev, act, etn}
		}
		for _, id := range prevIDs {
			if !slices.Contains(ids, id) {
				out[id] = target{ev, domain.ActionCan, etn}
			}
		}
	}
	return out, nil
}

func summarize(prev []domain.VTECRecord, ev domain.HazardEvent) (int, []string, time.Time) {
	var (
		etn int
		ids []string
		end time.Time
	)
	for _, r := range prev {
		etn = r.ETN
		end = r.EndTime
		if r.Action.Terminal() {
			continue
		}
		for _, id := range r.IDs {
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	if etn == 0 && len(ev.History.ETNs) > 0 {
		etn = ev.History.ETNs[len(ev.History.ETNs)-1]
	}
	if len(prev) == 0 {
		ids = ev.UGCs()
		if ev.IsPoint() && ev.PointID() != "" {
			ids = []string{ev.PointID()}
		}
	}
	return etn, ids, end
}

func union(a, b []string) []string {
	out := slices.Clone(a)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func (e *BasicEngine) allocate(ctx context.Context, ev domain.HazardEvent) (int, error) {
	k := ev.PhenSig()
	if n, ok := e.etns[k]; ok {
		e.etns[k] = n + 1
		return n + 1, nil
	}
	n, err := e.history.NextETN(ctx, e.req.OfficeID, ev.Phen, ev.Sig, e.req.IssueTime.Year())
	if err != nil {
		return 0, fmt.Errorf("allocate etn for %s: %w", k, err)
	}
	e.etns[k] = n
	return n, nil
}

func (e *BasicEngine) record(t target, ids []string) EngineRecord {
	ev := t.event
	key := ev.HazardType()
	r := EngineRecord{
		Action:    string(t.act),
		Phen:      ev.Phen,
		Sig:       ev.Sig,
		Subtype:   ev.Subtype,
		ETN:       t.etn,
		PIL:       PILFor(ev.PhenSig(), t.act),
		Key:       key,
		Headline:  domain.HazardHeadline(key),
		StartTime: ToSeconds(ev.StartTime),
		EndTime:   ToSeconds(ev.EndTime),
		IssueTime: ToSeconds(e.req.IssueTime),
		OfficeID:  e.req.OfficeID,
		IDs:       slices.Clone(ids),
		EventIDs:  []string{ev.EventID},
	}
	if ev.IsPoint() {
		r.HVTEC = hvtecFrom(ev)
	}
	return r
}

func hvtecFrom(ev domain.HazardEvent) *EngineHVTEC {
	a := ev.Attributes
	sec := func(key string) int64 {
		ms, ok := a.Float(key)
		if !ok || ms <= 0 {
			return 0
		}
		return ToSeconds(domain.FromMillis(int64(ms)))
	}
	return &EngineHVTEC{
		PointID:        ev.PointID(),
		FloodSeverity:  a.String("floodSeverity"),
		ImmediateCause: a.String("immediateCause"),
		RiseAbove:      sec("riseAbove"),
		Crest:          sec("crest"),
		FallBelow:      sec("fallBelow"),
		FloodRecord:    a.String("floodRecord"),
	}
}

// Segments returns the computed segments in identifier order.
func (e *BasicEngine) Segments(context.Context) ([]EngineSegment, error) {
	return slices.Clone(e.segments), nil
}

// Records returns the records of seg.
func (e *BasicEngine) Records(_ context.Context, seg EngineSegment) ([]EngineRecord, error) {
	recs, ok := e.records[segKey(seg)]
	if !ok {
		return nil, fmt.Errorf("unknown segment %v", seg.IDs)
	}
	return slices.Clone(recs), nil
}

// VTECStrings renders one P-VTEC line per record, followed by its H-VTEC line
// for point records. Begin times of events already in effect render as zeros.
func (e *BasicEngine) VTECStrings(ctx context.Context, seg EngineSegment) ([]string, error) {
	recs, err := e.Records(ctx, seg)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(recs))
	for _, raw := range recs {
		r := Convert(raw)
		if r.Action != domain.ActionNew && !r.StartTime.After(e.req.IssueTime) {
			r.StartTime = time.Time{}
		}
		out = append(out, FormatPVTEC(e.req.Mode, r))
		if r.HVTEC != nil {
			out = append(out, FormatHVTEC(*r.HVTEC))
		}
	}
	return out, nil
}

// MergeResults is a no-op: issued records are persisted by the caller and
// read back through History on the next run.
func (e *BasicEngine) MergeResults(context.Context) error { return nil }
