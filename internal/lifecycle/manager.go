// Package lifecycle records what an issuance did to each hazard event and
// ends events whose last products only cancelled or expired them.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// EventWriter persists updated hazard events.
type EventWriter interface {
	SaveEvents(ctx context.Context, events []domain.HazardEvent, mode domain.HazardMode) error
}

// Entry is what one issued segment did to one event.
type Entry struct {
	EventID string
	Action  domain.Action
	ETN     int
	PIL     string
	// Expire is the segment's expire time.
	Expire time.Time
}

// Ended reports whether an event issued with codes is over: a CAN or EXP is
// present and every code is CAN, EXP or UPG. Any NEW, CON, EXA, EXT, EXB or
// ROU keeps the event alive, as does an UPG on its own.
func Ended(codes []domain.Action) bool {
	if !slices.Contains(codes, domain.ActionCan) && !slices.Contains(codes, domain.ActionExp) {
		return false
	}
	for _, c := range codes {
		if !c.Terminal() {
			return false
		}
	}
	return true
}

// SetProductInformation applies one entry to ev: the expiration time
// tightens to the segment expire time, the issue time is set and the
// action, ETN and PIL are appended to the event history.
func SetProductInformation(ev *domain.HazardEvent, e Entry, issue time.Time) {
	h := &ev.History
	if !e.Expire.IsZero() && (h.ExpirationTime.IsZero() || e.Expire.Before(h.ExpirationTime)) {
		h.ExpirationTime = e.Expire
	}
	h.IssueTime = issue
	h.VTECCodes = append(h.VTECCodes, e.Action)
	h.ETNs = append(h.ETNs, e.ETN)
	h.PILs = append(h.PILs, e.PIL)
}

// Result is the outcome of Apply.
type Result struct {
	Events  []domain.HazardEvent
	Ended   []string
	Updated []string
}

// Manager applies issuance results to hazard events.
type Manager struct {
	store  EventWriter
	logger *slog.Logger
}

// NewManager returns a Manager. store may be nil, in which case the updated
// events are only returned.
func NewManager(store EventWriter, logger *slog.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// Apply updates copies of events with entries and persists them. Events
// with no entry are returned unchanged. Only the codes of this issuance
// decide whether an event ends.
func (m *Manager) Apply(ctx context.Context, events []domain.HazardEvent, entries []Entry, issue time.Time, mode domain.HazardMode) (Result, error) {
	byEvent := make(map[string][]Entry)
	for _, e := range entries {
		byEvent[e.EventID] = append(byEvent[e.EventID], e)
	}

	res := Result{Events: make([]domain.HazardEvent, 0, len(events))}
	var changed []domain.HazardEvent
	for _, ev := range events {
		es, ok := byEvent[ev.EventID]
		if !ok {
			res.Events = append(res.Events, ev)
			continue
		}
		out := ev.Clone()
		codes := make([]domain.Action, 0, len(es))
		for _, e := range es {
			SetProductInformation(&out, e, issue)
			codes = append(codes, e.Action)
		}
		if Ended(codes) {
			out.Status = domain.StatusEnded
			res.Ended = append(res.Ended, out.EventID)
			m.logger.Info("hazard event ended", "event_id", out.EventID, "codes", codes)
		}
		res.Updated = append(res.Updated, out.EventID)
		res.Events = append(res.Events, out)
		changed = append(changed, out)
	}

	if m.store != nil && len(changed) > 0 {
		if err := m.store.SaveEvents(ctx, changed, mode); err != nil {
			return Result{}, domain.ExternalServiceError("hazard event store", fmt.Errorf("save events: %w", err))
		}
	}
	return res, nil
}
