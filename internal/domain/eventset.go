package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// HazardMode is the session mode of the host workstation.
type HazardMode string

const (
	ModePractice    HazardMode = "PRACTICE"
	ModeOperational HazardMode = "OPERATIONAL"
	ModeTest        HazardMode = "TEST"
)

type modeKey struct{}

// WithHazardMode attaches the session mode to ctx for stores that keep
// practice and operational data apart.
func WithHazardMode(ctx context.Context, m HazardMode) context.Context {
	return context.WithValue(ctx, modeKey{}, m)
}

// HazardModeFrom returns the mode attached to ctx, or operational.
func HazardModeFrom(ctx context.Context) HazardMode {
	if m, ok := ctx.Value(modeKey{}).(HazardMode); ok && m != "" {
		return m
	}
	return ModeOperational
}

// Session carries the session dictionary of an event set.
type Session struct {
	TestMode         bool
	ExperimentalMode bool
	HazardMode       HazardMode
}

// EventSetAttributes are the generation inputs that accompany the events.
type EventSetAttributes struct {
	IssueFlag        bool
	CurrentTime      time.Time
	SiteID           string
	BackupSiteID     string
	VTECMode         string
	VTECTestMode     bool
	Formats          []string
	OverviewHeadline string
	Session          Session
}

// EventSet is one generation request.
type EventSet struct {
	Events     []HazardEvent
	Attributes EventSetAttributes
}

// IssueTime returns the request's current time, or the package clock when unset.
func (s EventSet) IssueTime() time.Time {
	if s.Attributes.CurrentTime.IsZero() {
		return clock.Now().UTC()
	}
	return s.Attributes.CurrentTime.UTC()
}

// VTECMode returns the explicit VTEC mode character or the one implied by the session.
func (s EventSet) VTECMode() string {
	a := s.Attributes
	switch {
	case a.VTECMode != "":
		return a.VTECMode
	case a.VTECTestMode, a.Session.TestMode, a.Session.HazardMode == ModeTest:
		return "T"
	case a.Session.ExperimentalMode:
		return "E"
	default:
		return "O"
	}
}

// Event returns the event with the given ID.
func (s EventSet) Event(eventID string) (HazardEvent, bool) {
	for _, e := range s.Events {
		if e.EventID == eventID {
			return e, true
		}
	}
	return HazardEvent{}, false
}

type sessionWire struct {
	TestMode         int        `json:"testMode"`
	ExperimentalMode int        `json:"experimentalMode"`
	HazardMode       HazardMode `json:"hazardMode,omitempty"`
}

type inputFieldsWire struct {
	OverviewHeadline string `json:"overviewHeadline,omitempty"`
}

type attributesWire struct {
	IssueFlag    bool            `json:"issueFlag"`
	CurrentTime  int64           `json:"currentTime"`
	SiteID       string          `json:"siteID"`
	BackupSiteID string          `json:"backupSiteID,omitempty"`
	VTECMode     *string         `json:"vtecMode"`
	VTECTestMode bool            `json:"vtecTestMode"`
	Formats      []string        `json:"formats,omitempty"`
	InputFields  inputFieldsWire `json:"inputFields"`
	SessionDict  sessionWire     `json:"sessionDict"`
}

// MarshalJSON renders the host attribute mapping with epoch-millisecond times.
func (a EventSetAttributes) MarshalJSON() ([]byte, error) {
	w := attributesWire{
		IssueFlag:    a.IssueFlag,
		CurrentTime:  Millis(a.CurrentTime),
		SiteID:       a.SiteID,
		BackupSiteID: a.BackupSiteID,
		VTECTestMode: a.VTECTestMode,
		Formats:      a.Formats,
		InputFields:  inputFieldsWire{OverviewHeadline: a.OverviewHeadline},
		SessionDict: sessionWire{
			TestMode:         boolInt(a.Session.TestMode),
			ExperimentalMode: boolInt(a.Session.ExperimentalMode),
			HazardMode:       a.Session.HazardMode,
		},
	}
	if a.VTECMode != "" {
		w.VTECMode = &a.VTECMode
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the host attribute mapping.
func (a *EventSetAttributes) UnmarshalJSON(data []byte) error {
	var w attributesWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode event set attributes: %w", err)
	}
	*a = EventSetAttributes{
		IssueFlag:        w.IssueFlag,
		CurrentTime:      FromMillis(w.CurrentTime),
		SiteID:           w.SiteID,
		BackupSiteID:     w.BackupSiteID,
		VTECTestMode:     w.VTECTestMode,
		Formats:          w.Formats,
		OverviewHeadline: w.InputFields.OverviewHeadline,
		Session: Session{
			TestMode:         w.SessionDict.TestMode != 0,
			ExperimentalMode: w.SessionDict.ExperimentalMode != 0,
			HazardMode:       w.SessionDict.HazardMode,
		},
	}
	if w.VTECMode != nil {
		a.VTECMode = *w.VTECMode
	}
	return nil
}

type eventSetWire struct {
	Events     []HazardEvent      `json:"events"`
	Attributes EventSetAttributes `json:"attributes"`
}

// MarshalJSON renders {"events": [...], "attributes": {...}}.
func (s EventSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventSetWire(s))
}

// UnmarshalJSON accepts {"events": [...], "attributes": {...}}.
func (s *EventSet) UnmarshalJSON(data []byte) error {
	var w eventSetWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode event set: %w", err)
	}
	*s = EventSet(w)
	return nil
}

type hazardEventWire struct {
	EventID        string     `json:"eventID"`
	DisplayEventID string     `json:"displayEventID,omitempty"`
	Status         Status     `json:"status"`
	Phen           string     `json:"phen"`
	Sig            string     `json:"sig"`
	Subtype        string     `json:"subType,omitempty"`
	Geometry       Geometry   `json:"geometry"`
	GeoType        GeoType    `json:"geoType"`
	StartTime      int64      `json:"startTime"`
	EndTime        int64      `json:"endTime"`
	CreationTime   int64      `json:"creationTime,omitempty"`
	Attributes     Attributes `json:"attributes,omitempty"`
	VTECCodes      []Action   `json:"vtecCodes,omitempty"`
	ETNs           []int      `json:"etns,omitempty"`
	PILs           []string   `json:"pils,omitempty"`
	ExpirationTime int64      `json:"expirationTime,omitempty"`
	IssueTime      int64      `json:"issueTime,omitempty"`
}

// MarshalJSON renders the event with epoch-millisecond times.
func (e HazardEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(hazardEventWire{
		EventID:        e.EventID,
		DisplayEventID: e.DisplayEventID,
		Status:         e.Status,
		Phen:           e.Phen,
		Sig:            e.Sig,
		Subtype:        e.Subtype,
		Geometry:       e.Geometry,
		GeoType:        e.GeoType,
		StartTime:      Millis(e.StartTime),
		EndTime:        Millis(e.EndTime),
		CreationTime:   Millis(e.CreationTime),
		Attributes:     e.Attributes,
		VTECCodes:      e.History.VTECCodes,
		ETNs:           e.History.ETNs,
		PILs:           e.History.PILs,
		ExpirationTime: Millis(e.History.ExpirationTime),
		IssueTime:      Millis(e.History.IssueTime),
	})
}

// UnmarshalJSON accepts the epoch-millisecond wire form.
func (e *HazardEvent) UnmarshalJSON(data []byte) error {
	var w hazardEventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode hazard event: %w", err)
	}
	*e = HazardEvent{
		EventID:        w.EventID,
		DisplayEventID: w.DisplayEventID,
		Status:         w.Status,
		Phen:           w.Phen,
		Sig:            w.Sig,
		Subtype:        w.Subtype,
		Geometry:       w.Geometry,
		GeoType:        w.GeoType,
		StartTime:      FromMillis(w.StartTime),
		EndTime:        FromMillis(w.EndTime),
		CreationTime:   FromMillis(w.CreationTime),
		Attributes:     w.Attributes,
		History: IssuanceHistory{
			VTECCodes:      w.VTECCodes,
			ETNs:           w.ETNs,
			PILs:           w.PILs,
			ExpirationTime: FromMillis(w.ExpirationTime),
			IssueTime:      FromMillis(w.IssueTime),
		},
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
