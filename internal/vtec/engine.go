// Package vtec coordinates the VTEC engine: it runs one engine per geometry
// family, converts engine seconds to time.Time once, and renders P-VTEC and
// H-VTEC lines.
package vtec

import (
	"context"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// Request is what an engine is built from.
type Request struct {
	Events    []domain.HazardEvent
	GeoType   domain.GeoType
	IssueTime time.Time
	SiteID    string
	OfficeID  string
	Mode      string
	Issue     bool
}

// EngineSegment is a segment as the engine reports it.
type EngineSegment struct {
	IDs      []string
	EventIDs []string
}

// EngineHVTEC is the hydrologic part of an engine record, in epoch seconds.
type EngineHVTEC struct {
	PointID        string `json:"pointID"`
	FloodSeverity  string `json:"floodSeverity"`
	ImmediateCause string `json:"immediateCause"`
	RiseAbove      int64  `json:"riseAbove"`
	Crest          int64  `json:"crest"`
	FallBelow      int64  `json:"fallBelow"`
	FloodRecord    string `json:"floodRecord"`
}

// EngineRecord is a VTEC record as the engine reports it. Times are epoch seconds.
type EngineRecord struct {
	Action    string       `json:"act"`
	Phen      string       `json:"phen"`
	Sig       string       `json:"sig"`
	Subtype   string       `json:"subtype,omitempty"`
	ETN       int          `json:"etn"`
	PIL       string       `json:"pil"`
	Key       string       `json:"key"`
	Headline  string       `json:"hdln"`
	StartTime int64        `json:"startTime"`
	EndTime   int64        `json:"endTime"`
	IssueTime int64        `json:"issueTime"`
	OfficeID  string       `json:"officeid"`
	IDs       []string     `json:"id"`
	EventIDs  []string     `json:"eventIDs"`
	HVTEC     *EngineHVTEC `json:"hvtec,omitempty"`
}

// Engine is the VTEC engine seam. Implementations work in epoch seconds.
type Engine interface {
	Segments(ctx context.Context) ([]EngineSegment, error)
	Records(ctx context.Context, seg EngineSegment) ([]EngineRecord, error)
	VTECStrings(ctx context.Context, seg EngineSegment) ([]string, error)
	// MergeResults commits the engine's state after a successful issuance.
	MergeResults(ctx context.Context) error
}

// Factory builds an engine for one geometry family of an event set.
type Factory func(ctx context.Context, req Request) (Engine, error)

// FromSeconds converts engine seconds. Zero stays the zero time and values at
// or past the UFN sentinel become domain.UFNTime.
func FromSeconds(s int64) time.Time {
	switch {
	case s == 0:
		return time.Time{}
	case s >= domain.UFNSeconds:
		return domain.UFNTime
	default:
		return time.Unix(s, 0).UTC()
	}
}

// ToSeconds is the inverse of FromSeconds.
func ToSeconds(t time.Time) int64 {
	switch {
	case t.IsZero():
		return 0
	case domain.IsUFN(t):
		return domain.UFNSeconds
	default:
		return t.Unix()
	}
}

// Convert turns an engine record into a domain record.
func Convert(r EngineRecord) domain.VTECRecord {
	out := domain.VTECRecord{
		Action:    domain.Action(r.Action),
		Phen:      r.Phen,
		Sig:       r.Sig,
		Subtype:   r.Subtype,
		ETN:       r.ETN,
		PIL:       r.PIL,
		Key:       r.Key,
		Headline:  r.Headline,
		StartTime: FromSeconds(r.StartTime),
		EndTime:   FromSeconds(r.EndTime),
		IssueTime: FromSeconds(r.IssueTime),
		OfficeID:  r.OfficeID,
		IDs:       append([]string(nil), r.IDs...),
		EventIDs:  append([]string(nil), r.EventIDs...),
	}
	if out.Key == "" {
		out.Key = out.PhenSig()
		if out.Subtype != "" {
			out.Key += "." + out.Subtype
		}
	}
	if r.HVTEC != nil {
		out.HVTEC = &domain.HVTEC{
			PointID:        r.HVTEC.PointID,
			FloodSeverity:  r.HVTEC.FloodSeverity,
			ImmediateCause: r.HVTEC.ImmediateCause,
			RiseAbove:      FromSeconds(r.HVTEC.RiseAbove),
			Crest:          FromSeconds(r.HVTEC.Crest),
			FallBelow:      FromSeconds(r.HVTEC.FallBelow),
			FloodRecord:    r.HVTEC.FloodRecord,
		}
	}
	return out
}
