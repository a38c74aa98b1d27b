package domain

import (
	"slices"
	"time"
)

// Action is a VTEC action code.
type Action string

const (
	ActionNew Action = "NEW"
	ActionCon Action = "CON"
	ActionExt Action = "EXT"
	ActionExa Action = "EXA"
	ActionExb Action = "EXB"
	ActionCan Action = "CAN"
	ActionExp Action = "EXP"
	ActionUpg Action = "UPG"
	ActionRou Action = "ROU"
)

// Terminal reports whether the action ends the hazard in the segment (CAN, EXP, UPG).
func (a Action) Terminal() bool {
	return a == ActionCan || a == ActionExp || a == ActionUpg
}

// UFNSeconds is the epoch-seconds sentinel for "until further notice" end times.
// Any end time at or past it is open-ended.
const UFNSeconds int64 = 1<<31 - 1

// UFNTime is the sentinel end time as a time.Time.
var UFNTime = time.Unix(UFNSeconds, 0).UTC()

// IsUFN reports whether t encodes "until further notice".
func IsUFN(t time.Time) bool {
	return !t.IsZero() && t.Unix() >= UFNSeconds
}

// HVTEC holds the hydrologic VTEC fields of a point flood record.
type HVTEC struct {
	PointID        string    `json:"pointID"`
	FloodSeverity  string    `json:"floodSeverity"`
	ImmediateCause string    `json:"immediateCause"`
	RiseAbove      time.Time `json:"riseAbove"`
	Crest          time.Time `json:"crest"`
	FallBelow      time.Time `json:"fallBelow"`
	FloodRecord    string    `json:"floodRecord"`
}

// VTECRecord is one VTEC entry for a segment. All times are UTC.
type VTECRecord struct {
	Action     Action    `json:"act"`
	Phen       string    `json:"phen"`
	Sig        string    `json:"sig"`
	Subtype    string    `json:"subtype,omitempty"`
	ETN        int       `json:"etn"`
	PIL        string    `json:"pil"`
	Key        string    `json:"key"`
	Headline   string    `json:"hdln"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	IssueTime  time.Time `json:"issueTime"`
	OfficeID   string    `json:"officeid"`
	IDs        []string  `json:"id"`
	EventIDs   []string  `json:"eventIDs"`
	VTECString string    `json:"vtecstr,omitempty"`
	HVTEC      *HVTEC    `json:"hvtec,omitempty"`
}

// PhenSig returns "phen.sig".
func (r VTECRecord) PhenSig() string {
	return r.Phen + "." + r.Sig
}

// HasEvent reports whether the record applies to eventID.
func (r VTECRecord) HasEvent(eventID string) bool {
	return slices.Contains(r.EventIDs, eventID)
}

// UFN reports whether the record is open-ended.
func (r VTECRecord) UFN() bool {
	return IsUFN(r.EndTime)
}
