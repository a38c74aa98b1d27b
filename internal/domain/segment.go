package domain

import (
	"slices"
	"strings"
)

// SegmentKey identifies a segment by its frozen identifier set (UGCs or point
// IDs) and its frozen eventID set. Both lists are sorted and deduplicated.
type SegmentKey struct {
	IDs      []string `json:"ids"`
	EventIDs []string `json:"eventIDs"`
}

// NewSegmentKey builds a key from unordered, possibly duplicated inputs.
func NewSegmentKey(ids, eventIDs []string) SegmentKey {
	return SegmentKey{IDs: sortedUnique(ids), EventIDs: sortedUnique(eventIDs)}
}

// String renders the key as "id,id|event,event".
func (k SegmentKey) String() string {
	return strings.Join(k.IDs, ",") + "|" + strings.Join(k.EventIDs, ",")
}

// HasEvent reports whether eventID belongs to the segment.
func (k SegmentKey) HasEvent(eventID string) bool {
	_, found := slices.BinarySearch(k.EventIDs, eventID)
	return found
}

// HasID reports whether the identifier belongs to the segment.
func (k SegmentKey) HasID(id string) bool {
	_, found := slices.BinarySearch(k.IDs, id)
	return found
}

// Segment is what the VTEC engine reports for one segment, with times already
// converted from engine seconds.
type Segment struct {
	Key         SegmentKey   `json:"key"`
	GeoType     GeoType      `json:"geoType"`
	Records     []VTECRecord `json:"vtecRecords"`
	VTECStrings []string     `json:"vtecStrings"`
}

// Actions returns the distinct action codes of the segment's records in order.
func (s Segment) Actions() []Action {
	var out []Action
	for _, r := range s.Records {
		if !slices.Contains(out, r.Action) {
			out = append(out, r.Action)
		}
	}
	return out
}

// ProductLabel is the structured identity of a product within one generation.
type ProductLabel struct {
	ProductID    string  `json:"productID"`
	GeoType      GeoType `json:"geoType"`
	AdvisoryKind string  `json:"advisoryKind,omitempty"`
	EventID      string  `json:"eventID,omitempty"`
	HazardType   string  `json:"hazardType,omitempty"`
}

// String renders "<productID>_<geoType>[_advisoryKind][_eventID][_hazardType]".
func (l ProductLabel) String() string {
	parts := []string{l.ProductID, string(l.GeoType)}
	for _, p := range []string{l.AdvisoryKind, l.EventID, l.HazardType} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_")
}

// ProductSegmentGroup is the set of segments that become one output product.
type ProductSegmentGroup struct {
	ProductID     string       `json:"productID"`
	ProductName   string       `json:"productName"`
	GeoType       GeoType      `json:"geoType"`
	MapType       string       `json:"mapType"`
	Segmented     bool         `json:"segmented"`
	Segments      []Segment    `json:"segments"`
	ETN           int          `json:"etn,omitempty"`
	FormatPolygon bool         `json:"formatPolygon"`
	Actions       []Action     `json:"actions"`
	Label         ProductLabel `json:"label"`
	ProductLabel  string       `json:"productLabel"`
	Parts         []Part       `json:"productParts"`
}

// EventIDs returns every eventID in the group's segments, in first-seen order.
func (g ProductSegmentGroup) EventIDs() []string {
	var out []string
	for _, s := range g.Segments {
		for _, id := range s.Key.EventIDs {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}

func sortedUnique(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
