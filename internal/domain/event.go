package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Status is the lifecycle state of a hazard event.
type Status string

const (
	StatusPending  Status = "pending"
	StatusProposed Status = "proposed"
	StatusIssued   Status = "issued"
	StatusEnding   Status = "ending"
	StatusEnded    Status = "ended"
	StatusElapsed  Status = "elapsed"
)

// GeoType distinguishes area, point, and line hazards.
type GeoType string

const (
	GeoArea  GeoType = "area"
	GeoPoint GeoType = "point"
	GeoLine  GeoType = "line"
)

// GeometryKind names the shape held by a Geometry.
type GeometryKind string

const (
	GeometryPolygon    GeometryKind = "polygon"
	GeometryLine       GeometryKind = "line"
	GeometryPoint      GeometryKind = "point"
	GeometryCollection GeometryKind = "collection"
)

// LatLon is a WGS-84 coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geometry is a polygon, line, point, or a collection of those.
type Geometry struct {
	Kind    GeometryKind `json:"kind,omitempty"`
	Points  []LatLon     `json:"points,omitempty"`
	Members []Geometry   `json:"members,omitempty"`
}

// Polygons returns every polygon ring in the geometry, descending into collections.
func (g Geometry) Polygons() [][]LatLon {
	switch g.Kind {
	case GeometryPolygon:
		if len(g.Points) == 0 {
			return nil
		}
		return [][]LatLon{g.Points}
	case GeometryCollection:
		var out [][]LatLon
		for _, m := range g.Members {
			out = append(out, m.Polygons()...)
		}
		return out
	default:
		return nil
	}
}

// Attributes is the free-form attribute map of a hazard event.
type Attributes map[string]any

// Has reports whether key is present with a non-nil value.
func (a Attributes) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns the attribute as a string. Numbers and booleans are formatted;
// missing values yield "".
func (a Attributes) String(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Strings returns a list attribute. A scalar string is returned as a one-element list.
func (a Attributes) Strings(key string) []string {
	switch v := a[key].(type) {
	case nil:
		return nil
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return []string{fmt.Sprint(v)}
	}
}

// IsList reports whether the attribute holds a list value.
func (a Attributes) IsList(key string) bool {
	switch a[key].(type) {
	case []string, []any:
		return true
	default:
		return false
	}
}

// Bool returns a boolean attribute; numeric 0/1 and "true"/"false" strings are accepted.
func (a Attributes) Bool(key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// Float returns a numeric attribute and whether it was present and numeric.
func (a Attributes) Float(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Clone returns a shallow copy with list values duplicated.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		switch lv := v.(type) {
		case []string:
			out[k] = slices.Clone(lv)
		case []any:
			out[k] = slices.Clone(lv)
		default:
			out[k] = v
		}
	}
	return out
}

// IssuanceHistory accumulates what each issued product did to an event.
type IssuanceHistory struct {
	VTECCodes      []Action
	ETNs           []int
	PILs           []string
	ExpirationTime time.Time
	IssueTime      time.Time
}

// HazardEvent is a single weather or hydrologic hazard.
type HazardEvent struct {
	EventID        string
	DisplayEventID string
	Status         Status
	Phen           string
	Sig            string
	Subtype        string
	Geometry       Geometry
	GeoType        GeoType
	StartTime      time.Time
	EndTime        time.Time
	CreationTime   time.Time
	Attributes     Attributes
	History        IssuanceHistory
}

// PhenSig returns "phen.sig", e.g. "FF.W".
func (e HazardEvent) PhenSig() string {
	return e.Phen + "." + e.Sig
}

// HazardType returns "phen.sig[.subtype]".
func (e HazardEvent) HazardType() string {
	if e.Subtype == "" {
		return e.PhenSig()
	}
	return e.PhenSig() + "." + e.Subtype
}

// UGCs returns the event's geographic codes.
func (e HazardEvent) UGCs() []string {
	return e.Attributes.Strings("ugcs")
}

// PointID returns the river forecast point identifier for point hazards.
func (e HazardEvent) PointID() string {
	return e.Attributes.String("pointID")
}

// IsPoint reports whether the event is a point hazard.
func (e HazardEvent) IsPoint() bool {
	return e.GeoType == GeoPoint
}

// Clone returns a copy that shares no mutable state with e.
func (e HazardEvent) Clone() HazardEvent {
	out := e
	out.Attributes = e.Attributes.Clone()
	out.Geometry = cloneGeometry(e.Geometry)
	out.History.VTECCodes = slices.Clone(e.History.VTECCodes)
	out.History.ETNs = slices.Clone(e.History.ETNs)
	out.History.PILs = slices.Clone(e.History.PILs)
	return out
}

func cloneGeometry(g Geometry) Geometry {
	out := Geometry{Kind: g.Kind, Points: slices.Clone(g.Points)}
	for _, m := range g.Members {
		out.Members = append(out.Members, cloneGeometry(m))
	}
	return out
}

// Millis converts t to epoch milliseconds; the zero time maps to 0.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to a UTC time; 0 maps to the zero time.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
