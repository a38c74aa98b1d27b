package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Provenance ties a writable dictionary field back to the events and segment
// that produced it.
type Provenance struct {
	EventIDs   []string `json:"eventIDs"`
	SegmentKey string   `json:"segment,omitempty"`
	Editable   bool     `json:"editable"`
}

// Dict is an insertion-ordered string-keyed mapping. Values are plain JSON
// values, nested *Dict, or []*Dict.
type Dict struct {
	keys   []string
	values map[string]any
	prov   map[string]Provenance
}

// NewDict returns an empty dictionary.
func NewDict() *Dict {
	return &Dict{values: make(map[string]any), prov: make(map[string]Provenance)}
}

// Set stores v under key, keeping the original position of an existing key.
func (d *Dict) Set(key string, v any) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// SetEditable stores v and attaches provenance to the key.
func (d *Dict) SetEditable(key string, v any, p Provenance) {
	d.Set(key, v)
	p.EventIDs = slices.Clone(p.EventIDs)
	d.prov[key] = p
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// String returns the value under key when it is a string.
func (d *Dict) String(key string) string {
	s, _ := d.values[key].(string)
	return s
}

// Dict returns the nested dictionary under key.
func (d *Dict) Dict(key string) *Dict {
	nd, _ := d.values[key].(*Dict)
	return nd
}

// List returns the nested dictionary list under key.
func (d *Dict) List(key string) []*Dict {
	l, _ := d.values[key].([]*Dict)
	return l
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string { return slices.Clone(d.keys) }

// Len returns the number of keys.
func (d *Dict) Len() int { return len(d.keys) }

// Provenance returns the provenance attached to key.
func (d *Dict) Provenance(key string) (Provenance, bool) {
	p, ok := d.prov[key]
	return p, ok
}

// EditableEntry locates a writable field by its path within a product dictionary.
type EditableEntry struct {
	Path string `json:"path"`
	Provenance
}

// Editable walks the dictionary depth first and returns every field carrying
// provenance, with paths like "segments[0].sections[1].firstBullet".
func (d *Dict) Editable() []EditableEntry {
	var out []EditableEntry
	d.walk("", &out)
	return out
}

func (d *Dict) walk(prefix string, out *[]EditableEntry) {
	for _, k := range d.keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if p, ok := d.prov[k]; ok {
			*out = append(*out, EditableEntry{Path: path, Provenance: p})
		}
		switch v := d.values[k].(type) {
		case *Dict:
			v.walk(path, out)
		case []*Dict:
			for i, child := range v {
				child.walk(fmt.Sprintf("%s[%d]", path, i), out)
			}
		}
	}
}

// MarshalJSON writes the keys in insertion order.
func (d *Dict) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(d.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
