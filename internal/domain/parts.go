package domain

import (
	"encoding/json"
	"fmt"
)

// PartKind is the node type of a product-parts recipe.
type PartKind int

const (
	// PartLeaf writes one key into the dictionary of the current scope.
	PartLeaf PartKind = iota
	// PartSegments evaluates its children once per segment of the product.
	PartSegments
	// PartSections evaluates its children once per section of the current segment.
	PartSections
)

// Part is a node of a product-parts recipe.
type Part struct {
	Kind  PartKind
	Name  string
	Parts []Part
}

// Leaf returns a leaf part.
func Leaf(name string) Part { return Part{Kind: PartLeaf, Name: name} }

// SegmentsPart returns the per-segment container.
func SegmentsPart(parts ...Part) Part {
	return Part{Kind: PartSegments, Name: "segments", Parts: parts}
}

// SectionsPart returns the per-section container.
func SectionsPart(parts ...Part) Part {
	return Part{Kind: PartSections, Name: "sections", Parts: parts}
}

// Leaves returns leaf parts for each name.
func Leaves(names ...string) []Part {
	out := make([]Part, len(names))
	for i, n := range names {
		out[i] = Leaf(n)
	}
	return out
}

// MarshalJSON renders a leaf as its name and a container as {"name": [children]}.
func (p Part) MarshalJSON() ([]byte, error) {
	if p.Kind == PartLeaf {
		return json.Marshal(p.Name)
	}
	return json.Marshal(map[string][]Part{p.Name: p.Parts})
}

// UnmarshalJSON accepts the form produced by MarshalJSON.
func (p *Part) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*p = Leaf(name)
		return nil
	}
	var node map[string][]Part
	if err := json.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("decode product part: %w", err)
	}
	if len(node) != 1 {
		return fmt.Errorf("decode product part: container must have exactly one name, got %d", len(node))
	}
	for name, children := range node {
		switch name {
		case "segments":
			*p = SegmentsPart(children...)
		case "sections":
			*p = SectionsPart(children...)
		default:
			return fmt.Errorf("decode product part: unknown container %q", name)
		}
	}
	return nil
}
