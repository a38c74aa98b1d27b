package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// ErrUnknownPart is returned for a recipe name no handler is registered for.
var ErrUnknownPart = errors.New("unknown product part")

// Request is one product to assemble.
type Request struct {
	Group      domain.ProductSegmentGroup
	Events     map[string]domain.HazardEvent
	Issue      time.Time
	Attributes domain.EventSetAttributes
}

// Product is an assembled product dictionary together with the segment state
// it was built from.
type Product struct {
	Group    domain.ProductSegmentGroup
	Segments []*SegmentState
	Dict     *domain.Dict
	issue    time.Time
	attrs    domain.EventSetAttributes
}

// Label returns the product label.
func (p *Product) Label() string { return p.Group.ProductLabel }

// level is the scope a recipe node is evaluated in.
type level string

const (
	levelProduct level = "product"
	levelSegment level = "segment"
	levelSection level = "section"
)

// scope is the evaluation cursor of the recipe interpreter.
type scope struct {
	product *Product
	seg     *SegmentState
	index   int
}

func (s scope) section() Section         { return s.seg.Sections[s.index] }
func (s scope) sectionText() sectionText { return s.seg.texts[s.index] }

// handler writes one key into the dictionary of its scope.
type handler func(b *Builder, s scope, d *domain.Dict)

// Build assembles req into a product dictionary by evaluating the group's
// product-parts recipe. Segments keep the order of the group.
func (b *Builder) Build(ctx context.Context, req Request) (*Product, error) {
	p := &Product{Group: req.Group, issue: req.Issue.UTC(), attrs: req.Attributes}
	for _, seg := range req.Group.Segments {
		st, err := b.BuildSegment(ctx, req.Group, seg, req.Events, p.issue)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", req.Group.ProductLabel, err)
		}
		p.Segments = append(p.Segments, st)
	}

	d := domain.NewDict()
	if err := b.eval(req.Group.Parts, levelProduct, scope{product: p}, d); err != nil {
		return nil, fmt.Errorf("product %s: %w", req.Group.ProductLabel, err)
	}
	d.Set("productParts", req.Group.Parts)
	d.Set("editableEntries", d.Editable())
	p.Dict = d
	return p, nil
}

func (b *Builder) eval(parts []domain.Part, lvl level, s scope, d *domain.Dict) error {
	for _, part := range parts {
		switch part.Kind {
		case domain.PartLeaf:
			h, ok := registry[lvl][part.Name]
			if !ok {
				return fmt.Errorf("%w: %q at %s level", ErrUnknownPart, part.Name, lvl)
			}
			h(b, s, d)

		case domain.PartSegments:
			if lvl != levelProduct {
				return fmt.Errorf("%w: segments inside %s", ErrUnknownPart, lvl)
			}
			list := make([]*domain.Dict, 0, len(s.product.Segments))
			for _, seg := range s.product.Segments {
				sd := domain.NewDict()
				if err := b.eval(part.Parts, levelSegment, scope{product: s.product, seg: seg}, sd); err != nil {
					return err
				}
				list = append(list, sd)
			}
			d.Set(part.Name, list)

		case domain.PartSections:
			if lvl != levelSegment {
				return fmt.Errorf("%w: sections inside %s", ErrUnknownPart, lvl)
			}
			list := make([]*domain.Dict, 0, len(s.seg.Sections))
			for i := range s.seg.Sections {
				sd := domain.NewDict()
				if err := b.eval(part.Parts, levelSection, scope{product: s.product, seg: s.seg, index: i}, sd); err != nil {
					return err
				}
				list = append(list, sd)
			}
			d.Set(part.Name, list)

		default:
			return fmt.Errorf("%w: kind %d", ErrUnknownPart, part.Kind)
		}
	}
	return nil
}

// Handles reports whether name is a known leaf at the product, segment or
// section level.
func Handles(name string) bool {
	for _, m := range registry {
		if _, ok := m[name]; ok {
			return true
		}
	}
	return false
}
