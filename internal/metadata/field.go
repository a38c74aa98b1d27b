// Package metadata models the megawidget field descriptors that drive hazard
// dialogs and resolves choices into product phrases.
package metadata

import (
	"errors"
	"fmt"
)

// ErrInvalidField reports a descriptor that does not match its field type.
var ErrInvalidField = errors.New("invalid metadata field")

// FieldType names a megawidget kind.
type FieldType string

const (
	ComboBox           FieldType = "ComboBox"
	RadioButtons       FieldType = "RadioButtons"
	CheckBox           FieldType = "CheckBox"
	CheckBoxes         FieldType = "CheckBoxes"
	DetailedComboBox   FieldType = "DetailedComboBox"
	BoundedListBuilder FieldType = "BoundedListBuilder"
	IntegerSpinner     FieldType = "IntegerSpinner"
	FractionSpinner    FieldType = "FractionSpinner"
	Text               FieldType = "Text"
	TimeScale          FieldType = "TimeScale"
	Graph              FieldType = "Graph"
	Table              FieldType = "Table"
	HiddenField        FieldType = "HiddenField"
	Group              FieldType = "Group"
	Composite          FieldType = "Composite"
	ExpandBar          FieldType = "ExpandBar"
	Button             FieldType = "Button"
	Label              FieldType = "Label"
)

type kind int

const (
	kindChoice kind = iota
	kindValue
	kindContainer
	kindControl
)

var kinds = map[FieldType]kind{
	ComboBox: kindChoice, RadioButtons: kindChoice, CheckBox: kindChoice, CheckBoxes: kindChoice,
	DetailedComboBox: kindChoice, BoundedListBuilder: kindChoice,
	IntegerSpinner: kindValue, FractionSpinner: kindValue, Text: kindValue, TimeScale: kindValue,
	Graph: kindValue, Table: kindValue, HiddenField: kindValue,
	Group: kindContainer, Composite: kindContainer, ExpandBar: kindContainer,
	Button: kindControl, Label: kindControl,
}

// Base holds the keys common to every descriptor.
type Base struct {
	FieldName         string
	FieldType         FieldType
	Label             string
	Editable          bool
	RefreshMetadata   bool
	ModifyRecommender bool
	// Extra keeps keys not modelled explicitly so they survive a round trip.
	Extra map[string]any
}

// Field is one descriptor variant.
type Field interface {
	Name() string
	Type() FieldType
	Accept(v Visitor)
	// Map renders the descriptor back into its host mapping form.
	Map() map[string]any
	base() *Base
}

// Visitor is called with the concrete variant of a Field.
type Visitor interface {
	VisitChoice(f *ChoiceField)
	VisitValue(f *ValueField)
	VisitContainer(f *ContainerField)
	VisitControl(f *ControlField)
}

// Choice is one selectable entry of a choice field.
type Choice struct {
	Identifier    string
	DisplayString string
	ProductString string
	DetailFields  []Field
}

// ChoiceField is a ComboBox, RadioButtons, CheckBox(es), DetailedComboBox or
// BoundedListBuilder.
type ChoiceField struct {
	Base
	Choices []Choice
	Values  any
}

// ValueField holds a typed value: spinners, text, time scales, graphs, tables
// and hidden fields.
type ValueField struct {
	Base
	Values any
}

// ContainerField groups child fields: Group, Composite, ExpandBar.
type ContainerField struct {
	Base
	Fields []Field
}

// ControlField is a Button or Label.
type ControlField struct {
	Base
}

func (b *Base) Name() string    { return b.FieldName }
func (b *Base) Type() FieldType { return b.FieldType }
func (b *Base) base() *Base     { return b }

func (f *ChoiceField) Accept(v Visitor)    { v.VisitChoice(f) }
func (f *ValueField) Accept(v Visitor)     { v.VisitValue(f) }
func (f *ContainerField) Accept(v Visitor) { v.VisitContainer(f) }
func (f *ControlField) Accept(v Visitor)   { v.VisitControl(f) }

// Choice returns the choice whose identifier or display string equals value.
func (f *ChoiceField) Choice(value string) (Choice, bool) {
	for _, c := range f.Choices {
		if c.Identifier == value || c.DisplayString == value {
			return c, true
		}
	}
	return Choice{}, false
}

// Set is an ordered metadata list.
type Set []Field

// Find returns the descriptor named fieldName, searching containers and
// choice detail fields depth first.
func (s Set) Find(fieldName string) Field {
	for _, f := range s {
		if found := find(f, fieldName); found != nil {
			return found
		}
	}
	return nil
}

func find(f Field, name string) Field {
	if f.Name() == name {
		return f
	}
	switch v := f.(type) {
	case *ContainerField:
		return Set(v.Fields).Find(name)
	case *ChoiceField:
		for _, c := range v.Choices {
			if found := Set(c.DetailFields).Find(name); found != nil {
				return found
			}
		}
	}
	return nil
}

// Walk visits every field depth first.
func (s Set) Walk(fn func(Field)) {
	for _, f := range s {
		fn(f)
		switch v := f.(type) {
		case *ContainerField:
			Set(v.Fields).Walk(fn)
		case *ChoiceField:
			for _, c := range v.Choices {
				Set(c.DetailFields).Walk(fn)
			}
		}
	}
}

// Maps renders the set in its host mapping form.
func (s Set) Maps() []map[string]any {
	out := make([]map[string]any, len(s))
	for i, f := range s {
		out[i] = f.Map()
	}
	return out
}

func (b *Base) Map() map[string]any {
	m := make(map[string]any, len(b.Extra)+6)
	for k, v := range b.Extra {
		m[k] = v
	}
	m["fieldName"] = b.FieldName
	m["fieldType"] = string(b.FieldType)
	if b.Label != "" {
		m["label"] = b.Label
	}
	if b.Editable {
		m["editable"] = true
	}
	if b.RefreshMetadata {
		m["refreshMetadata"] = true
	}
	if b.ModifyRecommender {
		m["modifyRecommender"] = true
	}
	return m
}

func (f *ChoiceField) Map() map[string]any {
	m := f.Base.Map()
	choices := make([]map[string]any, len(f.Choices))
	for i, c := range f.Choices {
		cm := map[string]any{"identifier": c.Identifier, "displayString": c.DisplayString}
		if c.ProductString != "" {
			cm["productString"] = c.ProductString
		}
		if len(c.DetailFields) > 0 {
			cm["detailFields"] = Set(c.DetailFields).Maps()
		}
		choices[i] = cm
	}
	m["choices"] = choices
	if f.Values != nil {
		m["values"] = f.Values
	}
	return m
}

func (f *ValueField) Map() map[string]any {
	m := f.Base.Map()
	if f.Values != nil {
		m["values"] = f.Values
	}
	return m
}

func (f *ContainerField) Map() map[string]any {
	m := f.Base.Map()
	m["fields"] = Set(f.Fields).Maps()
	return m
}

// Parse builds a descriptor from its host mapping form.
func Parse(raw map[string]any) (Field, error) {
	ft, _ := raw["fieldType"].(string)
	k, ok := kinds[FieldType(ft)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown fieldType %q", ErrInvalidField, ft)
	}
	b := Base{FieldType: FieldType(ft), Extra: map[string]any{}}
	b.FieldName, _ = raw["fieldName"].(string)
	b.Label, _ = raw["label"].(string)
	b.Editable, _ = raw["editable"].(bool)
	b.RefreshMetadata, _ = raw["refreshMetadata"].(bool)
	b.ModifyRecommender, _ = raw["modifyRecommender"].(bool)
	for key, v := range raw {
		switch key {
		case "fieldName", "fieldType", "label", "editable", "refreshMetadata", "modifyRecommender",
			"choices", "values", "fields":
		default:
			b.Extra[key] = v
		}
	}
	if b.FieldName == "" && k != kindControl {
		return nil, fmt.Errorf("%w: %s without fieldName", ErrInvalidField, ft)
	}

	switch k {
	case kindChoice:
		f := &ChoiceField{Base: b, Values: raw["values"]}
		choices, err := parseChoices(raw["choices"])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.FieldName, err)
		}
		f.Choices = choices
		return f, nil
	case kindContainer:
		fields, err := ParseList(raw["fields"])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.FieldName, err)
		}
		return &ContainerField{Base: b, Fields: fields}, nil
	case kindValue:
		return &ValueField{Base: b, Values: raw["values"]}, nil
	default:
		return &ControlField{Base: b}, nil
	}
}

// ParseList builds a Set from a list of host mappings. A nil input yields an empty set.
func ParseList(raw any) (Set, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		if maps, isMaps := raw.([]map[string]any); isMaps {
			items = make([]any, len(maps))
			for i, m := range maps {
				items[i] = m
			}
		} else {
			return nil, fmt.Errorf("%w: fields must be a list, got %T", ErrInvalidField, raw)
		}
	}
	out := make(Set, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: field %d is %T", ErrInvalidField, i, it)
		}
		f, err := Parse(m)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func parseChoices(raw any) ([]Choice, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: choices must be a list, got %T", ErrInvalidField, raw)
	}
	out := make([]Choice, 0, len(items))
	for _, it := range items {
		switch c := it.(type) {
		case string:
			out = append(out, Choice{Identifier: c, DisplayString: c})
		case map[string]any:
			ch := Choice{}
			ch.Identifier, _ = c["identifier"].(string)
			ch.DisplayString, _ = c["displayString"].(string)
			ch.ProductString, _ = c["productString"].(string)
			if ch.Identifier == "" {
				ch.Identifier = ch.DisplayString
			}
			if ch.DisplayString == "" {
				ch.DisplayString = ch.Identifier
			}
			details, err := ParseList(c["detailFields"])
			if err != nil {
				return nil, err
			}
			ch.DetailFields = details
			out = append(out, ch)
		default:
			return nil, fmt.Errorf("%w: choice is %T", ErrInvalidField, it)
		}
	}
	return out, nil
}
