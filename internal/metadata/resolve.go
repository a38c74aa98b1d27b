package metadata

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// Service supplies metadata sets. Implementations wrap the host data access
// layer or local files.
type Service interface {
	// HazardMetadata returns the dialog metadata for the event's hazard type.
	// The event's status selects status-specific variants such as "ending".
	HazardMetadata(ctx context.Context, event domain.HazardEvent) (Set, error)
	// File returns the metadata stored under a file name.
	File(ctx context.Context, fileName string) (Set, error)
}

// Formatter renders one #token# from an event.
type Formatter func(event domain.HazardEvent) string

var (
	tokenPattern  = regexp.MustCompile(`#([A-Za-z0-9_.]+)#`)
	framedPattern = regexp.MustCompile(`\|\*\s*([A-Za-z0-9_.]+)\s*\*\|`)
	breakPattern  = regexp.MustCompile(`(?i)<br\s*/?>`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// Frame marks text the forecaster must replace: "|* text *|".
func Frame(text string) string {
	return "|* " + text + " *|"
}

// Resolver turns event attribute selections into product strings.
type Resolver struct {
	formatters map[string]Formatter
}

// NewResolver returns a Resolver. formatters override attribute lookup for
// the tokens they name.
func NewResolver(formatters map[string]Formatter) *Resolver {
	return &Resolver{formatters: formatters}
}

// ProductStrings resolves fieldName for event. With choiceID set, that choice
// is used instead of the event's selection. A list-valued attribute yields one
// string per selected value. An unknown field yields nil.
func (r *Resolver) ProductStrings(event domain.HazardEvent, set Set, fieldName, choiceID string) []string {
	f := set.Find(fieldName)
	if f == nil {
		return nil
	}

	values := []string{choiceID}
	if choiceID == "" {
		values = event.Attributes.Strings(fieldName)
	}

	var out []string
	switch v := f.(type) {
	case *ChoiceField:
		for _, val := range values {
			text := fieldName
			if c, ok := v.Choice(val); ok {
				text = c.DisplayString
				if c.ProductString != "" {
					text = c.ProductString
				}
			}
			out = append(out, r.finish(event, text))
		}
	case *ValueField:
		for _, val := range values {
			if val != "" {
				out = append(out, r.finish(event, val))
			}
		}
	}
	return out
}

// ProductString is ProductStrings joined with single spaces. A miss yields "".
func (r *Resolver) ProductString(event domain.HazardEvent, set Set, fieldName, choiceID string) string {
	return strings.Join(r.ProductStrings(event, set, fieldName, choiceID), " ")
}

// finish normalizes text and fills its #token# and |* token *| slots from the
// formatters, then the event's attributes.
func (r *Resolver) finish(event domain.HazardEvent, text string) string {
	text = Normalize(text)
	params := make(map[string]string)
	for _, re := range []*regexp.Regexp{tokenPattern, framedPattern} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, ok := r.lookup(event, m[1]); ok {
				params[m[1]] = v
			}
		}
	}
	return SubstituteParameters(text, params)
}

func (r *Resolver) lookup(event domain.HazardEvent, token string) (string, bool) {
	if f, ok := r.formatters[token]; ok {
		return f(event), true
	}
	if event.Attributes.Has(token) {
		return strings.Join(event.Attributes.Strings(token), ", "), true
	}
	return "", false
}

// Normalize collapses whitespace runs and turns <br/> variants into newlines.
func Normalize(text string) string {
	text = spacePattern.ReplaceAllString(text, " ")
	text = breakPattern.ReplaceAllString(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SubstituteParameters replaces #token# placeholders and |* token *| frames
// from params. A missing #token# becomes a frame; a frame without a value is
// left for the forecaster.
func SubstituteParameters(text string, params map[string]string) string {
	text = tokenPattern.ReplaceAllStringFunc(text, func(m string) string {
		token := m[1 : len(m)-1]
		if v, ok := params[token]; ok {
			return v
		}
		return Frame(token)
	})
	return framedPattern.ReplaceAllStringFunc(text, func(m string) string {
		token := framedPattern.FindStringSubmatch(m)[1]
		if v, ok := params[token]; ok {
			return v
		}
		return m
	})
}

// LabelAll prefixes the set with a framed Label control. The cancellation
// dialog uses it to introduce each event's fields.
func LabelAll(set Set, text string) Set {
	label := &ControlField{Base: Base{
		FieldName: fmt.Sprintf("label_%d", len(set)),
		FieldType: Label,
		Label:     text,
	}}
	return append(Set{label}, set...)
}
