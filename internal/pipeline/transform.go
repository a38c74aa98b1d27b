package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/generator"
)

// Generator produces the products of one event set.
type Generator interface {
	Generate(ctx context.Context, set domain.EventSet) (*generator.Output, error)
}

// ProductTransformer implements Transformer by decoding an event set and
// running product generation on it.
type ProductTransformer struct {
	generator Generator
	logger    *slog.Logger
}

// NewTransformer creates a ProductTransformer.
func NewTransformer(g Generator, logger *slog.Logger) *ProductTransformer {
	return &ProductTransformer{
		generator: g,
		logger:    logger,
	}
}

func (t *ProductTransformer) Transform(ctx context.Context, raw domain.RawMessage) (domain.OutputMessage, error) {
	set, err := ParseRequest(raw)
	if err != nil {
		return domain.OutputMessage{}, err
	}

	out, err := t.generator.Generate(ctx, set)
	if err != nil {
		return domain.OutputMessage{}, err
	}
	return SerializeOutput(raw.Key, out)
}

// ParseRequest decodes the event set carried by raw.
func ParseRequest(raw domain.RawMessage) (domain.EventSet, error) {
	var set domain.EventSet
	if err := json.Unmarshal(raw.Value, &set); err != nil {
		return domain.EventSet{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if len(set.Events) == 0 {
		return domain.EventSet{}, fmt.Errorf("%w: event set has no events", domain.ErrValidation)
	}
	return set, nil
}

// SerializeOutput renders a generation result as a message keyed like the
// request.
func SerializeOutput(key []byte, out *generator.Output) (domain.OutputMessage, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return domain.OutputMessage{}, fmt.Errorf("serialize products: %w", err)
	}
	ids := make([]string, len(out.Products))
	for i, p := range out.Products {
		ids[i] = p.Label()
	}
	return domain.OutputMessage{
		Key:   key,
		Value: data,
		Headers: map[string]string{
			"product_labels": strings.Join(ids, ","),
			"issued":         strconv.FormatBool(out.Issued),
			"generated_at":   domain.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}
