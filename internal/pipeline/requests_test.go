package pipeline_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-product-generator/internal/config"
	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/generator"
	"github.com/couchcryptid/hazard-product-generator/internal/pipeline"
)

// memStore keeps events and records in memory for fixture runs.
type memStore struct {
	events  map[string]domain.HazardEvent
	records map[string][]domain.VTECRecord
	etn     int
}

func newMemStore() *memStore {
	return &memStore{events: map[string]domain.HazardEvent{}, records: map[string][]domain.VTECRecord{}}
}

func (m *memStore) GetHazardEvent(_ context.Context, id string, _ domain.HazardMode) (domain.HazardEvent, error) {
	return m.events[id], nil
}

func (m *memStore) SaveEvents(_ context.Context, events []domain.HazardEvent, _ domain.HazardMode) error {
	for _, e := range events {
		m.events[e.EventID] = e
	}
	return nil
}

func (m *memStore) SaveRecords(_ context.Context, records []domain.VTECRecord, _ domain.HazardMode) error {
	for _, r := range records {
		for _, id := range r.EventIDs {
			m.records[id] = append(m.records[id], r)
		}
	}
	return nil
}

func (m *memStore) LastRecords(_ context.Context, id string) ([]domain.VTECRecord, error) {
	return m.records[id], nil
}

func (m *memStore) NextETN(context.Context, string, string, string, int) (int, error) {
	m.etn++
	return m.etn, nil
}

func fixture(t *testing.T, name string) domain.RawMessage {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return domain.RawMessage{Key: []byte(name), Value: data, Topic: "hazard-event-sets"}
}

func fixtureTransformer(t *testing.T, store *memStore) *pipeline.ProductTransformer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g, err := generator.New(config.DefaultSite(), generator.Collaborators{Events: store, Records: store}, logger, newTestMetrics())
	require.NoError(t, err)
	return pipeline.NewTransformer(g, logger)
}

type publishedOutput struct {
	Products []map[string]any `json:"products"`
	Events   []map[string]any `json:"events"`
	Issued   bool             `json:"issued"`
}

func TestProductTransformer_Fixtures(t *testing.T) {
	cases := []struct {
		file     string
		products []string
		issued   bool
		saved    int
	}{
		{file: "flood_watch_preview.json", products: []string{"FFA"}, issued: false, saved: 0},
		{file: "flood_watch_issue.json", products: []string{"FFA"}, issued: true, saved: 2},
	}

	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			store := newMemStore()
			out, err := fixtureTransformer(t, store).Transform(context.Background(), fixture(t, tc.file))
			require.NoError(t, err)

			var published publishedOutput
			require.NoError(t, json.Unmarshal(out.Value, &published))

			ids := make([]string, len(published.Products))
			for i, p := range published.Products {
				ids[i], _ = p["productID"].(string)
			}
			assert.Equal(t, tc.products, ids)
			assert.Equal(t, tc.issued, published.Issued)
			assert.Len(t, store.events, tc.saved)
			assert.NotEmpty(t, out.Headers["product_labels"])
		})
	}
}

func TestProductTransformer_IssuedFixtureAssignsDistinctETNs(t *testing.T) {
	store := newMemStore()
	_, err := fixtureTransformer(t, store).Transform(context.Background(), fixture(t, "flood_watch_issue.json"))
	require.NoError(t, err)

	first, second := store.events["HZ-1002"], store.events["HZ-1003"]
	require.Len(t, first.History.ETNs, 1)
	require.Len(t, second.History.ETNs, 1)
	assert.NotEqual(t, first.History.ETNs[0], second.History.ETNs[0])
}

func TestProductTransformer_RejectedFixture(t *testing.T) {
	store := newMemStore()
	_, err := fixtureTransformer(t, store).Transform(context.Background(), fixture(t, "emergency_without_location.json"))

	require.Error(t, err)
	assert.True(t, generator.IsRejected(err))
	assert.Empty(t, store.records, "nothing is persisted for a rejected issuance")
}
