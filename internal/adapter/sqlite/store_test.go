package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

var issue = time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func event(id string) domain.HazardEvent {
	return domain.HazardEvent{
		EventID:   id,
		Status:    domain.StatusIssued,
		Phen:      "FF",
		Sig:       "A",
		GeoType:   domain.GeoArea,
		StartTime: issue,
		EndTime:   issue.Add(8 * time.Hour),
		Attributes: domain.Attributes{
			"ugcs": []any{"COC001", "COC005"},
		},
		History: domain.IssuanceHistory{
			VTECCodes: []domain.Action{domain.ActionNew},
			ETNs:      []int{3},
			PILs:      []string{"FFA"},
			IssueTime: issue,
		},
	}
}

func record(action domain.Action, etn int, at time.Time, eventIDs ...string) domain.VTECRecord {
	return domain.VTECRecord{
		Action: action, Phen: "FF", Sig: "A", ETN: etn, PIL: "FFA", OfficeID: "KBOU",
		StartTime: at, EndTime: at.Add(8 * time.Hour), IssueTime: at,
		IDs: []string{"COC001"}, EventIDs: eventIDs,
	}
}

func TestEvents_SaveAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEvents(ctx, []domain.HazardEvent{event("1")}, domain.ModeOperational))

	got, err := s.GetHazardEvent(ctx, "1", domain.ModeOperational)
	require.NoError(t, err)
	if diff := cmp.Diff(event("1"), got); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestEvents_Upsert(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	ev := event("1")
	require.NoError(t, s.SaveEvents(ctx, []domain.HazardEvent{ev}, domain.ModeOperational))
	ev.Status = domain.StatusEnded
	require.NoError(t, s.SaveEvents(ctx, []domain.HazardEvent{ev}, domain.ModeOperational))

	got, err := s.GetHazardEvent(ctx, "1", domain.ModeOperational)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, got.Status)
}

func TestEvents_ModesAreSeparate(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEvents(ctx, []domain.HazardEvent{event("1")}, domain.ModePractice))

	_, err := s.GetHazardEvent(ctx, "1", domain.ModeOperational)
	require.ErrorIs(t, err, ErrEventNotFound)
	_, err = s.GetHazardEvent(ctx, "1", domain.ModePractice)
	require.NoError(t, err)
}

func TestRecords_LastRecords(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first := []domain.VTECRecord{record(domain.ActionNew, 3, issue, "1", "2")}
	second := []domain.VTECRecord{
		record(domain.ActionCon, 3, issue.Add(time.Hour), "1"),
		record(domain.ActionCan, 3, issue.Add(time.Hour), "1"),
	}
	require.NoError(t, s.SaveRecords(ctx, first, domain.ModeOperational))
	require.NoError(t, s.SaveRecords(ctx, second, domain.ModeOperational))

	got, err := s.LastRecords(ctx, "1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.ActionCon, got[0].Action)
	assert.Equal(t, domain.ActionCan, got[1].Action)
	assert.True(t, issue.Add(time.Hour).Equal(got[0].IssueTime))

	got, err = s.LastRecords(ctx, "2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ActionNew, got[0].Action)

	got, err = s.LastRecords(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecords_ModeFromContext(t *testing.T) {
	s := openStore(t)
	practice := domain.WithHazardMode(context.Background(), domain.ModePractice)

	require.NoError(t, s.SaveRecords(practice, []domain.VTECRecord{record(domain.ActionNew, 7, issue, "1")}, domain.ModePractice))

	got, err := s.LastRecords(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, got, "operational reads do not see practice records")

	got, err = s.LastRecords(practice, "1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNextETN(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	n, err := s.NextETN(ctx, "KBOU", "FF", "A", 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.SaveRecords(ctx, []domain.VTECRecord{
		record(domain.ActionNew, 4, issue, "1"),
		record(domain.ActionNew, 9, issue, "2"),
	}, domain.ModeOperational))

	n, err = s.NextETN(ctx, "KBOU", "FF", "A", 2026)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = s.NextETN(ctx, "KBOU", "FF", "A", 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "numbers restart each year")

	n, err = s.NextETN(ctx, "KBOU", "FF", "W", 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hazards.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveEvents(context.Background(), []domain.HazardEvent{event("1")}, domain.ModeOperational))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(context.Background()))
	_, err = s.GetHazardEvent(context.Background(), "1", domain.ModeOperational)
	require.NoError(t, err)
}
