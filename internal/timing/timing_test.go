package timing_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2026-06-15 12:00 MDT.
var issue = time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func record(act domain.Action, phen, sig string, start, end time.Duration) domain.VTECRecord {
	return domain.VTECRecord{
		Action:    act,
		Phen:      phen,
		Sig:       sig,
		Key:       phen + "." + sig,
		PIL:       "FFA",
		StartTime: issue.Add(start),
		EndTime:   issue.Add(end),
		IssueTime: issue,
	}
}

func TestChooseTypes(t *testing.T) {
	p := timing.New()
	pair := func(s, e timing.Type) timing.Pair { return timing.Pair{Start: s, End: e} }

	tests := []struct {
		name string
		rec  domain.VTECRecord
		want timing.Pair
	}{
		{"cancel", record(domain.ActionCan, "FF", "A", 0, 8*time.Hour), pair(timing.None, timing.None)},
		{"upgrade", record(domain.ActionUpg, "FF", "A", 0, 8*time.Hour), pair(timing.None, timing.None)},
		{"expire", record(domain.ActionExp, "FF", "W", -8*time.Hour, 0), pair(timing.None, timing.Explicit)},
		{"tornado watch near", record(domain.ActionNew, "TO", "A", time.Hour, 6*time.Hour), pair(timing.None, timing.Explicit)},
		{"tornado watch later", record(domain.ActionNew, "TO", "A", 4*time.Hour, 9*time.Hour), pair(timing.Explicit, timing.Explicit)},
		{"tropical", record(domain.ActionNew, "HU", "W", 0, 48*time.Hour), pair(timing.None, timing.None)},
		{"warning now", record(domain.ActionNew, "FF", "W", 0, 4*time.Hour), pair(timing.None, timing.Explicit)},
		{"warning later", record(domain.ActionNew, "FA", "Y", 5*time.Hour, 9*time.Hour), pair(timing.Explicit, timing.Explicit)},
		{"watch near", record(domain.ActionNew, "FF", "A", 0, 8*time.Hour), pair(timing.None, timing.Explicit)},
		{"watch mid", record(domain.ActionNew, "FF", "A", 6*time.Hour, 12*time.Hour), pair(timing.Explicit, timing.Explicit)},
		{"watch far", record(domain.ActionNew, "FF", "A", 18*time.Hour, 36*time.Hour), pair(timing.Fuzzy4, timing.Fuzzy4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ChooseTypes(tt.rec, issue))
		})
	}
}

func TestChooseTypes_Marine(t *testing.T) {
	rec := record(domain.ActionNew, "SC", "Y", 18*time.Hour, 36*time.Hour)
	rec.PIL = "MWW"

	assert.Equal(t, timing.Pair{Start: timing.Fuzzy4, End: timing.Fuzzy4}, timing.New().ChooseTypes(rec, issue))
	assert.Equal(t, timing.Pair{Start: timing.Fuzzy8, End: timing.Fuzzy8},
		timing.New(timing.WithOCONUS(true)).ChooseTypes(rec, issue))
}

func TestChooseTypes_OverrideWins(t *testing.T) {
	override, err := timing.ParsePair("FUZZY", "DAY_NIGHT_ONLY")
	require.NoError(t, err)
	p := timing.New(timing.WithOverrides(map[string]timing.Pair{"FF.W": override}))

	got := p.ChooseTypes(record(domain.ActionNew, "FF", "W", 0, 4*time.Hour), issue)
	assert.Equal(t, timing.Pair{Start: timing.Fuzzy4, End: timing.DayNightOnly}, got)

	// Terminal actions are decided before the override.
	got = p.ChooseTypes(record(domain.ActionCan, "FF", "W", 0, 4*time.Hour), issue)
	assert.Equal(t, timing.Pair{Start: timing.None, End: timing.None}, got)
}

func TestParseType_Unknown(t *testing.T) {
	_, err := timing.ParseType("SOMETIME")
	require.Error(t, err)
}

func TestConnectorFor_Total(t *testing.T) {
	types := []timing.Type{timing.None, timing.Explicit, timing.Fuzzy4, timing.Fuzzy8, timing.DayNightOnly}
	actions := []domain.Action{
		domain.ActionNew, domain.ActionCon, domain.ActionExt, domain.ActionExa, domain.ActionExb,
		domain.ActionCan, domain.ActionExp, domain.ActionUpg, domain.ActionRou,
	}
	for _, s := range types {
		for _, e := range types {
			for _, a := range actions {
				c, ok := timing.ConnectorFor(timing.Pair{Start: s, End: e}, a)
				assert.True(t, ok, "%v %v %v", s, e, a)
				if a == domain.ActionExp {
					assert.Equal(t, timing.Connector{End: "AT"}, c)
				}
			}
		}
	}
}

func TestConnectorFor_Pairs(t *testing.T) {
	tests := []struct {
		pair timing.Pair
		want timing.Connector
	}{
		{timing.Pair{Start: timing.None, End: timing.Explicit}, timing.Connector{End: "until"}},
		{timing.Pair{Start: timing.Explicit, End: timing.Explicit}, timing.Connector{Start: "from", End: "to"}},
		{timing.Pair{Start: timing.None, End: timing.Fuzzy4}, timing.Connector{End: "through"}},
		{timing.Pair{Start: timing.Fuzzy4, End: timing.Explicit}, timing.Connector{Start: "from", End: "until"}},
		{timing.Pair{Start: timing.Fuzzy8, End: timing.DayNightOnly}, timing.Connector{Start: "from", End: "through"}},
		{timing.Pair{Start: timing.Explicit, End: timing.None}, timing.Connector{Start: "from"}},
	}
	for _, tt := range tests {
		t.Run(tt.pair.Start.String()+"_"+tt.pair.End.String(), func(t *testing.T) {
			got, ok := timing.ConnectorFor(tt.pair, domain.ActionNew)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConnectorFor_UnknownType(t *testing.T) {
	_, ok := timing.ConnectorFor(timing.Pair{Start: timing.Type(42), End: timing.Explicit}, domain.ActionNew)
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	denver := mustZone(t, "America/Denver")

	tests := []struct {
		name string
		at   time.Time
		typ  timing.Type
		want timing.Description
	}{
		{"evening", time.Date(2026, 6, 16, 4, 15, 0, 0, time.UTC), timing.Explicit,
			timing.Description{Clock: "1015 PM", Zone: "MDT", Text: "this evening"}},
		{"noon", time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC), timing.Explicit,
			timing.Description{Clock: "Noon", Zone: "MDT", Text: "this afternoon"}},
		{"midnight", time.Date(2026, 6, 16, 6, 0, 0, 0, time.UTC), timing.Explicit,
			timing.Description{Clock: "Midnight", Zone: "MDT", Text: "late tonight"}},
		{"next day", time.Date(2026, 6, 16, 21, 0, 0, 0, time.UTC), timing.Explicit,
			timing.Description{Clock: "300 PM", Zone: "MDT", Text: "Tuesday"}},
		{"fuzzy4", time.Date(2026, 6, 16, 21, 0, 0, 0, time.UTC), timing.Fuzzy4,
			timing.Description{Text: "Tuesday afternoon"}},
		{"fuzzy8", time.Date(2026, 6, 16, 21, 0, 0, 0, time.UTC), timing.Fuzzy8,
			timing.Description{Text: "late Tuesday afternoon"}},
		{"day night", time.Date(2026, 6, 17, 2, 0, 0, 0, time.UTC), timing.DayNightOnly,
			timing.Description{Text: "Tuesday night"}},
		{"today", time.Date(2026, 6, 15, 20, 0, 0, 0, time.UTC), timing.DayNightOnly,
			timing.Description{Text: "today"}},
		{"further notice", domain.UFNTime, timing.Explicit, timing.Description{Text: timing.FurtherNotice}},
		{"none", time.Date(2026, 6, 16, 4, 15, 0, 0, time.UTC), timing.None, timing.Description{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, timing.Describe(issue, tt.at, denver, tt.typ))
		})
	}
}

func TestPhrase(t *testing.T) {
	denver := mustZone(t, "America/Denver")
	p := timing.New()

	tests := []struct {
		name string
		rec  domain.VTECRecord
		want string
	}{
		{"until", record(domain.ActionNew, "FF", "W", 0, 4*time.Hour+15*time.Minute),
			"until 415 PM MDT this afternoon"},
		{"from to", record(domain.ActionNew, "FF", "A", 4*time.Hour, 8*time.Hour),
			"from 400 PM MDT this afternoon to 800 PM MDT this evening"},
		{"shared text", record(domain.ActionNew, "FF", "A", 3*time.Hour, 5*time.Hour),
			"from 300 PM to 500 PM MDT this afternoon"},
		{"expire", record(domain.ActionExp, "FF", "W", -4*time.Hour, 10*time.Hour+15*time.Minute),
			"at 1015 PM MDT this evening"},
		{"cancel", record(domain.ActionCan, "FF", "W", 0, 4*time.Hour), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Phrase(tt.rec, []*time.Location{denver}, issue))
		})
	}
}

func TestPhrase_EarlyMorningMergesIntoMorning(t *testing.T) {
	denver := mustZone(t, "America/Denver")
	midnight := time.Date(2026, 6, 15, 0, 0, 0, 0, denver)
	rec := domain.VTECRecord{
		Action:    domain.ActionNew,
		Phen:      "FF",
		Sig:       "W",
		Key:       "FF.W",
		PIL:       "FFW",
		StartTime: midnight.Add(4 * time.Hour),
		EndTime:   midnight.Add(10 * time.Hour),
		IssueTime: midnight,
	}

	got := timing.New().Phrase(rec, []*time.Location{denver}, midnight)
	assert.Equal(t, "from 400 AM to 1000 AM MDT this morning", got)
}

func TestPhrase_UntilFurtherNotice(t *testing.T) {
	denver := mustZone(t, "America/Denver")
	rec := record(domain.ActionNew, "FL", "W", 0, 0)
	rec.EndTime = domain.UFNTime

	got := timing.New().Phrase(rec, []*time.Location{denver}, issue)
	assert.Equal(t, "until further notice", got)
	assert.NotContains(t, got, " PM")
	assert.NotContains(t, got, " AM")
}

func TestPhrase_BraidsZones(t *testing.T) {
	zones := []*time.Location{mustZone(t, "America/Denver"), mustZone(t, "America/Los_Angeles")}
	rec := record(domain.ActionNew, "FF", "W", 0, 10*time.Hour+15*time.Minute)

	got := timing.New().Phrase(rec, zones, issue)
	assert.Equal(t, "until 1015 PM MDT /915 PM PDT/ this evening", got)
}

func TestPhrase_Sentinel(t *testing.T) {
	p := timing.New(timing.WithOverrides(map[string]timing.Pair{
		"FF.W": {Start: timing.Type(42), End: timing.Explicit},
	}))
	got := p.Phrase(record(domain.ActionNew, "FF", "W", 0, 4*time.Hour), nil, issue)
	assert.Equal(t, timing.Sentinel, got)
}

func TestLoadZones_Dedupes(t *testing.T) {
	zones, err := timing.LoadZones([]string{"America/Denver", "", "America/Denver", "America/Chicago"})
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, "America/Chicago", zones[1].String())

	_, err = timing.LoadZones([]string{"Mars/Olympus"})
	require.Error(t, err)
}
