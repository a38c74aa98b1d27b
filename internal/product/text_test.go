package product_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/product"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpirationPolicy(t *testing.T) {
	ugcs := []string{"COC005"}
	tests := []struct {
		name   string
		policy product.ExpirationPolicy
		recs   []domain.VTECRecord
		want   time.Time
	}{
		{
			name:   "purge window longer than event",
			policy: product.ExpirationPolicy{PurgeHours: 8},
			recs:   []domain.VTECRecord{record(domain.ActionNew, "FF", "W", ugcs, issue, issue.Add(3*time.Hour))},
			want:   issue.Add(3 * time.Hour),
		},
		{
			name:   "purge window shorter than event",
			policy: product.ExpirationPolicy{PurgeHours: 1},
			recs:   []domain.VTECRecord{record(domain.ActionNew, "FF", "W", ugcs, issue, issue.Add(3*time.Hour))},
			want:   issue.Add(time.Hour),
		},
		{
			name:   "fixed keeps purge window",
			policy: product.ExpirationPolicy{PurgeHours: 8, Fixed: true},
			recs:   []domain.VTECRecord{record(domain.ActionNew, "FF", "W", ugcs, issue, issue.Add(3*time.Hour))},
			want:   issue.Add(8 * time.Hour),
		},
		{
			name:   "zero purge uses earliest end rounded up",
			policy: product.ExpirationPolicy{},
			recs:   []domain.VTECRecord{record(domain.ActionNew, "FA", "Y", ugcs, issue, issue.Add(2*time.Hour+7*time.Minute))},
			want:   issue.Add(2*time.Hour + 15*time.Minute),
		},
		{
			name:   "only terminal records",
			policy: product.ExpirationPolicy{PurgeHours: 8},
			recs:   []domain.VTECRecord{record(domain.ActionCan, "FF", "W", ugcs, issue, issue.Add(3*time.Hour))},
			want:   issue.Add(time.Hour),
		},
		{
			name:   "clamped to an hour after issue",
			policy: product.ExpirationPolicy{PurgeHours: 8},
			recs:   []domain.VTECRecord{record(domain.ActionCon, "FF", "W", ugcs, issue, issue.Add(20*time.Minute))},
			want:   issue.Add(time.Hour),
		},
		{
			name:   "until further notice ignored",
			policy: product.ExpirationPolicy{PurgeHours: 12},
			recs:   []domain.VTECRecord{record(domain.ActionNew, "FL", "W", ugcs, issue, domain.UFNTime)},
			want:   issue.Add(12 * time.Hour),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Expire(issue, tt.recs))
		})
	}
}

func TestExpirationPolicy_Bounds(t *testing.T) {
	ugcs := []string{"COC005"}
	for _, purge := range []float64{0, 1, 3, 8} {
		for m := 0; m < 60; m += 7 {
			at := issue.Add(time.Duration(m) * time.Minute)
			for _, end := range []time.Duration{-time.Hour, 10 * time.Minute, 95 * time.Minute, 11 * time.Hour} {
				for _, act := range []domain.Action{domain.ActionNew, domain.ActionCon, domain.ActionCan, domain.ActionExp} {
					recs := []domain.VTECRecord{record(act, "FF", "W", ugcs, at, at.Add(end))}
					got := product.ExpirationPolicy{PurgeHours: purge}.Expire(at, recs)
					assert.False(t, got.Before(at.Add(time.Hour)), "purge %v minute %d end %v %s", purge, m, end, act)
					assert.Zero(t, got.UnixMilli()%(15*60*1000), "purge %v minute %d end %v %s", purge, m, end, act)
				}
			}
		}
	}
}

func TestOrderRecords(t *testing.T) {
	ugcs := []string{"COC005"}
	in := []domain.VTECRecord{
		record(domain.ActionCan, "FA", "Y", ugcs, issue, issue.Add(2*time.Hour)),
		record(domain.ActionCon, "FF", "A", ugcs, issue, issue.Add(6*time.Hour)),
		record(domain.ActionNew, "FF", "W", ugcs, issue, issue.Add(3*time.Hour)),
		record(domain.ActionNew, "FA", "Y", ugcs, issue.Add(time.Hour), issue.Add(3*time.Hour)),
		record(domain.ActionNew, "FA", "W", ugcs, issue, issue.Add(3*time.Hour)),
	}

	got := product.OrderRecords(in, issue)

	keys := make([]string, len(got))
	for i, r := range got {
		keys[i] = string(r.Action) + " " + r.Key
	}
	want := []string{"NEW FA.W", "NEW FF.W", "CON FF.A", "NEW FA.Y", "CAN FA.Y"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderRecords_EndAtIssue(t *testing.T) {
	ugcs := []string{"COC005"}
	exp := record(domain.ActionExp, "FF", "W", ugcs, issue.Add(-time.Hour), issue)
	con := record(domain.ActionCon, "FF", "W", ugcs, issue.Add(-time.Hour), issue)
	stale := record(domain.ActionExp, "FF", "W", ugcs, issue.Add(-2*time.Hour), issue.Add(-31*time.Minute))

	got := product.OrderRecords([]domain.VTECRecord{exp, con, stale}, issue)

	require.Len(t, got, 1)
	assert.Equal(t, domain.ActionExp, got[0].Action)
}

func TestAttribution(t *testing.T) {
	base := product.AttributionInput{
		HazardName: "Flood Warning",
		AreaPhrase: "Adams County in northeast Colorado",
		WFOCity:    "Denver",
		Timing:     "at 300 PM MDT",
		GeoType:    domain.GeoArea,
		Issue:      issue,
		End:        issue.Add(time.Hour),
	}
	tests := []struct {
		act        domain.Action
		geo        domain.GeoType
		end        time.Time
		attr, bull string
	}{
		{domain.ActionNew, domain.GeoArea, base.End,
			"The National Weather Service in Denver has issued a", "Flood Warning for Adams County in northeast Colorado."},
		{domain.ActionCon, domain.GeoArea, base.End,
			"The Flood Warning remains in effect for", "Adams County in northeast Colorado."},
		{domain.ActionExa, domain.GeoArea, base.End,
			"The National Weather Service in Denver has expanded the", "Flood Warning to include Adams County in northeast Colorado."},
		{domain.ActionExt, domain.GeoArea, base.End,
			"The Flood Warning is now in effect for", "Adams County in northeast Colorado."},
		{domain.ActionExt, domain.GeoPoint, base.End,
			"The National Weather Service in Denver has extended the", "Flood Warning for Adams County in northeast Colorado."},
		{domain.ActionCan, domain.GeoArea, base.End,
			"The Flood Warning for Adams County in northeast Colorado has been cancelled.", ""},
		{domain.ActionExp, domain.GeoArea, base.End,
			"The Flood Warning for Adams County in northeast Colorado will expire at 300 PM MDT.", ""},
		{domain.ActionExp, domain.GeoArea, issue,
			"The Flood Warning for Adams County in northeast Colorado has expired.", ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.act)+"_"+string(tt.geo), func(t *testing.T) {
			in := base
			in.Action, in.GeoType, in.End = tt.act, tt.geo, tt.end
			attr, bullet := product.Attribution(in)
			assert.Equal(t, tt.attr, attr)
			assert.Equal(t, tt.bull, bullet)
		})
	}
}

func TestEncodeLatLon(t *testing.T) {
	poly := []domain.LatLon{
		{Lat: 39.75, Lon: -104.99}, {Lat: 39.80, Lon: -104.50}, {Lat: 40.10, Lon: -104.20},
		{Lat: 40.30, Lon: -104.80}, {Lat: 40.00, Lon: -105.30}, {Lat: 39.75, Lon: -104.99},
	}
	assert.Equal(t, "LAT...LON 3975 10499 3980 10450 4010 10420 4030 10480\n      4000 10530",
		product.EncodeLatLon([][]domain.LatLon{poly}))

	aleutian := []domain.LatLon{{Lat: 52.1, Lon: 175.5}, {Lat: 52.5, Lon: -176.0}, {Lat: 51.8, Lon: -178.0}}
	assert.Equal(t, "LAT...LON 5210 18450 5250 17600 5180 17800", product.EncodeLatLon([][]domain.LatLon{aleutian}))
}

func TestLatLon_RoundTrip(t *testing.T) {
	polys := [][]domain.LatLon{
		{{Lat: 39.75, Lon: -104.99}, {Lat: 39.8, Lon: -104.5}, {Lat: 40.1, Lon: -104.2}, {Lat: 40.3, Lon: -104.8}, {Lat: 40, Lon: -105.3}},
		{{Lat: 38.5, Lon: -103.1}, {Lat: 38.9, Lon: -103.4}, {Lat: 38.2, Lon: -103.9}},
	}
	text := product.EncodeLatLon(polys)
	decoded, err := product.DecodeLatLon(text)
	require.NoError(t, err)
	assert.Equal(t, text, product.EncodeLatLon(decoded))
	assert.InDelta(t, -104.99, decoded[0][0].Lon, 1e-9)

	_, err = product.DecodeLatLon("LAT...LON 3975 10499 3980")
	assert.ErrorIs(t, err, product.ErrBadLatLon)
	_, err = product.DecodeLatLon("3975 10499")
	assert.ErrorIs(t, err, product.ErrBadLatLon)
}

func TestCAPPolygon(t *testing.T) {
	poly := []domain.LatLon{{Lat: 39.75, Lon: -104.99}, {Lat: 39.8, Lon: -104.5}, {Lat: 40.1, Lon: -104.2}}
	assert.Equal(t, "39.75,-104.99 39.80,-104.50 40.10,-104.20 39.75,-104.99", product.CAPPolygon(poly))
}
