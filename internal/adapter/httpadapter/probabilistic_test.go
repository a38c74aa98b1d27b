package httpadapter_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/probabilistic"
)

type objectReply struct {
	Object   probabilistic.Object `json:"object"`
	ReadOnly bool                 `json:"readOnly"`
	Error    string               `json:"error"`
}

func decodeObject(t *testing.T, body []byte) objectReply {
	t.Helper()
	var r objectReply
	require.NoError(t, json.Unmarshal(body, &r))
	return r
}

func TestProbabilisticRoute_CreateManualObject(t *testing.T) {
	srv := newTestServer(nil, &mockGenerator{})

	rec := post(srv, "/v1/probabilistic/create", `{"user":"jdoe:ws1.boulder.noaa.gov","object":{"displayEventID":"42"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeObject(t, rec.Body.Bytes())
	assert.Equal(t, "M42", got.Object.ObjectID)
	assert.Equal(t, "jdoe:ws1", got.Object.Owner)
	assert.Equal(t, domain.StatusPending, got.Object.Status)
	assert.True(t, got.Object.Activate)
	assert.False(t, got.ReadOnly)
	assert.False(t, got.Object.UpdatedAt.IsZero())
}

func TestProbabilisticRoute_Reshape(t *testing.T) {
	srv := newTestServer(nil, &mockGenerator{})

	body := `{"user":"jdoe:ws1","shape":"Linear","object":{"objectID":"M42","owner":"JDOE:ws1","probTrendAutomated":true,
"probTrend":[{"x":0,"y":80},{"x":30,"y":10},{"x":60,"y":20}]}}`
	rec := post(srv, "/v1/probabilistic/reshape", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeObject(t, rec.Body.Bytes())
	assert.Equal(t, []probabilistic.Point{{Minutes: 0, Percent: 80}, {Minutes: 30, Percent: 50}, {Minutes: 60, Percent: 0}}, got.Object.Trend)
	assert.False(t, got.Object.ProbTrendAutomated)
}

func TestProbabilisticRoute_Errors(t *testing.T) {
	srv := newTestServer(nil, &mockGenerator{})

	tests := []struct {
		name, path, body string
		want             int
	}{
		{"not owner", "/v1/probabilistic/press", `{"user":"other:ws2","button":"Automate All","object":{"owner":"jdoe:ws1"}}`, http.StatusForbidden},
		{"unknown button", "/v1/probabilistic/press", `{"user":"jdoe:ws1","button":"Explode","object":{"owner":"jdoe:ws1"}}`, http.StatusUnprocessableEntity},
		{"unknown shape", "/v1/probabilistic/reshape", `{"user":"jdoe:ws1","shape":"Zigzag","object":{"owner":"jdoe:ws1","probTrend":[{"x":0,"y":5}]}}`, http.StatusUnprocessableEntity},
		{"missing status", "/v1/probabilistic/status", `{"user":"jdoe:ws1","object":{"owner":"jdoe:ws1"}}`, http.StatusUnprocessableEntity},
		{"no user", "/v1/probabilistic/create", `{"object":{}}`, http.StatusBadRequest},
		{"bad json", "/v1/probabilistic/create", `{`, http.StatusBadRequest},
		{"unknown action", "/v1/probabilistic/explode", `{"user":"jdoe:ws1","object":{}}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(srv, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decodeObject(t, rec.Body.Bytes()).Error)
		})
	}
}

func TestProbabilisticRoute_EndedObjectDeactivates(t *testing.T) {
	srv := newTestServer(nil, &mockGenerator{})

	rec := post(srv, "/v1/probabilistic/status", `{"user":"jdoe:ws1","status":"ended","object":{"owner":"jdoe:ws1","activate":true}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decodeObject(t, rec.Body.Bytes()).Object.Activate)
}
