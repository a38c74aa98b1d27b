package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-product-generator/internal/adapter/httpadapter"
	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/generator"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockGenerator struct {
	err error
	got domain.EventSet
}

func (m *mockGenerator) Generate(_ context.Context, set domain.EventSet) (*generator.Output, error) {
	m.got = set
	if m.err != nil {
		return nil, m.err
	}
	return &generator.Output{Events: set.Events, Issued: set.Attributes.IssueFlag}, nil
}

const requestBody = `{"events":[{"eventID":"HZ-1","status":"pending","phen":"FF","sig":"A","geoType":"area",
"startTime":1781546400000,"endTime":1781575200000,"attributes":{"ugcs":["COC005"]}}],
"attributes":{"issueFlag":false,"currentTime":1781546400000,"siteID":"BOU","vtecMode":null,
"vtecTestMode":false,"inputFields":{},"sessionDict":{"testMode":0,"experimentalMode":0}}}`

func newTestServer(readyErr error, gen httpadapter.Generator) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, gen, slog.Default())
}

func post(srv *httpadapter.Server, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"), nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestProductRoutesAbsentWithoutGenerator(t *testing.T) {
	rec := post(newTestServer(nil, nil), "/v1/products", requestBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewAndIssueRoutesSetIssueFlag(t *testing.T) {
	for path, issued := range map[string]bool{"/v1/products": false, "/v1/products/issue": true} {
		t.Run(path, func(t *testing.T) {
			gen := &mockGenerator{}
			rec := post(newTestServer(nil, gen), path, requestBody)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, issued, gen.got.Attributes.IssueFlag)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, issued, body["issued"])
			assert.Len(t, body["events"], 1)
		})
	}
}

func TestGenerateErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &domain.ValidationError{EventID: "HZ-1", Message: "bad"}, http.StatusUnprocessableEntity},
		{"external", domain.ExternalServiceError("vtec engine", errors.New("down")), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(newTestServer(nil, &mockGenerator{err: tc.err}), "/v1/products/issue", requestBody)
			assert.Equal(t, tc.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestBadRequestBodies(t *testing.T) {
	srv := newTestServer(nil, &mockGenerator{})
	for name, body := range map[string]string{
		"not json":  "{",
		"no events": `{"events":[],"attributes":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, post(srv, "/v1/products", body).Code)
		})
	}
}

func TestValidateRoute(t *testing.T) {
	srv := newTestServer(nil, &mockGenerator{})

	rec := post(srv, "/v1/validate", requestBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true,"issues":[]}`, rec.Body.String())

	bad := strings.Replace(requestBody, `"ugcs":["COC005"]`, `"ugcs":["COC005"],"additionalRain":true`, 1)
	rec = post(srv, "/v1/validate", bad)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":false,"issues":[{"eventID":"HZ-1","message":"additional rain is selected but no amount was entered"}]}`, rec.Body.String())
}
