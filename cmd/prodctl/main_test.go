package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeSample(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, "", append([]string{"sample"}, args...)...)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o600))
	return path
}

func TestSample(t *testing.T) {
	out, err := execute(t, "", "sample", "--hazard", "FA.W.NonConvective", "--ugc", "coc005,COC001", "--count", "2")
	require.NoError(t, err)

	var set domain.EventSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	require.Len(t, set.Events, 2)
	assert.Equal(t, "HZ-1001", set.Events[0].EventID)
	assert.Equal(t, "NonConvective", set.Events[0].Subtype)
	assert.Equal(t, []string{"COC005", "COC001"}, set.Events[0].UGCs())
	assert.Equal(t, sampleStart.Add(8*time.Hour), set.Events[0].EndTime)
	assert.Equal(t, time.Minute, set.Events[1].CreationTime.Sub(set.Events[0].CreationTime))
	assert.Equal(t, domain.ModePractice, set.Attributes.Session.HazardMode)
}

func TestSample_BadHazard(t *testing.T) {
	_, err := execute(t, "", "sample", "--hazard", "FLOOD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PHEN.SIG")
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "", "validate", writeSample(t))
	require.NoError(t, err)
	assert.Contains(t, out, "ok   HZ-1001")
}

func TestValidate_ReportsInvalidEvents(t *testing.T) {
	out, err := execute(t, "", "sample")
	require.NoError(t, err)
	bad := strings.Replace(out, `"ugcs"`, `"additionalRain": true, "ugcs"`, 1)

	out, err = execute(t, bad, "validate", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 events invalid")
	assert.Contains(t, out, "FAIL HZ-1001: additional rain is selected but no amount was entered")
}

func TestGenerate_Preview(t *testing.T) {
	out, err := execute(t, "", "generate", writeSample(t))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, false, doc["issued"])
	require.Len(t, doc["products"], 1)
	assert.Equal(t, "FFA", doc["products"].([]any)[0].(map[string]any)["productID"])
}

func TestGenerate_IssuePersists(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hazards.db")
	path := writeSample(t)

	out, err := execute(t, "", "generate", "--issue", "--db", db, path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, true, doc["issued"])
	assert.FileExists(t, db)
}

func TestGenerate_MissingFile(t *testing.T) {
	_, err := execute(t, "", "generate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
