package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-dispatch/internal/data"
	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

func testRouter(outputDir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewResultsHandler(outputDir)
	api := router.Group("/api/v1")
	api.GET("/analyses", h.ListAnalyses)
	api.GET("/analyses/:analysis/runs", h.ListRuns)
	api.GET("/analyses/:analysis/summary", h.GetSummary)
	api.GET("/analyses/:analysis/rank", h.RankScenarios)
	api.GET("/analyses/:analysis/runs/:run/regions/:region", h.GetSeries)
	return router
}

// writeOutputTree lays out one analysis with one finished run.
func writeOutputTree(t *testing.T) string {
	t.Helper()
	outputDir := t.TempDir()
	runDir := filepath.Join(outputDir, "cz-study", "baseline-pecd-1995")
	require.NoError(t, os.MkdirAll(runDir, 0o755))

	index := make([]time.Time, 4)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range index {
		index[i] = start.Add(time.Duration(i) * time.Hour)
	}
	frame := grid.NewFrame(index)
	copy(frame.Ensure(grid.KeyLoad), []float64{6000, 6100, 6200, 6300})
	copy(frame.Ensure(grid.KeyPrice), []float64{50, 55, 60, 65})
	f, err := os.Create(filepath.Join(runDir, "CZ.csv"))
	require.NoError(t, err)
	require.NoError(t, frame.WriteCSV(f, nil))
	require.NoError(t, f.Close())

	rows := []grid.StatRow{
		{Name: "baseline-pecd-1995", Region: model.Czechia, Season: grid.SeasonYear,
			Source: "lignite", Stat: grid.StatOpexMnEUR, Val: 1200},
		{Name: "baseline-pecd-1995", Region: model.Czechia, Season: grid.SeasonYear,
			Source: grid.SourceTotal, Stat: grid.StatEmissionsMtCO2, Val: 18},
		{Name: "phase-out-pecd-1995", Region: model.Czechia, Season: grid.SeasonYear,
			Source: "ccgt", Stat: grid.StatOpexMnEUR, Val: 2400},
	}
	summary := filepath.Join(outputDir, "cz-study", "cz-study-complete.csv")
	require.NoError(t, data.AppendSummary(summary, rows))
	return outputDir
}

func get(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestListAnalyses(t *testing.T) {
	router := testRouter(writeOutputTree(t))

	w, body := get(t, router, "/api/v1/analyses")
	require.Equal(t, http.StatusOK, w.Code)
	analyses := body["analyses"].([]any)
	require.Len(t, analyses, 1)
	first := analyses[0].(map[string]any)
	assert.Equal(t, "cz-study", first["name"])
	assert.Equal(t, float64(1), first["runs"])
	assert.Equal(t, true, first["has_summary"])
}

func TestListRuns(t *testing.T) {
	router := testRouter(writeOutputTree(t))

	w, body := get(t, router, "/api/v1/analyses/cz-study/runs")
	require.Equal(t, http.StatusOK, w.Code)
	runs := body["runs"].([]any)
	require.Len(t, runs, 1)
	run := runs[0].(map[string]any)
	assert.Equal(t, "baseline-pecd-1995", run["name"])
	assert.Equal(t, []any{"CZ"}, run["regions"])
	assert.Equal(t, false, run["has_model"])

	w, _ = get(t, router, "/api/v1/analyses/nope/runs")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSummaryFilters(t *testing.T) {
	router := testRouter(writeOutputTree(t))

	w, body := get(t, router, "/api/v1/analyses/cz-study/summary")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), body["count"])

	w, body = get(t, router, "/api/v1/analyses/cz-study/summary?scenario=baseline-pecd-1995")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["count"])
	rows := body["rows"].([]any)
	first := rows[0].(map[string]any)
	assert.Equal(t, "CZ", first["region"])
	assert.Equal(t, "opex_mn_EUR", first["stat"])
}

func TestRankScenarios(t *testing.T) {
	router := testRouter(writeOutputTree(t))

	w, body := get(t, router, "/api/v1/analyses/cz-study/rank")
	require.Equal(t, http.StatusOK, w.Code)
	rankings := body["rankings"].([]any)
	require.Len(t, rankings, 2)
	// The baseline run is the cheaper of the two.
	first := rankings[0].(map[string]any)
	assert.Equal(t, "baseline-pecd-1995", first["name"])
	assert.Equal(t, float64(1), first["rank"])
	assert.InDelta(t, 1.2, first["total_costs_bn_eur"].(float64), 1e-9)
}

func TestGetSeries(t *testing.T) {
	router := testRouter(writeOutputTree(t))

	path := "/api/v1/analyses/cz-study/runs/baseline-pecd-1995/regions/CZ"
	w, body := get(t, router, path)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CZ", body["region"])
	columns := body["columns"].(map[string]any)
	load := columns[grid.KeyLoad].([]any)
	require.Len(t, load, 4)
	assert.Equal(t, float64(6000), load[0])

	w, body = get(t, router, path+"?columns="+grid.KeyPrice+"&from=1&to=3")
	require.Equal(t, http.StatusOK, w.Code)
	columns = body["columns"].(map[string]any)
	require.Len(t, columns, 1)
	price := columns[grid.KeyPrice].([]any)
	require.Len(t, price, 2)
	assert.Equal(t, float64(55), price[0])

	w, _ = get(t, router, path+"?columns=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = get(t, router, path+"?from=3&to=1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = get(t, router, "/api/v1/analyses/cz-study/runs/baseline-pecd-1995/regions/DE")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPathNameRejectsTraversal(t *testing.T) {
	router := testRouter(writeOutputTree(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/..%2f../runs", nil)
	router.ServeHTTP(w, req)
	assert.NotEqual(t, http.StatusOK, w.Code)
}
