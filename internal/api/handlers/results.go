// Package handlers implements the read-only results API over a sweep
// output tree.
package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"grid-dispatch/internal/analysis"
	"grid-dispatch/internal/api/models"
	"grid-dispatch/internal/grid"
)

// ResultsHandler serves finished runs from the output directory. It holds
// no state beyond the directory path; every request reads the tree fresh
// so a sweep can keep appending runs while the server is up.
type ResultsHandler struct {
	OutputDir string
}

func NewResultsHandler(outputDir string) *ResultsHandler {
	return &ResultsHandler{OutputDir: outputDir}
}

// ListAnalyses handles GET /api/v1/analyses
func (h *ResultsHandler) ListAnalyses(c *gin.Context) {
	entries, err := os.ReadDir(h.OutputDir)
	if err != nil {
		internalError(c, "OUTPUT_READ_ERROR", err)
		return
	}
	analyses := []models.AnalysisInfo{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info := models.AnalysisInfo{Name: e.Name()}
		if runs, err := h.listRuns(e.Name()); err == nil {
			info.Runs = len(runs)
		}
		if _, err := os.Stat(h.summaryPath(e.Name())); err == nil {
			info.HasSummary = true
		}
		analyses = append(analyses, info)
	}
	c.JSON(http.StatusOK, gin.H{"analyses": analyses, "count": len(analyses)})
}

// ListRuns handles GET /api/v1/analyses/:analysis/runs
func (h *ResultsHandler) ListRuns(c *gin.Context) {
	name, ok := pathName(c, "analysis")
	if !ok {
		return
	}
	runs, err := h.listRuns(name)
	if err != nil {
		if os.IsNotExist(err) {
			notFound(c, fmt.Sprintf("no analysis named %q", name))
			return
		}
		internalError(c, "OUTPUT_READ_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// GetSummary handles GET /api/v1/analyses/:analysis/summary. The optional
// scenario, region and season query parameters filter the rows.
func (h *ResultsHandler) GetSummary(c *gin.Context) {
	name, ok := pathName(c, "analysis")
	if !ok {
		return
	}
	rows, err := analysis.LoadSummaries(h.summaryPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			notFound(c, fmt.Sprintf("no summary for analysis %q", name))
			return
		}
		internalError(c, "SUMMARY_READ_ERROR", err)
		return
	}

	scenario := c.Query("scenario")
	region := c.Query("region")
	season := c.Query("season")
	out := []models.StatRow{}
	for _, row := range rows {
		if scenario != "" && row.Name != scenario {
			continue
		}
		if region != "" && string(row.Region) != region {
			continue
		}
		if season != "" && string(row.Season) != season {
			continue
		}
		out = append(out, models.StatRow{
			Name:   row.Name,
			Region: string(row.Region),
			Season: string(row.Season),
			Source: row.Source,
			Stat:   string(row.Stat),
			Val:    row.Val,
		})
	}
	c.JSON(http.StatusOK, gin.H{"rows": out, "count": len(out)})
}

// GetPivot handles GET /api/v1/analyses/:analysis/summary/pivot. The pivot
// is served as the CSV the sweep wrote, one column per source.
func (h *ResultsHandler) GetPivot(c *gin.Context) {
	name, ok := pathName(c, "analysis")
	if !ok {
		return
	}
	path := strings.TrimSuffix(h.summaryPath(name), ".csv") + "-pivot.csv"
	if _, err := os.Stat(path); err != nil {
		notFound(c, fmt.Sprintf("no pivot for analysis %q", name))
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// RankScenarios handles GET /api/v1/analyses/:analysis/rank
func (h *ResultsHandler) RankScenarios(c *gin.Context) {
	name, ok := pathName(c, "analysis")
	if !ok {
		return
	}
	rows, err := analysis.LoadSummaries(h.summaryPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			notFound(c, fmt.Sprintf("no summary for analysis %q", name))
			return
		}
		internalError(c, "SUMMARY_READ_ERROR", err)
		return
	}

	ranked := analysis.Rank(analysis.Summarize(rows))
	rankings := make([]models.Ranking, len(ranked))
	for i, s := range ranked {
		rankings[i] = models.Ranking{
			Rank:              i + 1,
			Name:              s.Name,
			TotalCostsBnEUR:   s.TotalCostsBnEUR,
			CapexMnEUR:        s.CapexMnEUR,
			OpexMnEUR:         s.OpexMnEUR,
			EmissionsMtCO2:    s.EmissionsMtCO2,
			CoalTWh:           s.CoalTWh,
			CurtailmentTWh:    s.CurtailmentTWh,
			AvgPriceEURPerMWh: s.AvgPriceEURPerMWh,
		}
	}
	c.JSON(http.StatusOK, gin.H{"rankings": rankings})
}

// GetSeries handles GET /api/v1/analyses/:analysis/runs/:run/regions/:region.
// Query parameters: columns (comma-separated, default all), from and to
// (hour offsets into the stored frame).
func (h *ResultsHandler) GetSeries(c *gin.Context) {
	name, ok := pathName(c, "analysis")
	if !ok {
		return
	}
	run, ok := pathName(c, "run")
	if !ok {
		return
	}
	region, ok := pathName(c, "region")
	if !ok {
		return
	}

	path := filepath.Join(h.OutputDir, name, run, region+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			notFound(c, fmt.Sprintf("no stored solution for %s in run %s/%s", region, name, run))
			return
		}
		internalError(c, "SOLUTION_READ_ERROR", err)
		return
	}
	defer f.Close()

	frame, _, err := grid.ReadCSV(f)
	if err != nil {
		internalError(c, "SOLUTION_READ_ERROR", err)
		return
	}

	from, to, err := hourRange(c, frame.Len())
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_RANGE", Message: err.Error()},
		})
		return
	}

	wanted := frame.Columns()
	if cols := c.Query("columns"); cols != "" {
		wanted = strings.Split(cols, ",")
	}
	columns := map[string][]float64{}
	for _, col := range wanted {
		series := frame.Column(col)
		if series == nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "UNKNOWN_COLUMN",
					Message: fmt.Sprintf("no column %q in the stored solution", col),
				},
			})
			return
		}
		columns[col] = series[from:to]
	}

	c.JSON(http.StatusOK, models.SeriesResponse{
		Region:  region,
		Index:   frame.Index()[from:to],
		Columns: columns,
	})
}

func (h *ResultsHandler) summaryPath(analysisName string) string {
	return filepath.Join(h.OutputDir, analysisName, analysisName+"-complete.csv")
}

func (h *ResultsHandler) listRuns(analysisName string) ([]models.RunInfo, error) {
	entries, err := os.ReadDir(filepath.Join(h.OutputDir, analysisName))
	if err != nil {
		return nil, err
	}
	runs := []models.RunInfo{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		run := models.RunInfo{Name: e.Name(), Regions: []string{}}
		runDir := filepath.Join(h.OutputDir, analysisName, e.Name())
		files, err := os.ReadDir(runDir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			switch {
			case f.Name() == "model.lp":
				run.HasModel = true
			case strings.HasSuffix(f.Name(), ".csv"):
				run.Regions = append(run.Regions, strings.TrimSuffix(f.Name(), ".csv"))
			}
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// hourRange parses the from/to query parameters and clamps them to the
// frame length. to is exclusive and defaults to the full frame.
func hourRange(c *gin.Context, n int) (int, int, error) {
	from, to := 0, n
	if s := c.Query("from"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return 0, 0, fmt.Errorf("from must be a non-negative hour offset, got %q", s)
		}
		from = v
	}
	if s := c.Query("to"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return 0, 0, fmt.Errorf("to must be a non-negative hour offset, got %q", s)
		}
		to = v
	}
	if from > n {
		from = n
	}
	if to > n {
		to = n
	}
	if from > to {
		return 0, 0, fmt.Errorf("from %d is past to %d", from, to)
	}
	return from, to, nil
}

// pathName reads a path parameter and rejects anything that could escape
// the output directory.
func pathName(c *gin.Context, param string) (string, bool) {
	name := c.Param(param)
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, "/\\") {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_NAME",
				Message: fmt.Sprintf("invalid %s name %q", param, name),
			},
		})
		return "", false
	}
	return name, true
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error: models.ErrorDetail{Code: "NOT_FOUND", Message: message},
	})
}

func internalError(c *gin.Context, code string, err error) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: err.Error()},
	})
}
