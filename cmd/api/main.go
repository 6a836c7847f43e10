// Command api serves finished dispatch runs over HTTP: analyses, run
// listings, summary statistics and hourly series slices, all read
// straight from the output directory of a sweep.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"grid-dispatch/internal/api/handlers"
	"grid-dispatch/internal/api/middleware"
	"grid-dispatch/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "analysis config file")
	outputDir := flag.String("output", "", "output tree to serve; defaults to the config's output_dir")
	port := flag.String("port", "8080", "listen port")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "api")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("loading config", "err", err)
		os.Exit(1)
	}
	dir := *outputDir
	if dir == "" {
		dir = cfg.Analysis.OutputDir
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Error("output directory not found", "dir", dir)
		os.Exit(1)
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler())

	results := handlers.NewResultsHandler(dir)
	scenarios := handlers.NewScenarioHandler(cfg)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/analyses", results.ListAnalyses)
		api.GET("/analyses/:analysis/runs", results.ListRuns)
		api.GET("/analyses/:analysis/summary", results.GetSummary)
		api.GET("/analyses/:analysis/summary/pivot", results.GetPivot)
		api.GET("/analyses/:analysis/rank", results.RankScenarios)
		api.GET("/analyses/:analysis/runs/:run/regions/:region", results.GetSeries)

		api.GET("/scenarios", scenarios.ListScenarios)
	}

	addr := fmt.Sprintf(":%s", *port)
	log.Info("serving results", "addr", addr, "output", dir)
	if err := router.Run(addr); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
