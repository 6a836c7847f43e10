// Command demand converts the wide national demand-estimates CSV into the
// long parquet file the model loads. One-off preparation step; the CSV has
// one row per country and hour with a column per weather year.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"grid-dispatch/internal/data"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "Demand estimates CSV (country,month,day,hour,<year>...)")
		outputPath = flag.String("output", "", "Output parquet path (default: derived from the target year)")
		targetYear = flag.Int("target-year", data.DefaultTargetYear, "Demand projection target year")
		dataDir    = flag.String("data-dir", "data", "Data directory holding the pecd/ subdirectory")
	)
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("--input is required")
	}
	if *outputPath == "" {
		*outputPath = filepath.Join(*dataDir, "pecd",
			fmt.Sprintf("PECD-country-demand_national_estimates-%d.parquet", *targetYear))
	}

	in, err := os.Open(*inputPath)
	if err != nil {
		log.Fatalf("Failed to open input: %v", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	out, err := os.Create(*outputPath)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}

	if err := data.TransformDemandEstimates(in, out); err != nil {
		out.Close()
		os.Remove(*outputPath)
		log.Fatalf("Failed to transform demand estimates: %v", err)
	}
	if err := out.Close(); err != nil {
		log.Fatalf("Failed to finish output: %v", err)
	}

	fmt.Printf("Wrote %s\n", *outputPath)
}
