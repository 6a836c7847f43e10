package dispatch

import (
	"fmt"
	"os"
	"path/filepath"

	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

func solutionPath(dir string, region model.Region) string {
	return filepath.Join(dir, string(region)+".csv")
}

// StoreSolution writes one CSV per region with the full hourly frame. The
// price type column is stored alongside the numeric columns.
func StoreSolution(dir string, grids map[model.Region]*grid.CountryGrid) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for region, g := range grids {
		path := solutionPath(dir, region)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("storing solution for %s: %w", region, err)
		}
		var extra map[string][]string
		if g.PriceType != nil {
			extra = map[string][]string{grid.KeyPriceType: g.PriceType}
		}
		if err := g.Data.WriteCSV(f, extra); err != nil {
			f.Close()
			return fmt.Errorf("storing solution for %s: %w", region, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// LoadSolution replaces the hourly frames of the given grids with a
// previously stored solution. The model parameters of the grids must match
// the run that produced the files; optimized capacities are not persisted.
func LoadSolution(dir string, grids map[model.Region]*grid.CountryGrid) error {
	for region, g := range grids {
		path := solutionPath(dir, region)
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("loading solution for %s: %w", region, err)
		}
		frame, extra, err := grid.ReadCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("loading solution for %s: %w", region, err)
		}
		g.Data = frame
		g.PriceType = extra[grid.KeyPriceType]
		g.Complete = true
	}
	return nil
}

// HasSolution reports whether the directory holds a stored solution for all
// of the given regions.
func HasSolution(dir string, regions []model.Region) bool {
	for _, region := range regions {
		if _, err := os.Stat(solutionPath(dir, region)); err != nil {
			return false
		}
	}
	return true
}
