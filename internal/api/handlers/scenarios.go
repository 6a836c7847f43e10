package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"grid-dispatch/internal/api/models"
	"grid-dispatch/internal/config"
)

// ScenarioHandler lists the scenarios of the loaded analysis config.
type ScenarioHandler struct {
	Config *config.Config
}

func NewScenarioHandler(cfg *config.Config) *ScenarioHandler {
	return &ScenarioHandler{Config: cfg}
}

// ListScenarios handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	scenarios := make([]models.ScenarioInfo, len(h.Config.Scenarios))
	for i, s := range h.Config.Scenarios {
		countries := make([]string, 0, len(s.Countries))
		for region := range s.Countries {
			countries = append(countries, string(region))
		}
		sort.Strings(countries)
		scenarios[i] = models.ScenarioInfo{
			Name:       s.Name,
			Year:       s.Year,
			InputCosts: s.InputCosts,
			Countries:  countries,
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"analysis":  h.Config.Analysis.Name,
		"scenarios": scenarios,
		"count":     len(scenarios),
	})
}
