package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"signal-backtest/internal/api/models"
	"signal-backtest/internal/config"
)

// PresetHandler lists strategy preset files (examples/strategies/*.yaml).
type PresetHandler struct {
	dir string
	log zerolog.Logger
}

// NewPresetHandler creates a preset handler rooted at dir
func NewPresetHandler(dir string, log zerolog.Logger) *PresetHandler {
	// Convert to absolute path for reliability
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &PresetHandler{
		dir: dir,
		log: log.With().Str("component", "preset_handler").Str("dir", dir).Logger(),
	}
}

// ListPresets handles GET /api/v1/presets
func (h *PresetHandler) ListPresets(c *gin.Context) {
	presets := []models.PresetInfo{}

	entries, err := os.ReadDir(h.dir)
	if err != nil {
		// A missing directory just means no presets are installed.
		h.log.Warn().Err(err).Msg("read preset directory")
		c.JSON(http.StatusOK, gin.H{"presets": presets})
		return
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		sc, err := config.LoadStrategyFile(filepath.Join(h.dir, name))
		if err != nil || sc.Name == "" {
			h.log.Warn().Err(err).Str("file", name).Msg("skipping preset")
			continue
		}
		presets = append(presets, models.PresetInfo{
			ID:       strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml"),
			File:     name,
			Strategy: sc.Name,
			Params:   sc.Params,
		})
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].ID < presets[j].ID })

	c.JSON(http.StatusOK, gin.H{"presets": presets})
}
