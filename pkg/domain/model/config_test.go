package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/incidex/pkg/domain/model"
)

func TestDisplayConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		gt.NoError(t, model.DefaultDisplayConfig().Validate())
	})

	t.Run("error on duplicate severity", func(t *testing.T) {
		cfg := model.DefaultDisplayConfig()
		cfg.Severities = append(cfg.Severities, model.Severity{ID: "low", Name: "Low again"})
		gt.Error(t, cfg.Validate())
	})

	t.Run("error on duplicate category", func(t *testing.T) {
		cfg := model.DefaultDisplayConfig()
		cfg.Categories = append(cfg.Categories, model.Category{ID: "network", Name: "Net"})
		gt.Error(t, cfg.Validate())
	})

	t.Run("error without fallback severity", func(t *testing.T) {
		cfg := &model.DisplayConfig{
			Severities: []model.Severity{{ID: "high", Name: "High"}},
			Categories: model.DefaultCategories(),
		}
		err := cfg.Validate()
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("fallback severity")
	})

	t.Run("error without fallback category", func(t *testing.T) {
		cfg := &model.DisplayConfig{
			Severities: model.DefaultSeverities(),
			Categories: []model.Category{{ID: "network", Name: "Network"}},
		}
		err := cfg.Validate()
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("fallback category")
	})

	t.Run("error on empty lists", func(t *testing.T) {
		gt.Error(t, (&model.DisplayConfig{}).Validate())
	})
}

func TestDisplayConfigMerge(t *testing.T) {
	base := model.DefaultDisplayConfig()
	merged := base.Merge(&model.DisplayConfig{
		Severities: []model.Severity{{ID: "low", Name: "Low", Tone: "teal"}},
		Categories: []model.Category{{ID: "storage", Name: "Storage", Tone: "brown"}},
	})

	gt.Equal(t, len(base.Severities), len(merged.Severities))
	gt.Equal(t, "teal", merged.FindSeverityByID("low").Tone)
	gt.Equal(t, len(base.Categories)+1, len(merged.Categories))
	gt.Equal(t, "brown", merged.Category("Storage").Tone)
	gt.False(t, merged.Category("Storage").Unknown)

	// Base config is not modified
	gt.Equal(t, "green", base.FindSeverityByID("low").Tone)
	gt.True(t, base.Category("Storage").Unknown)
}

func TestDisplayConfigFallbackWithoutEntries(t *testing.T) {
	cfg := &model.DisplayConfig{}
	sev := cfg.Severity("High")
	gt.Equal(t, model.FallbackSeverityID, sev.ID)
	gt.True(t, sev.Unknown)

	cat := cfg.Category("network")
	gt.Equal(t, model.FallbackCategoryID, cat.ID)
	gt.True(t, cat.Unknown)
}
