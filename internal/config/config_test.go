package config

import "testing"

func TestLoadRetrievalDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Retrieval.FusionMethod != "weighted" {
		t.Errorf("default fusion method = %q, want %q", cfg.Retrieval.FusionMethod, "weighted")
	}
	if cfg.Retrieval.TextWeight != 0.5 || cfg.Retrieval.ImageWeight != 0.5 {
		t.Errorf("default weights = %v/%v, want 0.5/0.5", cfg.Retrieval.TextWeight, cfg.Retrieval.ImageWeight)
	}
	if cfg.Retrieval.TopK != 10 {
		t.Errorf("default top k = %d, want 10", cfg.Retrieval.TopK)
	}
}

func TestLoadRetrievalOverrides(t *testing.T) {
	t.Setenv("FUSION_METHOD", "rrf")
	t.Setenv("MULTIMODAL_TEXT_WEIGHT", "0.7")
	t.Setenv("MULTIMODAL_IMAGE_WEIGHT", "0.3")
	t.Setenv("RERANK_ENABLED", "true")

	cfg := Load()

	if cfg.Retrieval.FusionMethod != "rrf" {
		t.Errorf("fusion method = %q, want %q", cfg.Retrieval.FusionMethod, "rrf")
	}
	if cfg.Retrieval.TextWeight != 0.7 || cfg.Retrieval.ImageWeight != 0.3 {
		t.Errorf("weights = %v/%v, want 0.7/0.3", cfg.Retrieval.TextWeight, cfg.Retrieval.ImageWeight)
	}
	if !cfg.Retrieval.RerankEnabled {
		t.Error("rerank should be enabled")
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback float64
		want     float64
	}{
		{"valid", "0.25", 0.5, 0.25},
		{"garbage", "not-a-number", 0.5, 0.5},
		{"unset", "", 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("FLOAT_UNDER_TEST", tt.value)
			}
			if got := getEnvAsFloat("FLOAT_UNDER_TEST", tt.fallback); got != tt.want {
				t.Errorf("getEnvAsFloat(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
