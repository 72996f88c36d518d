package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ScoringConfig drives the evaluator and the judge backend.
type ScoringConfig struct {
	Mode             string
	JudgeProvider    string
	JudgeConcurrency int
	JudgeTimeout     time.Duration
	DynamicTypes     []string
}

var (
	scoringConfig *ScoringConfig
	scoringOnce   sync.Once
)

func LoadScoringConfig() *ScoringConfig {
	scoringOnce.Do(func() {
		scoringConfig = &ScoringConfig{
			Mode:             getEnv("SCORING_MODE", "required-optional"),
			JudgeProvider:    strings.ToLower(getEnv("JUDGE_PROVIDER", "openai")),
			JudgeConcurrency: getEnvInt("JUDGE_CONCURRENCY", 4),
			JudgeTimeout:     getEnvDuration("JUDGE_TIMEOUT", 30*time.Second),
			DynamicTypes:     splitList(getEnv("DYNAMIC_FIELD_TYPES", "text,textarea,address")),
		}
	})
	return scoringConfig
}

type CatalogConfig struct {
	ManualPath string
	LLMPath    string
	Source     string
}

var (
	catalogConfig *CatalogConfig
	catalogOnce   sync.Once
)

func LoadCatalogConfig() *CatalogConfig {
	catalogOnce.Do(func() {
		catalogConfig = &CatalogConfig{
			ManualPath: getEnv("FORM_CONFIG_PATH", "config/forms.json"),
			LLMPath:    os.Getenv("LLM_FORM_CONFIG_PATH"),
			Source:     getEnv("FORM_CONFIG_SOURCE", "manual"),
		}
	})
	return catalogConfig
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
