package config

import (
	"os"
	"sync"
)

type OpenAIConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, e.g. for a local proxy.
	BaseURL string
}

var (
	openAIConfig *OpenAIConfig
	openAIOnce   sync.Once
)

func LoadOpenAIConfig() *OpenAIConfig {
	openAIOnce.Do(func() {
		openAIConfig = &OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		}
	})
	return openAIConfig
}
