package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fadilmartias/form-evaluator/internal/config"
	"github.com/fadilmartias/form-evaluator/internal/evaluator"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// OpenRouterJudge scores free-text fields through the OpenRouter chat
// completions API.
type OpenRouterJudge struct {
	client  *resty.Client
	model   string
	breaker *circuitBreaker
}

func NewOpenRouterJudge() (*OpenRouterJudge, error) {
	cfg := config.LoadOpenRouterConfig()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not set")
	}
	return NewOpenRouterJudgeWithConfig(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
}

func NewOpenRouterJudgeWithConfig(apiKey, model, baseURL string) *OpenRouterJudge {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(90 * time.Second)
	return &OpenRouterJudge{
		client:  client,
		model:   model,
		breaker: newCircuitBreaker("openrouter", 5, time.Minute),
	}
}

func (j *OpenRouterJudge) Judge(ctx context.Context, req evaluator.JudgeRequest) (evaluator.Verdict, error) {
	if err := validateJudgeRequest(req); err != nil {
		return evaluator.Verdict{}, err
	}
	if err := j.breaker.allow(); err != nil {
		return evaluator.Verdict{}, err
	}

	resp, err := j.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model": j.model,
			"messages": []map[string]string{
				{"role": "system", "content": judgeSystemPrompt},
				{"role": "user", "content": judgeUserPrompt(req)},
			},
			"temperature":     0.3,
			"response_format": map[string]string{"type": "json_object"},
		}).
		Post("/chat/completions")
	if err != nil {
		j.breaker.failure()
		return evaluator.Verdict{}, fmt.Errorf("openrouter request failed: %w", err)
	}
	if resp.IsError() {
		j.breaker.failure()
		msg := gjson.Get(resp.String(), "error.message").String()
		if msg == "" {
			msg = resp.Status()
		}
		log.Printf("OpenRouter returned %d: %s", resp.StatusCode(), msg)
		return evaluator.Verdict{}, fmt.Errorf("openrouter returned %d: %s", resp.StatusCode(), msg)
	}
	j.breaker.success()

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return evaluator.Verdict{}, ErrEmptyCompletion
	}
	return parseVerdict(text)
}
