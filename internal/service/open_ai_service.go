package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/form-evaluator/internal/config"
	"github.com/fadilmartias/form-evaluator/internal/evaluator"
	"github.com/sashabaranov/go-openai"
)

// OpenAIJudge scores free-text fields with an OpenAI chat model.
type OpenAIJudge struct {
	client  *openai.Client
	model   string
	breaker *circuitBreaker
}

func NewOpenAIJudge() (*OpenAIJudge, error) {
	cfg := config.LoadOpenAIConfig()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	return NewOpenAIJudgeWithConfig(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
}

// NewOpenAIJudgeWithConfig builds a judge against any OpenAI-compatible
// endpoint. An empty baseURL keeps the public API.
func NewOpenAIJudgeWithConfig(apiKey, model, baseURL string) *OpenAIJudge {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIJudge{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		breaker: newCircuitBreaker("openai", 5, time.Minute),
	}
}

func (j *OpenAIJudge) Judge(ctx context.Context, req evaluator.JudgeRequest) (evaluator.Verdict, error) {
	if err := validateJudgeRequest(req); err != nil {
		return evaluator.Verdict{}, err
	}
	if err := j.breaker.allow(); err != nil {
		return evaluator.Verdict{}, err
	}

	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: j.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: judgeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: judgeUserPrompt(req)},
		},
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		j.breaker.failure()
		return evaluator.Verdict{}, fmt.Errorf("OpenAI API call failed: %w", err)
	}
	j.breaker.success()

	if len(resp.Choices) == 0 {
		return evaluator.Verdict{}, ErrEmptyCompletion
	}
	return parseVerdict(resp.Choices[0].Message.Content)
}
