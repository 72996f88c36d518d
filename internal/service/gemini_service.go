package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/fadilmartias/form-evaluator/internal/config"
	"github.com/fadilmartias/form-evaluator/internal/evaluator"
	"google.golang.org/genai"
)

// contentGenerator is the part of genai.Models the judge uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiJudge scores free-text fields with Gemini, retrying transient
// failures with exponential backoff.
type GeminiJudge struct {
	models         contentGenerator
	Model          string
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration
	breaker        *circuitBreaker
}

func NewGeminiJudge(ctx context.Context) (*GeminiJudge, error) {
	geminiConfig := config.LoadGeminiConfig()
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGeminiJudge(client.Models, geminiConfig.Model), nil
}

func newGeminiJudge(models contentGenerator, model string) *GeminiJudge {
	return &GeminiJudge{
		models:         models,
		Model:          model,
		MaxRetries:     3,
		BaseDelay:      time.Second,
		MaxDelay:       90 * time.Second,
		RequestTimeout: 90 * time.Second,
		breaker:        newCircuitBreaker("gemini", 5, time.Minute),
	}
}

func (s *GeminiJudge) Judge(ctx context.Context, req evaluator.JudgeRequest) (evaluator.Verdict, error) {
	if err := validateJudgeRequest(req); err != nil {
		return evaluator.Verdict{}, err
	}
	result, err := s.generate(ctx, judgeUserPrompt(req))
	if err != nil {
		return evaluator.Verdict{}, err
	}
	return parseVerdict(result.Text())
}

func (s *GeminiJudge) generate(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	if err := s.breaker.allow(); err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(0.3)),
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(judgeSystemPrompt, genai.RoleUser),
	}

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			log.Printf("Retry attempt %d/%d for Gemini judge after %v", attempt, s.MaxRetries, delay)

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				s.breaker.failure()
				return nil, fmt.Errorf("context timeout during retry: %w", timeoutCtx.Err())
			}
		}

		result, err := s.models.GenerateContent(timeoutCtx, s.Model, genai.Text(prompt), genConfig)
		if err == nil {
			s.breaker.success()
			if err := validateGenerateResponse(result); err != nil {
				return nil, fmt.Errorf("invalid response: %w", err)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			log.Printf("Non-retryable error: %v", err)
			s.breaker.failure()
			return nil, fmt.Errorf("generate content failed: %w", err)
		}
		log.Printf("Retryable error on attempt %d: %v", attempt+1, err)
	}

	s.breaker.failure()
	return nil, fmt.Errorf("max retries (%d) exceeded for Gemini judge: %w", s.MaxRetries, lastErr)
}

func (s *GeminiJudge) calculateBackoff(attempt int) time.Duration {
	delay := s.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.MaxDelay {
		delay = s.MaxDelay
	}
	return delay
}

func (s *GeminiJudge) ResetCircuitBreaker() {
	s.breaker.reset()
}

func (s *GeminiJudge) GetCircuitBreakerStatus() (consecutiveErrors int, isOpen bool) {
	return s.breaker.status()
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	code := 0
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	case 400, 401, 403, 404:
		return false
	}

	errMsg := err.Error()
	for _, transient := range []string{"connection refused", "connection reset", "timeout", "temporary failure", "EOF"} {
		if strings.Contains(errMsg, transient) {
			return true
		}
	}
	return false
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}
