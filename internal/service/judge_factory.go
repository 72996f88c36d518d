package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/fadilmartias/form-evaluator/internal/evaluator"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderNone       = "none"
)

var ErrUnknownProvider = errors.New("unknown judge provider")

// NewJudge builds the judge for provider. ProviderNone yields a nil judge,
// which makes the scorer fall back to the deterministic comparator.
func NewJudge(ctx context.Context, provider string) (evaluator.Judge, error) {
	var (
		judge evaluator.Judge
		err   error
	)
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI, "":
		judge, err = NewOpenAIJudge()
	case ProviderOpenRouter:
		judge, err = NewOpenRouterJudge()
	case ProviderGemini:
		judge, err = NewGeminiJudge(ctx)
	case ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s judge: %w", provider, err)
	}
	return judge, nil
}

// NewOptionalJudge is NewJudge for the server. A provider that fails to
// initialise, usually for a missing API key, is logged and disabled instead
// of failing; only an unknown provider is an error.
func NewOptionalJudge(ctx context.Context, provider string) (evaluator.Judge, error) {
	judge, err := NewJudge(ctx, provider)
	if errors.Is(err, ErrUnknownProvider) {
		return nil, err
	}
	if err != nil {
		log.Printf("Warning: %v, running without semantic judge", err)
		return nil, nil
	}
	return judge, nil
}
