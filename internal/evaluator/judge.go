package evaluator

import (
	"context"
	"errors"
	"math"
)

// JudgeMatchThreshold is the judge score at which a dynamic field counts as
// correct.
const JudgeMatchThreshold = 0.8

// ErrNoJudge is reported in feedback when a dynamic field is scored without a
// judge.
var ErrNoJudge = errors.New("semantic judge not configured")

// JudgeRequest is one free-text comparison.
type JudgeRequest struct {
	Expected   string `json:"expected"`
	Actual     string `json:"actual"`
	FieldLabel string `json:"fieldLabel,omitempty"`
}

// Verdict is the judge's answer.
type Verdict struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Judge scores the semantic similarity of two texts. Implementations call
// out to a language model and may fail for any network reason.
type Judge interface {
	Judge(ctx context.Context, req JudgeRequest) (Verdict, error)
}

// JudgeFunc adapts a function to Judge.
type JudgeFunc func(ctx context.Context, req JudgeRequest) (Verdict, error)

func (f JudgeFunc) Judge(ctx context.Context, req JudgeRequest) (Verdict, error) {
	return f(ctx, req)
}

// ClampScore forces s into [0, 1]; NaN becomes 0.
func ClampScore(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	return math.Max(0, math.Min(1, s))
}
