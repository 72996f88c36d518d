package service

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fadilmartias/form-evaluator/internal/evaluator"
	"github.com/tidwall/gjson"
)

var (
	ErrEmptyJudgeInput = errors.New("expected and actual values are required")
	ErrEmptyCompletion = errors.New("no response content from model")
)

const judgeSystemPrompt = `You are an evaluator comparing two text values for a form field. Your task is to determine how well the submitted value matches the expected value. Consider:
- Semantic similarity (do they mean the same thing?)
- Acceptable variations (abbreviations, formatting differences, minor wording changes)
- Context relevance (is the submitted value appropriate for this field?)

Return ONLY a JSON object with:
- "score": a number between 0 and 1 (1.0 = perfect match, 0.0 = completely different)
- "feedback": a short one-line explanation (max 100 characters) explaining why this score was given

Be lenient with formatting, capitalization, and minor wording differences. Focus on whether the information is semantically equivalent.`

// defaultJudgeScore is used when the model answers without a numeric score.
const defaultJudgeScore = 0.5

func judgeUserPrompt(req evaluator.JudgeRequest) string {
	label := req.FieldLabel
	if label == "" {
		label = "Text field"
	}
	return fmt.Sprintf(`Field: %s
Expected value: %q
Submitted value: %q

Evaluate the similarity and return a JSON object with "score" (0-1) and "feedback" (one-line explanation).`,
		label, req.Expected, req.Actual)
}

func validateJudgeRequest(req evaluator.JudgeRequest) error {
	if strings.TrimSpace(req.Expected) == "" || strings.TrimSpace(req.Actual) == "" {
		return ErrEmptyJudgeInput
	}
	return nil
}

// parseVerdict reads {score, feedback} from a model completion. Markdown code
// fences around the JSON are tolerated.
func parseVerdict(content string) (evaluator.Verdict, error) {
	content = stripCodeFence(content)
	if content == "" {
		return evaluator.Verdict{}, ErrEmptyCompletion
	}
	if !gjson.Valid(content) {
		return evaluator.Verdict{}, fmt.Errorf("model returned invalid JSON: %.80q", content)
	}

	score := defaultJudgeScore
	if s := gjson.Get(content, "score"); s.Type == gjson.Number {
		score = evaluator.ClampScore(s.Float())
	}

	feedback := ""
	if f := gjson.Get(content, "feedback"); f.Type == gjson.String {
		feedback = strings.TrimSpace(f.String())
	}
	if feedback == "" {
		feedback = fmt.Sprintf("Score: %.0f%%", math.Round(score*100))
	}
	return evaluator.Verdict{Score: score, Feedback: feedback}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
