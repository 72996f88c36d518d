package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fadilmartias/form-evaluator/internal/evaluator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{
  "booking": {
    "title": "Booking",
    "type": "single-page",
    "pages": [{"pageNumber": 1, "fields": [
      {"id": "guest_name", "type": "text", "label": "Guest", "required": true},
      {"id": "stay_range", "type": "date-range", "label": "Stay", "required": true},
      {"id": "notes", "type": "textarea", "label": "Notes"}
    ]}],
    "groundTruth": {
      "guest_name": "Ada Lovelace",
      "stay_range": {"from": "2024-03-01", "to": "2024-03-04"},
      "notes": "Late arrival"
    }
  }
}`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	dir := t.TempDir()
	catalog := writeFile(t, dir, "forms.json", catalogJSON)
	submission := writeFile(t, dir, "sub.yaml", `
guest_name: ada lovelace
stay_range:
  from: "2024-03-01T10:00:00Z"
  to: "2024-03-04"
`)

	out, err := run(t, "score", "--catalog", catalog, "--form", "booking", "--submission", submission)
	require.NoError(t, err)

	var res evaluator.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, evaluator.ModeRequiredOptional, res.Mode)
	assert.Equal(t, 3, res.TotalFields)
	assert.Equal(t, 2, res.CorrectFields)
	assert.Equal(t, []string{"notes"}, res.MissingFields)
	assert.Equal(t, 100.0, res.SubScore(evaluator.ClassRequired))
	assert.Equal(t, 0.0, res.SubScore(evaluator.ClassOptional))
}

func TestScoreCommandFixedDynamicWithoutJudge(t *testing.T) {
	dir := t.TempDir()
	catalog := writeFile(t, dir, "forms.json", catalogJSON)
	submission := writeFile(t, dir, "sub.json", `{"guest_name": "Ada Lovelace", "stay_range": {"from": "2024-03-01", "to": "2024-03-04"}, "notes": "Arriving late"}`)

	out, err := run(t, "score", "--catalog", catalog, "--form", "booking", "--submission", submission, "--mode", "fixed-dynamic")
	require.NoError(t, err)

	var res evaluator.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 100.0, res.SubScore(evaluator.ClassFixed))
	assert.Equal(t, 0.0, res.SubScore(evaluator.ClassDynamic))
	assert.Contains(t, res.FieldResults["notes"].Feedback, "semantic judge unavailable")
}

func TestScoreCommandErrors(t *testing.T) {
	dir := t.TempDir()
	catalog := writeFile(t, dir, "forms.json", catalogJSON)
	submission := writeFile(t, dir, "sub.json", `{}`)

	_, err := run(t, "score", "--catalog", catalog, "--form", "missing", "--submission", submission)
	assert.ErrorContains(t, err, "form not found")

	_, err = run(t, "score", "--catalog", catalog, "--form", "booking", "--submission", submission, "--mode", "strict")
	assert.Error(t, err)

	_, err = run(t, "score", "--catalog", catalog, "--form", "booking", "--submission", submission, "--judge", "oracle")
	assert.Error(t, err)

	_, err = run(t, "score", "--catalog", catalog)
	assert.Error(t, err)
}

func TestFormsCommand(t *testing.T) {
	dir := t.TempDir()
	catalog := writeFile(t, dir, "forms.json", catalogJSON)

	out, err := run(t, "forms", "--catalog", catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "booking")
	assert.Contains(t, out, "single-page")
	assert.Contains(t, out, "Booking")
}
