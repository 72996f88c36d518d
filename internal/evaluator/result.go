package evaluator

import "math"

// FieldResult is the verdict for one ground-truth field.
type FieldResult struct {
	Expected  Value     `json:"expected"`
	Actual    Value     `json:"actual"`
	Match     bool      `json:"match"`
	Score     float64   `json:"score"`
	FieldType FieldType `json:"fieldType"`
	Required  bool      `json:"required"`
	Class     Class     `json:"class"`
	Feedback  string    `json:"feedback,omitempty"`
}

// Bucket is the score of one class of fields.
type Bucket struct {
	Fields []string `json:"fields"`
	Score  float64  `json:"score"`
}

// ComparisonResult is the outcome of scoring one submission.
type ComparisonResult struct {
	Mode            Mode                   `json:"mode"`
	TotalFields     int                    `json:"totalFields"`
	CorrectFields   int                    `json:"correctFields"`
	IncorrectFields int                    `json:"incorrectFields"`
	MissingFields   []string               `json:"missingFields"`
	ExtraFields     []string               `json:"extraFields"`
	FieldResults    map[string]FieldResult `json:"fieldResults"`
	Accuracy        float64                `json:"accuracy"`
	Buckets         map[Class]Bucket       `json:"buckets"`
}

// SubScore returns the bucket score of a class, 100 when the class is absent.
func (r *ComparisonResult) SubScore(c Class) float64 {
	b, ok := r.Buckets[c]
	if !ok {
		return 100
	}
	return b.Score
}

// Primary and Secondary are the two sub-scores of the result's mode, e.g.
// required then optional.
func (r *ComparisonResult) Primary() float64 {
	return r.SubScore(r.Mode.Classes()[0])
}

func (r *ComparisonResult) Secondary() float64 {
	return r.SubScore(r.Mode.Classes()[1])
}

func percent(sum float64, n int, empty float64) float64 {
	if n == 0 {
		return empty
	}
	return round2(100 * sum / float64(n))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
