package evaluator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultJudgeConcurrency = 4

// Scorer compares submissions against ground truth. A Scorer holds no
// per-evaluation state and is safe for concurrent use.
type Scorer struct {
	classifier   FieldClassifier
	judge        Judge
	concurrency  int
	judgeTimeout time.Duration
}

type Option func(*Scorer)

// WithClassifier replaces the default required/optional classifier.
func WithClassifier(c FieldClassifier) Option {
	return func(s *Scorer) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithJudge sets the judge used for dynamic fields.
func WithJudge(j Judge) Option {
	return func(s *Scorer) { s.judge = j }
}

// WithConcurrency bounds the number of judge calls in flight.
func WithConcurrency(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithJudgeTimeout bounds each judge call. Zero means no per-call limit.
func WithJudgeTimeout(d time.Duration) Option {
	return func(s *Scorer) { s.judgeTimeout = d }
}

func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		classifier:  RequiredClassifier{},
		concurrency: defaultJudgeConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scorer) Mode() Mode { return s.classifier.Mode() }

// Score produces one FieldResult per ground-truth id. Judge failures only
// zero the affected field. The only error is ctx ending before every judge
// call has returned, in which case no result is produced.
func (s *Scorer) Score(ctx context.Context, submission, groundTruth Values, schema Schema) (*ComparisonResult, error) {
	ids := orderedIDs(groundTruth, schema)
	results := make([]FieldResult, len(ids))
	labels := make([]string, len(ids))
	var pending []int

	for i, id := range ids {
		desc, known := schema.Lookup(id)
		if !known {
			desc = fallbackDescriptor(id)
		}
		labels[i] = desc.DisplayLabel()

		expected := groundTruth[id]
		actual := submission[id]
		class := s.classifier.Classify(desc, known)
		fr := FieldResult{
			Expected:  expected,
			Actual:    actual,
			FieldType: desc.Type,
			Required:  desc.Required,
			Class:     class,
		}

		switch class {
		case ClassOptional:
			fr.Match = !actual.IsEmpty()
			fr.Score = binary(fr.Match)
		case ClassDynamic:
			if expected.IsNull() || actual.IsEmpty() {
				fr.Match = CompareKind(expected, actual, desc.Kind())
				fr.Score = binary(fr.Match)
				if actual.IsEmpty() {
					fr.Feedback = "no value submitted"
				}
				break
			}
			pending = append(pending, i)
		default:
			fr.Match = CompareKind(expected, actual, desc.Kind())
			fr.Score = binary(fr.Match)
		}
		results[i] = fr
	}

	if len(pending) > 0 {
		var g errgroup.Group
		g.SetLimit(s.concurrency)
		for _, i := range pending {
			g.Go(func() error {
				results[i] = s.judgeField(ctx, results[i], labels[i])
				return nil
			})
		}
		_ = g.Wait()
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("score submission: %w", err)
	}

	return s.aggregate(ids, results, submission, groundTruth), nil
}

func (s *Scorer) judgeField(ctx context.Context, fr FieldResult, label string) (out FieldResult) {
	out = fr
	defer func() {
		if r := recover(); r != nil {
			out.Match, out.Score = false, 0
			out.Feedback = fmt.Sprintf("semantic judge unavailable: panic: %v", r)
		}
	}()

	if s.judge == nil {
		out.Feedback = "semantic judge unavailable: " + ErrNoJudge.Error()
		return out
	}
	if s.judgeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.judgeTimeout)
		defer cancel()
	}

	v, err := s.judge.Judge(ctx, JudgeRequest{
		Expected:   fr.Expected.Text(),
		Actual:     fr.Actual.Text(),
		FieldLabel: label,
	})
	if err != nil {
		out.Feedback = fmt.Sprintf("semantic judge unavailable: %v", err)
		return out
	}
	out.Score = ClampScore(v.Score)
	out.Match = out.Score >= JudgeMatchThreshold
	out.Feedback = v.Feedback
	return out
}

func (s *Scorer) aggregate(ids []string, results []FieldResult, submission, groundTruth Values) *ComparisonResult {
	mode := s.classifier.Mode()
	res := &ComparisonResult{
		Mode:          mode,
		TotalFields:   len(ids),
		MissingFields: []string{},
		ExtraFields:   []string{},
		FieldResults:  make(map[string]FieldResult, len(ids)),
		Buckets:       make(map[Class]Bucket, 2),
	}
	for _, c := range mode.Classes() {
		res.Buckets[c] = Bucket{Fields: []string{}}
	}

	var total float64
	sums := make(map[Class]float64, 2)
	for i, id := range ids {
		fr := results[i]
		res.FieldResults[id] = fr
		total += fr.Score
		sums[fr.Class] += fr.Score

		b := res.Buckets[fr.Class]
		b.Fields = append(b.Fields, id)
		res.Buckets[fr.Class] = b

		if fr.Match {
			res.CorrectFields++
		} else if fr.Actual.IsEmpty() {
			res.MissingFields = append(res.MissingFields, id)
		}
	}
	res.IncorrectFields = res.TotalFields - res.CorrectFields
	res.Accuracy = percent(total, res.TotalFields, 0)
	for c, b := range res.Buckets {
		b.Score = percent(sums[c], len(b.Fields), 100)
		res.Buckets[c] = b
	}

	for id := range submission {
		if _, ok := groundTruth[id]; !ok {
			res.ExtraFields = append(res.ExtraFields, id)
		}
	}
	sort.Strings(res.ExtraFields)
	return res
}

// orderedIDs lists ground-truth ids in schema order, then the unknown ones
// sorted.
func orderedIDs(groundTruth Values, schema Schema) []string {
	ids := make([]string, 0, len(groundTruth))
	seen := make(map[string]struct{}, len(groundTruth))
	for _, f := range schema.fields {
		if _, ok := groundTruth[f.ID]; ok {
			ids = append(ids, f.ID)
			seen[f.ID] = struct{}{}
		}
	}
	var rest []string
	for id := range groundTruth {
		if _, ok := seen[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

func binary(match bool) float64 {
	if match {
		return 1
	}
	return 0
}
