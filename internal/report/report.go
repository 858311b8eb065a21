package report

import (
	"context"
	"errors"

	"github.com/practicelabs/interview-partner/internal/ai"
	"github.com/practicelabs/interview-partner/internal/interview"

	"go.uber.org/zap"
)

// ErrEmptyTranscript is returned when report aggregation is requested for a
// session without any question/answer pairs.
var ErrEmptyTranscript = errors.New("transcript has no question/answer pairs")

// QAPair is one question with its answer (empty when still pending).
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuestionEvaluation pairs the original transcript entry with its evaluation.
type QuestionEvaluation struct {
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	Evaluation *Evaluation `json:"evaluation"`
}

// CategoryScores holds the per-category averages across all evaluated answers.
type CategoryScores struct {
	Technical      float64 `json:"technical"`
	Communication  float64 `json:"communication"`
	ProblemSolving float64 `json:"problem_solving"`
	Structure      float64 `json:"structure"`
}

// FinalSummary condenses the report: overall score, averages and the top-3
// deduplicated findings.
type FinalSummary struct {
	OverallScore   float64        `json:"overall_score"`
	Averages       CategoryScores `json:"averages"`
	TopStrengths   []string       `json:"top_strengths"`
	TopWeaknesses  []string       `json:"top_weaknesses"`
	TopSuggestions []string       `json:"top_suggestions"`
}

// Report is the aggregated scoring over an entire transcript. Derived on
// demand, never stored.
type Report struct {
	Scores       CategoryScores       `json:"scores"`
	OverallScore float64              `json:"overall_score"`
	PerQuestion  []QuestionEvaluation `json:"per_question"`
	FinalSummary FinalSummary         `json:"final_summary"`
}

// Aggregator runs per-answer evaluation over a full transcript and folds the
// results into a final report.
type Aggregator struct {
	evaluator *Evaluator
	logger    *zap.Logger
}

func NewAggregator(generator ai.TextGenerator, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		evaluator: NewEvaluator(generator, log),
		logger:    log,
	}
}

// PairsFromSession reconstructs the ordered transcript by zipping questions
// with answers by position; a question without an answer yet pairs with "".
func PairsFromSession(session *interview.Session) []QAPair {
	pairs := make([]QAPair, 0, len(session.QuestionsAsked))
	for i, q := range session.QuestionsAsked {
		answer := ""
		if i < len(session.Answers) {
			answer = session.Answers[i]
		}
		pairs = append(pairs, QAPair{Question: q.Text, Answer: answer})
	}
	return pairs
}

// Aggregate evaluates every pair sequentially (the dedup order of findings
// depends on it) and averages the sub-scores. Empty transcripts fail with
// ErrEmptyTranscript instead of dividing by zero.
func (a *Aggregator) Aggregate(ctx context.Context, role string, pairs []QAPair) (*Report, error) {
	if len(pairs) == 0 {
		return nil, ErrEmptyTranscript
	}

	var sums CategoryScores
	perQuestion := make([]QuestionEvaluation, 0, len(pairs))
	var strengths, weaknesses, suggestions []string

	for _, pair := range pairs {
		evaluation := a.evaluator.EvaluateAnswer(ctx, role, pair.Question, pair.Answer)

		perQuestion = append(perQuestion, QuestionEvaluation{
			Question:   pair.Question,
			Answer:     pair.Answer,
			Evaluation: evaluation,
		})

		sums.Technical += evaluation.Technical
		sums.Communication += evaluation.Communication
		sums.ProblemSolving += evaluation.ProblemSolving
		sums.Structure += evaluation.Structure

		strengths = appendUnique(strengths, evaluation.Strengths)
		weaknesses = appendUnique(weaknesses, evaluation.Weaknesses)
		suggestions = appendUnique(suggestions, evaluation.Suggestions)
	}

	n := float64(len(pairs))
	averages := CategoryScores{
		Technical:      round2(sums.Technical / n),
		Communication:  round2(sums.Communication / n),
		ProblemSolving: round2(sums.ProblemSolving / n),
		Structure:      round2(sums.Structure / n),
	}

	overall := round2((averages.Technical + averages.Communication + averages.ProblemSolving + averages.Structure) / 4)

	a.logger.Debug("report aggregated",
		zap.String("role", role),
		zap.Int("pairs", len(pairs)),
		zap.Float64("overall_score", overall),
	)

	return &Report{
		Scores:       averages,
		OverallScore: overall,
		PerQuestion:  perQuestion,
		FinalSummary: FinalSummary{
			OverallScore:   overall,
			Averages:       averages,
			TopStrengths:   top3(strengths),
			TopWeaknesses:  top3(weaknesses),
			TopSuggestions: top3(suggestions),
		},
	}, nil
}

// appendUnique keeps first-seen order across the whole transcript.
func appendUnique(dst []string, items []string) []string {
	for _, item := range items {
		seen := false
		for _, existing := range dst {
			if existing == item {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, item)
		}
	}
	return dst
}

func top3(items []string) []string {
	if len(items) > 3 {
		return items[:3]
	}
	return items
}
