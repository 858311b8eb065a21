package report

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	_ "embed"

	"github.com/practicelabs/interview-partner/internal/ai"
	"github.com/practicelabs/interview-partner/internal/logger"

	"go.uber.org/zap"
)

//go:embed prompt.md
var evalPromptTemplate string

// Evaluation is the per-answer result: four sub-scores in [0,10] plus
// qualitative findings.
type Evaluation struct {
	Technical      float64  `json:"technical"`
	Communication  float64  `json:"communication"`
	ProblemSolving float64  `json:"problem_solving"`
	Structure      float64  `json:"structure"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	Suggestions    []string `json:"suggestions"`
}

// Evaluator scores a single question/answer pair through the delegate,
// guaranteeing a result: delegate failures and unparseable output fall back
// to a deterministic word-count heuristic.
type Evaluator struct {
	generator ai.TextGenerator
	logger    *zap.Logger
}

func NewEvaluator(generator ai.TextGenerator, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{generator: generator, logger: log}
}

// EvaluateAnswer never fails; the heuristic fallback keeps report generation
// available when the delegate is down or returns garbage.
func (e *Evaluator) EvaluateAnswer(ctx context.Context, role, question, answer string) *Evaluation {
	prompt := buildEvalPrompt(role, question, answer)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		e.logger.Warn("evaluation delegate failed, using heuristic fallback", zap.Error(err))
		return heuristicEvaluation(answer)
	}

	evaluation, err := parseEvaluation(raw)
	if err != nil {
		e.logger.Warn("unparseable evaluation output, using heuristic fallback",
			zap.Error(err),
			zap.String("output_preview", logger.TruncateForLog(raw, 120)),
		)
		return heuristicEvaluation(answer)
	}

	return evaluation
}

func buildEvalPrompt(role, question, answer string) string {
	prompt := strings.ReplaceAll(evalPromptTemplate, "{{ROLE}}", role)
	prompt = strings.ReplaceAll(prompt, "{{QUESTION}}", question)
	return strings.ReplaceAll(prompt, "{{ANSWER}}", answer)
}

// parseEvaluation attempts a direct JSON parse of the delegate's raw text and
// then, on failure, the substring between the first '{' and the last '}'.
func parseEvaluation(raw string) (*Evaluation, error) {
	data, err := unmarshalObject(raw)
	if err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start == -1 || end == -1 || end <= start {
			return nil, fmt.Errorf("no JSON object found in evaluation output")
		}

		data, err = unmarshalObject(raw[start : end+1])
		if err != nil {
			return nil, fmt.Errorf("parse evaluation output: %w", err)
		}
	}

	return &Evaluation{
		Technical:      coerceFloat(data["technical"]),
		Communication:  coerceFloat(data["communication"]),
		ProblemSolving: coerceFloat(data["problem_solving"]),
		Structure:      coerceFloat(data["structure"]),
		Strengths:      coerceStrings(data["strengths"]),
		Weaknesses:     coerceStrings(data["weaknesses"]),
		Suggestions:    coerceStrings(data["suggestions"]),
	}, nil
}

func unmarshalObject(raw string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// heuristicEvaluation derives all four sub-scores from the answer's word
// count. Distinct from the simple turn scorer: it targets report categories.
func heuristicEvaluation(answer string) *Evaluation {
	words := float64(len(strings.Fields(answer)))

	technical := math.Min(9.0, math.Max(1.0, words/10))

	communication := 4.0
	if words > 8 {
		communication = 7.0
	}

	structure := 5.0
	if words > 10 {
		structure = 7.0
	}

	return &Evaluation{
		Technical:      round1(technical),
		Communication:  round1(communication),
		ProblemSolving: round1(technical * 0.9),
		Structure:      round1(structure),
		Strengths:      []string{"Concise", "Relevant"},
		Weaknesses:     []string{"Needs more detail", "No examples"},
		Suggestions:    []string{"Add examples", "Explain step-by-step"},
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				result = append(result, s)
			}
		}
	}

	return result
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
