package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	responses []string
	err       error
	prompts   []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("unexpected call")
	}
	response := s.responses[0]
	s.responses = s.responses[1:]
	return response, nil
}

const validEvaluationJSON = `{
  "technical": 8,
  "communication": 7,
  "problem_solving": 6.5,
  "structure": 7,
  "strengths": ["Clear", "Accurate"],
  "weaknesses": ["Brief"],
  "suggestions": ["Add examples"]
}`

func TestEvaluateAnswerParsesStrictJSON(t *testing.T) {
	stub := &stubGenerator{responses: []string{validEvaluationJSON}}
	evaluator := NewEvaluator(stub, zap.NewNop())

	evaluation := evaluator.EvaluateAnswer(context.Background(), "software_engineer",
		"What is a race condition?", "When two threads access same data without sync.")

	if evaluation.Technical != 8 || evaluation.ProblemSolving != 6.5 {
		t.Fatalf("unexpected scores: %+v", evaluation)
	}
	if len(evaluation.Strengths) != 2 || evaluation.Strengths[0] != "Clear" {
		t.Fatalf("unexpected strengths: %v", evaluation.Strengths)
	}

	prompt := stub.prompts[0]
	if !strings.Contains(prompt, "What is a race condition?") {
		t.Fatalf("prompt misses the question: %s", prompt)
	}
	if !strings.Contains(prompt, "Role: software_engineer") {
		t.Fatalf("prompt misses the role: %s", prompt)
	}
}

func TestEvaluateAnswerExtractsEmbeddedJSON(t *testing.T) {
	raw := "Sure! Here is the evaluation you asked for:\n```json\n" + validEvaluationJSON + "\n```\nLet me know if you need more."
	stub := &stubGenerator{responses: []string{raw}}
	evaluator := NewEvaluator(stub, zap.NewNop())

	evaluation := evaluator.EvaluateAnswer(context.Background(), "software_engineer", "q", "a")

	if evaluation.Technical != 8 {
		t.Fatalf("expected embedded JSON to parse, got %+v", evaluation)
	}
}

func TestEvaluateAnswerCoercesStringNumbers(t *testing.T) {
	raw := `{"technical": "7.5", "communication": "6", "problem_solving": 5, "structure": "4", "strengths": [], "weaknesses": [], "suggestions": []}`
	stub := &stubGenerator{responses: []string{raw}}
	evaluator := NewEvaluator(stub, zap.NewNop())

	evaluation := evaluator.EvaluateAnswer(context.Background(), "software_engineer", "q", "a")

	if evaluation.Technical != 7.5 || evaluation.Communication != 6 || evaluation.Structure != 4 {
		t.Fatalf("unexpected coerced scores: %+v", evaluation)
	}
}

func TestEvaluateAnswerFallsBackOnGarbage(t *testing.T) {
	stub := &stubGenerator{responses: []string{"I cannot produce JSON today, sorry."}}
	evaluator := NewEvaluator(stub, zap.NewNop())

	// 9 words: technical 1.0, communication 7.0, structure 5.0.
	answer := strings.TrimSpace(strings.Repeat("word ", 9))
	evaluation := evaluator.EvaluateAnswer(context.Background(), "software_engineer", "q", answer)

	if evaluation.Technical != 1.0 {
		t.Fatalf("expected technical 1.0, got %v", evaluation.Technical)
	}
	if evaluation.Communication != 7.0 {
		t.Fatalf("expected communication 7.0, got %v", evaluation.Communication)
	}
	if evaluation.ProblemSolving != 0.9 {
		t.Fatalf("expected problem solving 0.9, got %v", evaluation.ProblemSolving)
	}
	if evaluation.Structure != 5.0 {
		t.Fatalf("expected structure 5.0, got %v", evaluation.Structure)
	}
	if len(evaluation.Strengths) != 2 || evaluation.Strengths[0] != "Concise" {
		t.Fatalf("unexpected canned strengths: %v", evaluation.Strengths)
	}
}

func TestEvaluateAnswerFallsBackOnDelegateError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("down")}
	evaluator := NewEvaluator(stub, zap.NewNop())

	// 40 words: technical 4.0, communication 7.0, structure 7.0.
	answer := strings.TrimSpace(strings.Repeat("word ", 40))
	evaluation := evaluator.EvaluateAnswer(context.Background(), "software_engineer", "q", answer)

	if evaluation.Technical != 4.0 || evaluation.Structure != 7.0 {
		t.Fatalf("unexpected fallback scores: %+v", evaluation)
	}
	if evaluation.ProblemSolving != 3.6 {
		t.Fatalf("expected problem solving 3.6, got %v", evaluation.ProblemSolving)
	}
}

func TestHeuristicEvaluationClampsTechnical(t *testing.T) {
	// 200 words would score 20, clamped to 9.
	long := strings.TrimSpace(strings.Repeat("word ", 200))
	if got := heuristicEvaluation(long).Technical; got != 9.0 {
		t.Fatalf("expected clamp to 9.0, got %v", got)
	}

	if got := heuristicEvaluation("").Technical; got != 1.0 {
		t.Fatalf("expected floor of 1.0, got %v", got)
	}
}

func TestParseEvaluationRejectsTextWithoutObject(t *testing.T) {
	if _, err := parseEvaluation("no braces here"); err == nil {
		t.Fatal("expected error")
	}
}
