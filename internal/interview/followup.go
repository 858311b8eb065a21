package interview

import (
	"context"
	"fmt"
	"strings"

	_ "embed"

	"github.com/practicelabs/interview-partner/internal/ai"

	"go.uber.org/zap"
)

//go:embed prompts/followup.md
var followupPrompt string

// FollowupGenerator produces a single probing follow-up question grounded in
// the user's previous answer. It is optional: agents without one fall back to
// canned follow-up messages.
type FollowupGenerator struct {
	generator ai.TextGenerator
	logger    *zap.Logger
}

func NewFollowupGenerator(generator ai.TextGenerator, log *zap.Logger) *FollowupGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &FollowupGenerator{generator: generator, logger: log}
}

// Generate asks the delegate for one follow-up question and keeps only the
// first line of the output.
func (f *FollowupGenerator) Generate(ctx context.Context, previousQuestion, answer, role string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nRole: %s\n\nOriginal question:\n%s\n\nUser's answer:\n%s\n\nGenerate ONE deep follow-up question:",
		strings.TrimSpace(followupPrompt), role, previousQuestion, answer)

	output, err := f.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate followup: %w", err)
	}

	question, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(question), nil
}
