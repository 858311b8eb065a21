package interview

import (
	"context"
	"fmt"
	"strings"

	_ "embed"

	"github.com/practicelabs/interview-partner/internal/ai"
	"github.com/practicelabs/interview-partner/internal/logger"

	"go.uber.org/zap"
)

// Behavior classifies a user's answer turn and governs routing.
type Behavior string

const (
	BehaviorNormal         Behavior = "NORMAL"
	BehaviorConfused       Behavior = "CONFUSED"
	BehaviorOffTopic       Behavior = "OFF_TOPIC"
	BehaviorChatty         Behavior = "CHATTY"
	BehaviorShortAnswer    Behavior = "SHORT_ANSWER"
	BehaviorOverlongAnswer Behavior = "OVERLONG_ANSWER"
)

//go:embed prompts/system.md
var systemPrompt string

//go:embed prompts/behavior.md
var behaviorPrompt string

// Classifier maps free-text answers to a behavior category through the
// text-generation delegate.
type Classifier struct {
	generator ai.TextGenerator
	logger    *zap.Logger
}

func NewClassifier(generator ai.TextGenerator, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{generator: generator, logger: log}
}

// Classify asks the delegate for a label and normalizes the result. Any
// output outside the taxonomy maps to NORMAL: the routing table has no
// unknown branch, so unrecognized labels deliberately fall through to the
// scoring path. Only delegate transport failures surface as errors.
func (c *Classifier) Classify(ctx context.Context, answer string) (Behavior, error) {
	prompt := fmt.Sprintf("%s\n\nClassify the user's behavior.\n\nUser message:\n%s\n\n%s",
		strings.TrimSpace(systemPrompt), answer, strings.TrimSpace(behaviorPrompt))

	raw, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("classify behavior: %w", err)
	}

	label := Behavior(strings.ToUpper(strings.TrimSpace(raw)))
	switch label {
	case BehaviorConfused, BehaviorOffTopic, BehaviorChatty, BehaviorShortAnswer, BehaviorOverlongAnswer, BehaviorNormal:
		return label, nil
	}

	c.logger.Debug("unrecognized behavior label, defaulting to NORMAL",
		zap.String("label", logger.TruncateForLog(raw, 80)),
	)

	return BehaviorNormal, nil
}
