package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/practicelabs/interview-partner/internal/ai"
	"github.com/practicelabs/interview-partner/internal/logger"
	"github.com/practicelabs/interview-partner/internal/utils"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 2
	retryBaseDelay    = 2 * time.Second
	// Quota errors may advertise a server-side delay. Waiting longer than
	// this inside a request-handling turn is pointless.
	maxQuotaDelay = 30 * time.Second

	defaultMaxLogLength = 200
)

var retryAfterRe = regexp.MustCompile(`retry after (\d+)`)

// wait is swapped out in tests to avoid real delays.
var wait = utils.WaitFor

// modelCaller matches the GenerateContent method of genai.Models so tests can
// script responses without a live client.
type modelCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator exposes the Gemini API through the ai.TextGenerator capability
// used by the interview core.
type Generator struct {
	models     modelCaller
	model      string
	maxRetries int
	maxLogLen  int
	logger     *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Generator{
		models:     client.Models,
		model:      model,
		maxRetries: maxRetries,
		maxLogLen:  defaultMaxLogLength,
		logger:     log,
	}, nil
}

// GenerateContent sends the prompt to Gemini and returns the concatenated
// textual response. Temporary API errors are retried up to the configured
// attempt count; exhausted or terminal failures surface wrapped in
// ai.ErrDelegateUnavailable.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", fmt.Errorf("%w: gemini generator is not initialized", ai.ErrDelegateUnavailable)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, g.maxLogLen)),
	)

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err == nil {
			output := collectText(resp)
			if output == "" {
				return "", fmt.Errorf("%w: gemini api returned empty response", ai.ErrDelegateUnavailable)
			}

			g.logger.Debug("gemini generate content response",
				zap.Int("response_length", utf8.RuneCountInString(output)),
				zap.String("response_preview", logger.TruncateForLog(output, g.maxLogLen)),
			)

			return output, nil
		}

		lastErr = err

		retryable, delay := retryPolicy(err)
		if !retryable || attempt == g.maxRetries {
			break
		}

		g.logger.Warn("gemini call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if werr := wait(ctx, delay); werr != nil {
			return "", fmt.Errorf("%w: %v", ai.ErrDelegateUnavailable, werr)
		}
	}

	return "", fmt.Errorf("%w: %v", ai.ErrDelegateUnavailable, lastErr)
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// retryPolicy decides whether the error is worth another attempt and how long
// to wait before it. Quota errors advertising a delay above maxQuotaDelay are
// terminal.
func retryPolicy(err error) (bool, time.Duration) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false, 0
	}

	switch apiErr.Code {
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true, retryBaseDelay
	case http.StatusTooManyRequests:
		delay := quotaDelay(apiErr.Message)
		if delay > maxQuotaDelay {
			return false, 0
		}
		if delay <= 0 {
			delay = retryBaseDelay
		}
		return true, delay
	default:
		return false, 0
	}
}

func quotaDelay(message string) time.Duration {
	match := retryAfterRe.FindStringSubmatch(strings.ToLower(message))
	if len(match) != 2 {
		return 0
	}

	seconds, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
