package interview

import (
	"context"
	"fmt"

	"github.com/practicelabs/interview-partner/internal/logger"

	"go.uber.org/zap"
)

const wrapUpMessage = "We completed the planned questions. Would you like detailed feedback?"

// Agent is the interview orchestrator: it owns question sequencing and the
// turn-routing decision table over classified answer behavior.
type Agent struct {
	store      Store
	templates  *Templates
	classifier *Classifier
	scorer     ScoreEngine
	followups  *FollowupGenerator
	logger     *zap.Logger
}

type AgentOption func(*Agent)

// WithFollowupGenerator makes SHORT_ANSWER turns ask the delegate for a
// probing follow-up instead of the canned message. Generation failures fall
// back to the canned message, never to an error.
func WithFollowupGenerator(f *FollowupGenerator) AgentOption {
	return func(a *Agent) { a.followups = f }
}

func NewAgent(store Store, templates *Templates, classifier *Classifier, log *zap.Logger, opts ...AgentOption) *Agent {
	if log == nil {
		log = zap.NewNop()
	}

	agent := &Agent{
		store:      store,
		templates:  templates,
		classifier: classifier,
		logger:     log,
	}

	for _, opt := range opts {
		opt(agent)
	}

	return agent
}

// StartInterview creates (or restarts) the session and returns the first
// question of the role's template set. Unrecognized roles fall back to the
// default role's templates.
func (a *Agent) StartInterview(id, role string) (Envelope, error) {
	a.store.Create(id, role)

	first := a.templates.Questions(role)[0]
	metadata := map[string]any{"difficulty": "easy", "topic": role}

	if err := a.store.AppendQuestion(id, first, metadata); err != nil {
		return Envelope{}, err
	}

	logger.WithSession(a.logger, id, role).Info("interview started")

	return Envelope{
		Type:     TypeInterviewerQuestion,
		Message:  first,
		Metadata: metadata,
	}, nil
}

// AskNextQuestion selects the first template question not yet asked. When the
// template is exhausted it marks the session completed and returns the
// wrap-up summary without ending the session.
func (a *Agent) AskNextQuestion(id string) (Envelope, error) {
	session, err := a.store.Get(id)
	if err != nil {
		return Envelope{}, err
	}

	asked := make(map[string]bool, len(session.QuestionsAsked))
	for _, q := range session.QuestionsAsked {
		asked[q.Text] = true
	}

	var next string
	for _, q := range a.templates.Questions(session.Role) {
		if !asked[q] {
			next = q
			break
		}
	}

	if next == "" {
		if err := a.store.MarkCompleted(id); err != nil {
			return Envelope{}, err
		}
		return Envelope{
			Type:     TypeFinalSummary,
			Message:  wrapUpMessage,
			Metadata: map[string]any{"topic": "wrap-up", "difficulty": "easy"},
		}, nil
	}

	metadata := map[string]any{"difficulty": "medium", "topic": session.Role}
	if err := a.store.AppendQuestion(id, next, metadata); err != nil {
		return Envelope{}, err
	}

	return Envelope{
		Type:     TypeInterviewerQuestion,
		Message:  next,
		Metadata: metadata,
	}, nil
}

// HandleAnswer records the answer and routes the turn by classified behavior.
// Classification runs before any state mutation, so a delegate failure leaves
// the session untouched and the caller can retry the same turn.
func (a *Agent) HandleAnswer(ctx context.Context, id, answer string) (Envelope, error) {
	session, err := a.store.Get(id)
	if err != nil {
		return Envelope{}, err
	}

	if session.State == StateCompleted {
		return Envelope{}, fmt.Errorf("session %s: %w", id, ErrSessionCompleted)
	}

	behavior, err := a.classifier.Classify(ctx, answer)
	if err != nil {
		return Envelope{}, err
	}

	if err := a.store.AppendAnswer(id, answer); err != nil {
		return Envelope{}, err
	}
	if err := a.store.IncrementTurn(id); err != nil {
		return Envelope{}, err
	}

	log := logger.WithSession(a.logger, id, session.Role)
	log.Debug("answer classified", zap.String("behavior", string(behavior)))

	lastQuestion := session.LastQuestion

	switch behavior {
	case BehaviorConfused:
		if err := a.store.IncrementConfusion(id); err != nil {
			return Envelope{}, err
		}
		return Envelope{
			Type:     TypeInterviewerQuestion,
			Message:  fmt.Sprintf("Sure, let me simplify that:\n\n%s", lastQuestion),
			Metadata: map[string]any{"topic": "clarification", "difficulty": "easy"},
		}, nil

	case BehaviorOffTopic:
		if err := a.store.IncrementOffTopic(id); err != nil {
			return Envelope{}, err
		}
		return Envelope{
			Type:     TypeInterviewerQuestion,
			Message:  fmt.Sprintf("Let's stay focused. Please answer the question again:\n\n%s", lastQuestion),
			Metadata: map[string]any{"topic": "redirect", "difficulty": "easy"},
		}, nil

	case BehaviorChatty:
		return Envelope{
			Type:     TypeInterviewerQuestion,
			Message:  fmt.Sprintf("😄 Haha! But let's continue. Here's the question again:\n\n%s", lastQuestion),
			Metadata: map[string]any{"topic": "redirect", "difficulty": "easy"},
		}, nil

	case BehaviorShortAnswer:
		return Envelope{
			Type:     TypeFollowupQuestion,
			Message:  a.shortAnswerFollowup(ctx, log, session.Role, lastQuestion, answer),
			Metadata: map[string]any{"topic": "depth", "difficulty": "medium"},
		}, nil

	case BehaviorOverlongAnswer:
		return Envelope{
			Type:     TypeFollowupQuestion,
			Message:  "That's detailed! Can you summarize your answer in 2–3 sentences?",
			Metadata: map[string]any{"topic": "summary", "difficulty": "medium"},
		}, nil
	}

	// NORMAL and anything the classifier could not place: score the answer.
	scores := a.scorer.SimpleScoring(answer)

	message := fmt.Sprintf("Evaluation:\n- Depth: %.1f/10\n- Communication: %.1f/10\n- Technical: %.1f/10",
		scores.Depth, scores.Communication, scores.Technical)

	return Envelope{
		Type:     TypeEvaluation,
		Message:  message,
		Metadata: map[string]any{"scores": scores},
	}, nil
}

// EndInterview removes the session and returns its final counters. Unknown
// ids yield a "not found" summary rather than an error.
func (a *Agent) EndInterview(id string) Envelope {
	session, err := a.store.End(id)
	if err != nil {
		return Envelope{
			Type:     TypeFinalSummary,
			Message:  "Session not found.",
			Metadata: map[string]any{},
		}
	}

	logger.WithSession(a.logger, id, session.Role).Info("interview ended",
		zap.Int("questions_asked", len(session.QuestionsAsked)),
		zap.Int("answers_given", len(session.Answers)),
	)

	return Envelope{
		Type:    TypeFinalSummary,
		Message: "Interview completed.",
		Metadata: map[string]any{
			"role":            session.Role,
			"questions_asked": len(session.QuestionsAsked),
			"answers_given":   len(session.Answers),
			"confusion_count": session.ConfusionCount,
			"off_topic_count": session.OffTopicCount,
		},
	}
}

func (a *Agent) shortAnswerFollowup(ctx context.Context, log *zap.Logger, role, lastQuestion, answer string) string {
	const canned = "Can you explain that more? Give me more detail."

	if a.followups == nil {
		return canned
	}

	question, err := a.followups.Generate(ctx, lastQuestion, answer, role)
	if err != nil || question == "" {
		log.Warn("followup generation failed, using canned message", zap.Error(err))
		return canned
	}

	return question
}
