package interview

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Envelope response types. Every orchestrator operation returns exactly one
// of these.
const (
	TypeInterviewerQuestion = "interviewer_question"
	TypeFollowupQuestion    = "followup_question"
	TypeEvaluation          = "evaluation"
	TypeFinalSummary        = "final_summary"
)

// Envelope is the uniform response shape of the orchestrator. Metadata
// carries routing-relevant structured data: difficulty/topic tags,
// sub-scores, or end-of-session counts.
type Envelope struct {
	Type     string         `json:"type"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata"`
}

// Scores are the deterministic sub-scores attached to evaluation envelopes.
type Scores struct {
	Depth         float64 `json:"depth" mapstructure:"depth"`
	Communication float64 `json:"communication" mapstructure:"communication"`
	Technical     float64 `json:"technical" mapstructure:"technical"`
}

// SummaryCounts are the end-of-session counters attached to final_summary
// envelopes.
type SummaryCounts struct {
	Role           string `mapstructure:"role"`
	QuestionsAsked int    `mapstructure:"questions_asked"`
	AnswersGiven   int    `mapstructure:"answers_given"`
	ConfusionCount int    `mapstructure:"confusion_count"`
	OffTopicCount  int    `mapstructure:"off_topic_count"`
}

// DecodeScores extracts the typed sub-scores from an evaluation envelope.
func (e Envelope) DecodeScores() (*Scores, error) {
	raw, ok := e.Metadata["scores"]
	if !ok {
		return nil, fmt.Errorf("envelope %q carries no scores", e.Type)
	}

	var scores Scores
	if err := mapstructure.Decode(raw, &scores); err != nil {
		return nil, fmt.Errorf("decoding scores metadata: %w", err)
	}

	return &scores, nil
}

// DecodeSummary extracts the typed counters from a final_summary envelope.
func (e Envelope) DecodeSummary() (*SummaryCounts, error) {
	if e.Type != TypeFinalSummary {
		return nil, fmt.Errorf("envelope type %q is not a final summary", e.Type)
	}

	var counts SummaryCounts
	if err := mapstructure.Decode(e.Metadata, &counts); err != nil {
		return nil, fmt.Errorf("decoding summary metadata: %w", err)
	}

	return &counts, nil
}
