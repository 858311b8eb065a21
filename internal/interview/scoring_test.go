package interview

import (
	"strings"
	"testing"
)

func TestSimpleScoringEmptyAnswer(t *testing.T) {
	scores := ScoreEngine{}.SimpleScoring("")

	if scores.Depth != 3.0 {
		t.Fatalf("expected depth 3.0, got %v", scores.Depth)
	}
	if scores.Communication != 7.0 {
		t.Fatalf("expected communication 7.0, got %v", scores.Communication)
	}
	if scores.Technical != 3.0 {
		t.Fatalf("expected technical 3.0, got %v", scores.Technical)
	}
}

func TestSimpleScoringThresholds(t *testing.T) {
	cases := []struct {
		name          string
		words         int
		depth         float64
		communication float64
	}{
		{name: "short", words: 5, depth: 3.0, communication: 7.0},
		{name: "boundary low", words: 10, depth: 6.0, communication: 7.0},
		{name: "medium", words: 15, depth: 6.0, communication: 7.0},
		{name: "boundary high", words: 30, depth: 8.0, communication: 7.0},
		{name: "long", words: 100, depth: 8.0, communication: 7.0},
		{name: "rambling", words: 150, depth: 8.0, communication: 6.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			answer := strings.TrimSpace(strings.Repeat("word ", tc.words))
			scores := ScoreEngine{}.SimpleScoring(answer)

			if scores.Depth != tc.depth {
				t.Fatalf("expected depth %v, got %v", tc.depth, scores.Depth)
			}
			if scores.Communication != tc.communication {
				t.Fatalf("expected communication %v, got %v", tc.communication, scores.Communication)
			}
			if scores.Technical != scores.Depth {
				t.Fatalf("expected technical to mirror depth, got %v vs %v", scores.Technical, scores.Depth)
			}
		})
	}
}
