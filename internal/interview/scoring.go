package interview

import (
	"math"
	"strings"
)

// ScoreEngine is the deterministic fallback scorer used on the NORMAL answer
// path. It derives sub-scores from word count alone, so evaluation stays
// available without a delegate call.
type ScoreEngine struct{}

// SimpleScoring maps answer text to depth/communication/technical scores:
// short answers score low on depth, rambling ones are mildly penalized on
// communication, and technical mirrors depth.
func (ScoreEngine) SimpleScoring(answer string) Scores {
	words := len(strings.Fields(answer))

	depth := 8.0
	switch {
	case words < 10:
		depth = 3.0
	case words < 30:
		depth = 6.0
	}

	communication := 7.0
	if words > 120 {
		communication = 6.0
	}

	return Scores{
		Depth:         round1(depth),
		Communication: round1(communication),
		Technical:     round1(depth),
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
