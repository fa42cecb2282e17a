package app

import (
	"context"
	"fmt"
	"strings"

	"interview-session-service/internal/domain"
)

const (
	MinScore = 1
	MaxScore = 10
)

// Scorer grades one answer on a 1..10 scale.
type Scorer interface {
	Score(ctx context.Context, question domain.QuestionDefinition, answer string) (int, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, question domain.QuestionDefinition, answer string) (int, error)

func (f ScorerFunc) Score(ctx context.Context, question domain.QuestionDefinition, answer string) (int, error) {
	return f(ctx, question, answer)
}

// HeuristicScorer grades by answer length against a per-difficulty word
// target. It is deterministic and has no external dependencies.
type HeuristicScorer struct{}

var targetWords = map[domain.Difficulty]int{
	domain.DifficultyEasy:   20,
	domain.DifficultyMedium: 50,
	domain.DifficultyHard:   100,
}

func (HeuristicScorer) Score(_ context.Context, question domain.QuestionDefinition, answer string) (int, error) {
	words := len(strings.Fields(answer))
	if words == 0 {
		return MinScore, nil
	}
	target, ok := targetWords[question.Difficulty]
	if !ok {
		return 0, fmt.Errorf("no word target for difficulty %q", question.Difficulty)
	}
	if words >= target {
		return MaxScore, nil
	}
	// 1 + round(9 * words / target)
	span := MaxScore - MinScore
	return MinScore + (2*span*words+target)/(2*target), nil
}

// Aggregate returns the mean of scores rounded half up. An empty slice
// aggregates to 0.
func Aggregate(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	n := len(scores)
	return (2*sum + n) / (2 * n)
}

// Summarize builds the completion summary for a final score.
func Summarize(finalScore int) string {
	var band string
	switch {
	case finalScore >= 7:
		band = "Strong performance across all areas."
	case finalScore >= 5:
		band = "Moderate performance with room for improvement."
	default:
		band = "Needs significant improvement in technical skills."
	}
	return fmt.Sprintf("Candidate completed the interview with an average score of %d/10. %s", finalScore, band)
}
