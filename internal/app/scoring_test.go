package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-session-service/internal/domain"
)

func TestAggregateRoundsHalfUp(t *testing.T) {
	cases := []struct {
		scores []int
		want   int
	}{
		{[]int{8, 8, 9, 7, 9, 8}, 8}, // 8.1667
		{[]int{5, 6, 5, 6, 5, 6}, 6}, // 5.5
		{[]int{1, 1, 1, 1, 1, 2}, 1}, // 1.1667
		{[]int{10, 10, 10, 10, 10, 10}, 10},
		{[]int{4, 5}, 5}, // 4.5
		{nil, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Aggregate(tc.scores), "scores %v", tc.scores)
	}
}

func TestAggregateStaysInRange(t *testing.T) {
	// every combination of six scores would be 10^6; walking the first and
	// last positions across the range with the rest fixed covers both edges
	for a := MinScore; a <= MaxScore; a++ {
		for b := MinScore; b <= MaxScore; b++ {
			for fill := MinScore; fill <= MaxScore; fill++ {
				got := Aggregate([]int{a, fill, fill, fill, fill, b})
				require.GreaterOrEqual(t, got, MinScore)
				require.LessOrEqual(t, got, MaxScore)
			}
		}
	}
}

func TestSummarizeBands(t *testing.T) {
	assert.Contains(t, Summarize(8), "Strong performance")
	assert.Contains(t, Summarize(7), "Strong performance")
	assert.Contains(t, Summarize(6), "Moderate performance")
	assert.Contains(t, Summarize(5), "Moderate performance")
	assert.Contains(t, Summarize(4), "Needs significant improvement")
	assert.True(t, strings.HasPrefix(Summarize(8), "Candidate completed the interview with an average score of 8/10."))
}

func TestHeuristicScorer(t *testing.T) {
	ctx := context.Background()
	easy := domain.QuestionDefinition{Difficulty: domain.DifficultyEasy, AllottedSeconds: 20, Prompt: "p"}
	hard := domain.QuestionDefinition{Difficulty: domain.DifficultyHard, AllottedSeconds: 120, Prompt: "p"}
	scorer := HeuristicScorer{}

	score, err := scorer.Score(ctx, easy, "   ")
	require.NoError(t, err)
	assert.Equal(t, MinScore, score)

	score, err = scorer.Score(ctx, easy, strings.Repeat("word ", 20))
	require.NoError(t, err)
	assert.Equal(t, MaxScore, score)

	score, err = scorer.Score(ctx, easy, strings.Repeat("word ", 10))
	require.NoError(t, err)
	assert.Equal(t, 6, score) // 1 + round(4.5)

	short, err := scorer.Score(ctx, hard, strings.Repeat("word ", 10))
	require.NoError(t, err)
	assert.Less(t, short, 6)

	_, err = scorer.Score(ctx, domain.QuestionDefinition{Difficulty: "Trivial"}, "an answer")
	assert.Error(t, err)
}
