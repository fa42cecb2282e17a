package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-session-service/internal/domain"
)

func directoryState() domain.State {
	return domain.State{Candidates: []domain.Candidate{
		{ID: "1", Name: "Charlie Brown", Email: "charlie@example.com", FinalScore: 6, StartTime: testStart},
		{ID: "2", Name: "alice Smith", Email: "alice@corp.io", FinalScore: 9, StartTime: testStart.Add(2 * time.Hour)},
		{ID: "3", Name: "Bob Jones", Email: "bob@example.com", FinalScore: 3, StartTime: testStart.Add(time.Hour)},
	}}
}

func ids(cs []domain.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestListCandidatesSorts(t *testing.T) {
	st := directoryState()
	assert.Equal(t, []string{"2", "1", "3"}, ids(ListCandidates(st, CandidateQuery{})))
	assert.Equal(t, []string{"2", "1", "3"}, ids(ListCandidates(st, CandidateQuery{SortBy: SortByScore})))
	assert.Equal(t, []string{"2", "3", "1"}, ids(ListCandidates(st, CandidateQuery{SortBy: SortByName})))
	assert.Equal(t, []string{"2", "3", "1"}, ids(ListCandidates(st, CandidateQuery{SortBy: SortByDate})))
}

func TestListCandidatesSearchesNameAndEmail(t *testing.T) {
	st := directoryState()
	assert.Equal(t, []string{"1", "3"}, ids(ListCandidates(st, CandidateQuery{Search: "EXAMPLE.com"})))
	assert.Equal(t, []string{"2"}, ids(ListCandidates(st, CandidateQuery{Search: "alice"})))
	assert.Empty(t, ListCandidates(st, CandidateQuery{Search: "nobody"}))
}

func TestFindCandidate(t *testing.T) {
	st := directoryState()
	c, err := FindCandidate(st, "3")
	require.NoError(t, err)
	assert.Equal(t, "Bob Jones", c.Name)

	_, err = FindCandidate(st, "42")
	assert.ErrorIs(t, err, domain.ErrCandidateNotFound)
}
