package app

import (
	"sort"
	"strings"

	"interview-session-service/internal/domain"
)

// Sort orders accepted by ListCandidates.
const (
	SortByScore = "score"
	SortByName  = "name"
	SortByDate  = "date"
)

// CandidateQuery filters and orders the candidate listing.
type CandidateQuery struct {
	Search string
	SortBy string
}

// ListCandidates returns a copy of the records matching q. Search matches
// name or email case-insensitively; the default order is final score,
// highest first.
func ListCandidates(st domain.State, q CandidateQuery) []domain.Candidate {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Candidate, 0, len(st.Candidates))
	for _, c := range st.Clone().Candidates {
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Email), needle) {
			continue
		}
		out = append(out, c)
	}

	switch q.SortBy {
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case SortByDate:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].StartTime.After(out[j].StartTime)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].FinalScore > out[j].FinalScore
		})
	}
	return out
}

// FindCandidate returns a copy of one record.
func FindCandidate(st domain.State, id string) (domain.Candidate, error) {
	idx := st.Find(id)
	if idx < 0 {
		return domain.Candidate{}, domain.ErrCandidateNotFound
	}
	return st.Clone().Candidates[idx], nil
}
