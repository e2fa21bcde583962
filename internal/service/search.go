package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/bubbleboard/internal/database/repository"
)

// SearchResult is one ranked title match.
type SearchResult struct {
	Task  repository.Task
	Score int // 0 is an exact or substring match; higher is fuzzier
}

// maxSearchScore is the worst edit distance still reported as a match.
const maxSearchScore = 3

// Search ranks the board's live tasks against query by edit distance. A
// substring hit ranks first; otherwise the best distance between the query and
// any title word wins.
func (s *BoardService) Search(ctx context.Context, boardID, query string) ([]SearchResult, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	rows, err := s.Tasks.List(ctx, repository.TaskFilters{BoardID: boardID})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var out []SearchResult
	for _, t := range rows {
		score := titleScore(strings.ToLower(t.Title), query)
		if score > maxSearchScore {
			continue
		}
		out = append(out, SearchResult{Task: t, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out, nil
}

func titleScore(title, query string) int {
	if strings.Contains(title, query) {
		return 0
	}
	best := levenshtein.ComputeDistance(title, query)
	for _, word := range strings.Fields(title) {
		if d := levenshtein.ComputeDistance(word, query); d < best {
			best = d
		}
	}
	return best
}
