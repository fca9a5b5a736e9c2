package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/searchlab/services"
)

// MultiSearch executes multiple named searches in parallel.
// The first failing search cancels the others and its error is returned.
func (s *Service) MultiSearch(ctx context.Context, multiQuery services.MultiSearchRequest) (*services.MultiSearchResult, error) {
	startTime := time.Now()

	if len(multiQuery.Queries) == 0 {
		return nil, fmt.Errorf("at least one query is required")
	}
	seen := make(map[string]struct{}, len(multiQuery.Queries))
	for _, nq := range multiQuery.Queries {
		if nq.Name == "" {
			return nil, fmt.Errorf("each query must have a non-empty name")
		}
		if _, dup := seen[nq.Name]; dup {
			return nil, fmt.Errorf("duplicate query name '%s'", nq.Name)
		}
		seen[nq.Name] = struct{}{}
	}

	var mu sync.Mutex
	results := make(map[string]services.SearchResult, len(multiQuery.Queries))

	g, ctx := errgroup.WithContext(ctx)
	for _, namedQuery := range multiQuery.Queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("multi-search cancelled: %w", err)
			}
			result, err := s.Search(namedQuery.SearchRequest)
			if err != nil {
				return fmt.Errorf("error executing query '%s': %w", namedQuery.Name, err)
			}
			mu.Lock()
			results[namedQuery.Name] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	processingTime := time.Since(startTime)

	return &services.MultiSearchResult{
		Results:          results,
		TotalQueries:     len(multiQuery.Queries),
		ProcessingTimeMs: float64(processingTime.Nanoseconds()) / 1e6,
	}, nil
}
