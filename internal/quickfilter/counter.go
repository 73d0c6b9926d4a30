package quickfilter

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/stelform/adminkit/internal/domain"
)

// defaultWorkers bounds concurrent count queries so a burst of quick
// filters cannot drain the connection pool.
const defaultWorkers = 4

// CountFunc executes one count against the persistence engine.
type CountFunc func(ctx context.Context, tenantID uuid.UUID, entityType string, filter domain.Condition) (int64, error)

// Result carries the per-filter counts plus the names that failed. A
// failing predicate never aborts its siblings; callers render the partial
// map and flag the failures.
type Result struct {
	Counts map[string]int64
	Failed map[string]error
}

// Counter reports live result counts for a page's named quick filters by
// running one count per predicate, each merged with the compiled base
// filter. It is read-only and takes no part in batch atomicity.
type Counter struct {
	count   CountFunc
	workers int
}

// NewCounter builds a counter over the given count function. workers <= 0
// selects the default pool size.
func NewCounter(count CountFunc, workers int) *Counter {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Counter{count: count, workers: workers}
}

// Count runs every named predicate concurrently under the worker bound and
// aggregates the outcomes.
func (c *Counter) Count(
	ctx context.Context,
	tenantID uuid.UUID,
	entityType string,
	base domain.Condition,
	filters map[string]domain.Condition,
) Result {
	result := Result{
		Counts: make(map[string]int64, len(filters)),
		Failed: make(map[string]error),
	}
	if len(filters) == 0 {
		return result
	}

	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.workers)

	for _, name := range names {
		predicate := filters[name]
		wg.Add(1)
		go func(name string, predicate domain.Condition) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			count, err := c.count(ctx, tenantID, entityType, domain.AllOf(base, predicate))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[QUICKFILTER] count %q failed: %v", name, err)
				result.Failed[name] = err
				return
			}
			result.Counts[name] = count
		}(name, predicate)
	}

	wg.Wait()
	return result
}
