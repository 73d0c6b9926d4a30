package quickfilter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stelform/adminkit/internal/domain"
)

func TestCountMergesBaseFilter(t *testing.T) {
	tenantID := uuid.New()
	base := domain.Eq("region", "east")

	var mu sync.Mutex
	seen := make(map[string]domain.Condition)

	count := func(ctx context.Context, tid uuid.UUID, entityType string, filter domain.Condition) (int64, error) {
		require.Equal(t, tenantID, tid)
		require.Equal(t, "order", entityType)
		mu.Lock()
		defer mu.Unlock()
		seen[filter.And[1].Field] = filter
		return int64(len(seen)), nil
	}

	c := NewCounter(count, 2)
	result := c.Count(context.Background(), tenantID, "order", base, map[string]domain.Condition{
		"open":      domain.Eq("status", "draft"),
		"delivered": domain.Eq("delivered", "true"),
	})

	require.Len(t, result.Counts, 2)
	assert.Empty(t, result.Failed)

	// Every predicate was AND-merged with the base filter.
	for _, filter := range seen {
		require.Len(t, filter.And, 2)
		assert.Equal(t, base, filter.And[0])
	}
}

func TestCountIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	count := func(ctx context.Context, _ uuid.UUID, _ string, filter domain.Condition) (int64, error) {
		if filter.Field == "bad" {
			return 0, boom
		}
		return 7, nil
	}

	c := NewCounter(count, 0)
	result := c.Count(context.Background(), uuid.New(), "order", domain.Condition{}, map[string]domain.Condition{
		"good":  domain.Eq("status", "draft"),
		"worse": {Field: "bad", Op: domain.OpEq, Value: "x"},
	})

	assert.Equal(t, int64(7), result.Counts["good"])
	_, counted := result.Counts["worse"]
	assert.False(t, counted)
	require.ErrorIs(t, result.Failed["worse"], boom)
}

func TestCountRespectsWorkerBound(t *testing.T) {
	var active, peak int32

	count := func(ctx context.Context, _ uuid.UUID, _ string, _ domain.Condition) (int64, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		defer atomic.AddInt32(&active, -1)
		return 1, nil
	}

	filters := make(map[string]domain.Condition)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		filters[name] = domain.Eq("status", name)
	}

	c := NewCounter(count, 2)
	result := c.Count(context.Background(), uuid.New(), "order", domain.Condition{}, filters)

	require.Len(t, result.Counts, 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestCountEmptyFilterSet(t *testing.T) {
	called := false
	c := NewCounter(func(context.Context, uuid.UUID, string, domain.Condition) (int64, error) {
		called = true
		return 0, nil
	}, 1)

	result := c.Count(context.Background(), uuid.New(), "order", domain.Condition{}, nil)
	assert.Empty(t, result.Counts)
	assert.Empty(t, result.Failed)
	assert.False(t, called)
}
