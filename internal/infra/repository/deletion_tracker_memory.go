package repository

import (
	"context"
	"sort"
	"sync"

	repo "catalogadmin/internal/repository"
)

// 1プロセス用の削除中セット
type memoryDeletionTracker struct {
	mu      sync.Mutex
	pending map[int64]struct{}
}

func NewMemoryDeletionTracker() repo.DeletionTracker {
	return &memoryDeletionTracker{
		pending: make(map[int64]struct{}),
	}
}

func (t *memoryDeletionTracker) TryAcquire(_ context.Context, productID int64) (func(), bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[productID]; ok {
		return nil, false, nil
	}
	t.pending[productID] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.pending, productID)
			t.mu.Unlock()
		})
	}
	return release, true, nil
}

func (t *memoryDeletionTracker) IsPending(_ context.Context, productID int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.pending[productID]
	return ok, nil
}

func (t *memoryDeletionTracker) Pending(_ context.Context) ([]int64, error) {
	t.mu.Lock()
	out := make([]int64, 0, len(t.pending))
	for id := range t.pending {
		out = append(out, id)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
