package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/mariiahub/taxcore/internal/types"
)

// InMemorySequenceStore implements invoice.SequenceRepository. The mutex
// mirrors the row lock a durable implementation takes: concurrent callers
// receive distinct consecutive values.
type InMemorySequenceStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewInMemorySequenceStore() *InMemorySequenceStore {
	return &InMemorySequenceStore{
		counters: make(map[string]int64),
	}
}

func sequenceKey(ctx context.Context, docType types.DocumentType, periodKey string) string {
	tenantID, _ := ctx.Value(types.CtxTenantID).(string)
	return fmt.Sprintf("%s:%s:%s", tenantID, docType, periodKey)
}

func (s *InMemorySequenceStore) Next(ctx context.Context, docType types.DocumentType, periodKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sequenceKey(ctx, docType, periodKey)
	s.counters[key]++
	return s.counters[key], nil
}

func (s *InMemorySequenceStore) Current(ctx context.Context, docType types.DocumentType, periodKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[sequenceKey(ctx, docType, periodKey)], nil
}

func (s *InMemorySequenceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = make(map[string]int64)
}
