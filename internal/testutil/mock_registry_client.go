package testutil

import (
	"context"
	"sync"

	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/registry"
)

// MockRegistryClient implements registry.Client with scripted verdicts
type MockRegistryClient struct {
	mu sync.Mutex
	// results maps a normalized identifier to its scripted verdict
	results map[string]*registry.LookupResult
	// Unavailable makes every lookup fail as a registry outage
	Unavailable bool
	// Calls counts lookups, used to assert deduplication and caching
	Calls int
}

func NewMockRegistryClient() *MockRegistryClient {
	return &MockRegistryClient{
		results: make(map[string]*registry.LookupResult),
	}
}

// SetResult scripts the verdict for an identifier
func (c *MockRegistryClient) SetResult(identifier string, result *registry.LookupResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[identifier] = result
}

func (c *MockRegistryClient) Lookup(ctx context.Context, identifier string) (*registry.LookupResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++

	if c.Unavailable {
		return nil, ierr.NewError("registry unreachable").
			WithHint("Tax registry could not be reached").
			Mark(ierr.ErrRegistryUnavailable)
	}

	result, ok := c.results[identifier]
	if !ok {
		return &registry.LookupResult{Active: false}, nil
	}
	return result, nil
}
