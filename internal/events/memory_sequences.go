package events

import (
	"context"
	"fmt"
	"sync"
)

// MemorySequences keeps sequences in process memory. They restart at 1
// whenever the process does, so it only suits the memory storage backend.
type MemorySequences struct {
	mu   sync.Mutex
	last map[string]int64
}

func NewMemorySequences() *MemorySequences {
	return &MemorySequences{last: make(map[string]int64)}
}

func (m *MemorySequences) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[partitionKey]++
	return m.last[partitionKey], nil
}
