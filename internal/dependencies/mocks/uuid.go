package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/undercover/internal/dependencies/uuid"
)

// MockUUID returns queued identifiers, then a predictable sequence
type MockUUID struct {
	mu      sync.Mutex
	Results []string
	index   int
	counter int
}

// Ensure MockUUID implements UUID
var _ uuid.UUID = (*MockUUID)(nil)

// NewMockUUID creates a new MockUUID
func NewMockUUID() *MockUUID {
	return &MockUUID{}
}

// NewUUID returns the next queued result, or "uuid-<n>" once the queue is empty
func (u *MockUUID) NewUUID() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.index < len(u.Results) {
		result := u.Results[u.index]
		u.index++
		return result
	}
	u.counter++
	return fmt.Sprintf("uuid-%d", u.counter)
}

// Queue adds values to the result queue
func (u *MockUUID) Queue(values ...string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Results = append(u.Results, values...)
}
