package factory

import (
	"time"

	"github.com/mcoot/undercover/internal/dependencies/mocks"
	"github.com/mcoot/undercover/internal/dependencies/random"
	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/services/identity"
	"github.com/mcoot/undercover/internal/storage/memory"
	"github.com/mcoot/undercover/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockUUID  *mocks.MockUUID
}

// NewTestApp creates an App with a fixed clock and predictable IDs.
// Randomness stays real so rooms can be driven from several goroutines.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockUUID := mocks.NewMockUUID()

	app := newWithDependencies(store, mockClock, random.New(), mockUUID, identity.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockUUID:  mockUUID,
	}
}

// LoadTestWords loads a single known pair
func (t *TestApp) LoadTestWords() error {
	return t.WordBank.LoadPairs([]model.WordPair{{Civilian: "coffee", Spy: "tea"}})
}
