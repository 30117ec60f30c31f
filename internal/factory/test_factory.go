package factory

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/courseroster/internal/dependencies/mocks"
	"github.com/mcoot/courseroster/internal/services/catalog"
	"github.com/mcoot/courseroster/internal/storage/memory"
	"github.com/mcoot/courseroster/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App over in-memory storage with mocked randomness.
// catalogCfg may point at fixture documents; its zero value reads nothing.
func NewTestApp(catalogCfg catalog.Config) *TestApp {
	store := memory.New()
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockRandom, prometheus.NewRegistry(), catalogCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockRandom: mockRandom,
		Memory:     store,
	}
}
