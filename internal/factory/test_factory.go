package factory

import (
	"context"
	"time"

	"github.com/mcoot/aseguradoss/internal/dependencies/mocks"
	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/storage/memory"
	"github.com/mcoot/aseguradoss/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The dice settle immediately and the event hub is running.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, 0, testutil.NopLogger())
	app.Start()

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}

// TestEvents is a small catalog: a car accident covered at half, a generic
// loss and a salary raise
func TestEvents() []*model.Event {
	half := 0.5
	return []*model.Event{
		{ID: 1, Kind: model.InsuranceCar, Text: "Golpe con el coche", Amount: -400, Variable: model.VariableMoney, Discount: &half},
		{ID: 2, Kind: model.KindGeneric, Text: "Multa de tráfico", Amount: -100, Variable: model.VariableMoney},
		{ID: 3, Kind: model.KindGeneric, Text: "Te suben el sueldo", Amount: 100, Variable: model.VariableSalary},
	}
}

// LoadTestCatalog stores and loads TestEvents
func (t *TestApp) LoadTestCatalog(ctx context.Context) error {
	if err := t.Storage.SaveEvents(ctx, TestEvents()); err != nil {
		return err
	}
	_, err := t.CatalogService.Load(ctx)
	return err
}
