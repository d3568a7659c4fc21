package aitime

import (
	"context"
	"time"
)

// MockTimeService is a mock implementation of TimeService for testing.
type MockTimeService struct {
	// FixedNow can be set to use a fixed "now" for testing
	FixedNow *time.Time
}

// NewMockTimeService creates a new MockTimeService.
func NewMockTimeService() *MockTimeService {
	return &MockTimeService{}
}

// Normalize standardizes time expressions using a parser pinned to FixedNow.
func (m *MockTimeService) Normalize(_ context.Context, input string, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.Local
	}

	parser := &Parser{
		timezone: loc,
		now:      m.now,
	}
	return parser.Parse(input)
}

// ParseNaturalTime parses natural language time expressions.
func (m *MockTimeService) ParseNaturalTime(ctx context.Context, input string, reference time.Time) (TimeRange, error) {
	svc := &Service{defaultTimezone: reference.Location()}
	return svc.ParseNaturalTime(ctx, input, reference)
}

// now returns the current time (or fixed time for testing).
func (m *MockTimeService) now() time.Time {
	if m.FixedNow != nil {
		return *m.FixedNow
	}
	return time.Now()
}

// Ensure MockTimeService implements TimeService
var _ TimeService = (*MockTimeService)(nil)
