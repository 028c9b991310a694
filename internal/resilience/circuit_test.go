package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(threshold int, reset time.Duration) (*CircuitBreaker, *time.Time) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: threshold,
		ResetTimeout:     reset,
	})
	now := time.Now()
	cb.nowFunc = func() time.Time { return now }
	return cb, &now
}

func failingCall(ctx context.Context) error {
	return eris.New("backend error")
}

func TestCircuitBreakerStartsClosed(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		err := cb.Execute(context.Background(), failingCall)
		require.Error(t, err)
	}
	assert.Equal(t, CircuitOpen, cb.State())

	err := cb.Execute(context.Background(), failingCall)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerHalfOpenAfterTimeout(t *testing.T) {
	cb, now := newTestBreaker(1, time.Minute)

	require.Error(t, cb.Execute(context.Background(), failingCall))
	assert.Equal(t, CircuitOpen, cb.State())

	*now = now.Add(2 * time.Minute)
	assert.Equal(t, CircuitHalfOpen, cb.State())
}

func TestCircuitBreakerClosesOnSuccessfulProbe(t *testing.T) {
	cb, now := newTestBreaker(1, time.Minute)

	require.Error(t, cb.Execute(context.Background(), failingCall))
	*now = now.Add(2 * time.Minute)

	err := cb.Execute(context.Background(), func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreakerReopensOnFailedProbe(t *testing.T) {
	cb, now := newTestBreaker(1, time.Minute)

	require.Error(t, cb.Execute(context.Background(), failingCall))
	*now = now.Add(2 * time.Minute)

	require.Error(t, cb.Execute(context.Background(), failingCall))
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)

	require.Error(t, cb.Execute(context.Background(), failingCall))
	require.Error(t, cb.Execute(context.Background(), failingCall))
	require.NoError(t, cb.Execute(context.Background(), func(ctx context.Context) error { return nil }))

	require.Error(t, cb.Execute(context.Background(), failingCall))
	require.Error(t, cb.Execute(context.Background(), failingCall))
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreakerReset(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Minute)

	require.Error(t, cb.Execute(context.Background(), failingCall))
	assert.Equal(t, CircuitOpen, cb.State())

	cb.Reset()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestExecuteValReturnsValue(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)

	val, err := ExecuteVal(context.Background(), cb, func(ctx context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, val)
}

func TestCircuitStateString(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(99).String())
}
