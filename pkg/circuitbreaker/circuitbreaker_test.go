package circuitbreaker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosedPassesThrough(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 3, Timeout: time.Minute})

	calls := 0
	err := cb.Execute(func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 2, Timeout: time.Minute})

	boom := func() error { return fmt.Errorf("boom") }
	require.Error(t, cb.Execute(boom))
	require.Error(t, cb.Execute(boom))

	// Circuit is now open: the function must not run.
	calls := 0
	err := cb.Execute(func() error {
		calls++
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open")
	assert.Equal(t, 0, calls)
}

func TestHalfOpenRecoversAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return fmt.Errorf("boom") }))
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	// Success closed the circuit again.
	require.NoError(t, cb.Execute(func() error { return nil }))
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 2, Timeout: time.Minute})

	require.Error(t, cb.Execute(func() error { return fmt.Errorf("boom") }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return fmt.Errorf("boom") }))

	// Only one consecutive failure, circuit stays closed.
	calls := 0
	require.NoError(t, cb.Execute(func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
}
