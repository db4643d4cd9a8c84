package app_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mosbookings/internal/app"
)

func TestScope_RunWaitsForAll(t *testing.T) {
	s := app.NewScope(context.Background())
	defer s.Close()

	var n atomic.Int32
	task := func(ctx context.Context) error { n.Add(1); return nil }
	require.NoError(t, s.Run(task, task, task))
	assert.Equal(t, int32(3), n.Load())

	// A finished batch does not poison the next one.
	require.NoError(t, s.Run(task))
	assert.Equal(t, int32(4), n.Load())
}

func TestScope_FirstErrorCancelsSiblings(t *testing.T) {
	s := app.NewScope(context.Background())
	defer s.Close()

	boom := errors.New("boom")
	err := s.Run(
		func(ctx context.Context) error { return boom },
		func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				return errors.New("sibling was not cancelled")
			}
		},
	)
	assert.ErrorIs(t, err, boom)
	assert.True(t, s.Alive(), "a failed batch leaves the scope usable")
}

func TestScope_CloseCancelsAndDropsResults(t *testing.T) {
	s := app.NewScope(context.Background())

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Run(func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
	}()
	<-started
	s.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight task was not cancelled")
	}

	applied := s.Update(func() { t.Fatal("update after close must not run") })
	assert.False(t, applied)
	assert.False(t, s.Alive())
	assert.ErrorIs(t, s.Run(func(ctx context.Context) error { return nil }), context.Canceled)
}
