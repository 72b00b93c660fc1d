package inflight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalGuard(t *testing.T) {
	g := NewLocalGuard()
	ctx := context.Background()
	key := Key("sell", "p1")

	release, err := g.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = g.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrInFlight)

	other, err := g.Acquire(ctx, Key("sell", "p2"))
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := g.Acquire(ctx, key)
	require.NoError(t, err)
	again()
}

func TestDo(t *testing.T) {
	g := NewLocalGuard()
	ctx := context.Background()
	key := Key("receive", "o1")

	err := Do(ctx, g, key, func() error {
		return Do(ctx, g, key, func() error { return nil })
	})
	assert.ErrorIs(t, err, ErrInFlight)

	ran := false
	require.NoError(t, Do(ctx, g, key, func() error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
}
