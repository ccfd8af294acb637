package ratelimit

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoliteness_NextWithinWindow(t *testing.T) {
	p := NewPoliteness(3*time.Second, 5*time.Second, rand.New(rand.NewPCG(42, 42)), nil)

	for i := 0; i < 100; i++ {
		d := p.Next()
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.LessOrEqual(t, d, 5*time.Second)
	}
}

func TestPoliteness_SameSeedSameDelays(t *testing.T) {
	a := NewPoliteness(time.Second, 2*time.Second, rand.New(rand.NewPCG(7, 7)), nil)
	b := NewPoliteness(time.Second, 2*time.Second, rand.New(rand.NewPCG(7, 7)), nil)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestPoliteness_WaitUsesSleepFunc(t *testing.T) {
	var slept []time.Duration
	sleep := func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	p := NewPoliteness(2*time.Second, 2*time.Second, nil, sleep)

	d, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
	assert.Equal(t, []time.Duration{2 * time.Second}, slept)
}

func TestPoliteness_ZeroWindowSkipsSleep(t *testing.T) {
	called := false
	p := NewPoliteness(0, 0, nil, func(context.Context, time.Duration) error {
		called = true
		return nil
	})

	d, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Zero(t, d)
	assert.False(t, called)
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDomainLimiter_PerHostBuckets(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)

	assert.True(t, dl.Allow("https://a.example.com/x"))
	assert.False(t, dl.Allow("https://a.example.com/y"))
	// a different host has its own bucket
	assert.True(t, dl.Allow("https://b.example.com/x"))
	// unparseable URLs are never blocked
	assert.True(t, dl.Allow("://bad"))
}
