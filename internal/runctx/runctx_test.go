package runctx

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart(t *testing.T) {
	ctx, r := Start(context.Background(), "collect")

	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "collect", r.Pipeline)
	assert.Same(t, r, From(ctx))

	_, other := Start(context.Background(), "collect")
	assert.NotEqual(t, r.ID, other.ID)
}

func TestFrom_Missing(t *testing.T) {
	assert.Equal(t, "unknown", From(context.Background()).ID)
}

func TestWrap(t *testing.T) {
	ctx, r := Start(context.Background(), "enrich")
	base := errors.New("boom")

	err := Wrap(ctx, base)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), r.ID)
	assert.NoError(t, Wrap(ctx, nil))
}
