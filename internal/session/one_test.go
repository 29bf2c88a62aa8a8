package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yieldingCallback(values ...string) Callback[*fakeSession, string] {
	return func(ctx context.Context, ses *fakeSession, yield func(string) bool) error {
		for _, v := range values {
			if !yield(v) {
				return nil
			}
		}
		return nil
	}
}

func TestExecuteOne_SingleValue(t *testing.T) {
	scoped := NewScoped[*fakeSession, string](fixedSource(&fakeSession{}))
	var finalized atomic.Int32

	one, err := scoped.ExecuteOneFinally(context.Background(),
		yieldingCallback("only"), countingFinalizer(&finalized))
	require.NoError(t, err)

	value, found, err := one.Get()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "only", value)
	assert.Equal(t, int32(1), finalized.Load())
}

func TestExecuteOne_EmptyProduction(t *testing.T) {
	scoped := NewScoped[*fakeSession, string](fixedSource(&fakeSession{}))
	var finalized atomic.Int32

	one, err := scoped.ExecuteOneFinally(context.Background(),
		yieldingCallback(), countingFinalizer(&finalized))
	require.NoError(t, err)

	value, found, err := one.Get()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
	assert.Equal(t, int32(1), finalized.Load())
}

func TestExecuteOne_MoreThanOneValueViolatesCardinality(t *testing.T) {
	scoped := NewScoped[*fakeSession, string](fixedSource(&fakeSession{}))
	var finalized atomic.Int32

	one, err := scoped.ExecuteOneFinally(context.Background(),
		yieldingCallback("a", "b", "c"), countingFinalizer(&finalized))
	require.NoError(t, err)

	_, found, err := one.Get()
	assert.ErrorIs(t, err, ErrNonUnique)
	assert.False(t, found)
	// mesmo com a violação, o finalizer roda exatamente uma vez
	assert.Equal(t, int32(1), finalized.Load())
}

func TestExecuteOne_CallbackErrorPassesThrough(t *testing.T) {
	errBoom := errors.New("boom")
	scoped := NewScoped[*fakeSession, string](fixedSource(&fakeSession{}))

	one, err := scoped.ExecuteOne(context.Background(),
		func(ctx context.Context, ses *fakeSession, yield func(string) bool) error {
			return errBoom
		},
	)
	require.NoError(t, err)

	_, found, err := one.Get()
	assert.Equal(t, errBoom, err)
	assert.False(t, found)
}

func TestExecuteOne_GetIsIdempotent(t *testing.T) {
	scoped := NewScoped[*fakeSession, string](fixedSource(&fakeSession{}))

	one, err := scoped.ExecuteOne(context.Background(), yieldingCallback("stable"))
	require.NoError(t, err)

	first, foundFirst, errFirst := one.Get()
	second, foundSecond, errSecond := one.Get()

	assert.Equal(t, first, second)
	assert.Equal(t, foundFirst, foundSecond)
	assert.Equal(t, errFirst, errSecond)
}

func TestExecuteOne_NilCallbackRejectedSynchronously(t *testing.T) {
	scoped := NewScoped[*fakeSession, string](fixedSource(&fakeSession{}))

	one, err := scoped.ExecuteOne(context.Background(), nil)
	assert.Nil(t, one)
	assert.ErrorIs(t, err, ErrNilCallback)
}
