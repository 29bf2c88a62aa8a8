package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	id string
}

func fixedSource(ses *fakeSession) Source[*fakeSession] {
	return func(ctx context.Context) (*fakeSession, error) {
		return ses, nil
	}
}

func countingFinalizer(count *atomic.Int32) Finalizer[*fakeSession] {
	return func(ses *fakeSession) error {
		count.Add(1)
		return nil
	}
}

func TestExecuteMany_ReplaysValuesInOrder(t *testing.T) {
	ses := &fakeSession{id: "s1"}
	scoped := NewScoped[*fakeSession, int](fixedSource(ses))

	var finalized atomic.Int32
	var sawSession *fakeSession

	stream, err := scoped.ExecuteManyFinally(context.Background(),
		func(ctx context.Context, got *fakeSession, yield func(int) bool) error {
			sawSession = got
			for _, v := range []int{1, 2, 3} {
				if !yield(v) {
					return nil
				}
			}
			return nil
		},
		countingFinalizer(&finalized),
	)
	require.NoError(t, err)

	values, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, values)

	// o sinal terminal só chega depois do finalizer completar
	assert.Equal(t, int32(1), finalized.Load())
	assert.Same(t, ses, sawSession)
}

func TestExecuteMany_PropagatesCallbackErrorVerbatim(t *testing.T) {
	errBoom := errors.New("boom")
	scoped := NewScoped[*fakeSession, int](fixedSource(&fakeSession{}))

	var finalized atomic.Int32

	stream, err := scoped.ExecuteManyFinally(context.Background(),
		func(ctx context.Context, ses *fakeSession, yield func(int) bool) error {
			yield(7)
			return errBoom
		},
		countingFinalizer(&finalized),
	)
	require.NoError(t, err)

	values, err := stream.Collect()
	assert.Equal(t, []int{7}, values)
	// sem wrap: identidade do erro preservada
	assert.Equal(t, errBoom, err)
	assert.Equal(t, int32(1), finalized.Load())
}

func TestExecuteManyFinally_RejectsNilArgumentsSynchronously(t *testing.T) {
	scoped := NewScoped[*fakeSession, int](fixedSource(&fakeSession{}))
	var finalized atomic.Int32

	t.Run("nil callback", func(t *testing.T) {
		stream, err := scoped.ExecuteManyFinally(context.Background(), nil, countingFinalizer(&finalized))
		assert.Nil(t, stream)
		assert.ErrorIs(t, err, ErrNilCallback)
	})

	t.Run("nil finalizer", func(t *testing.T) {
		stream, err := scoped.ExecuteManyFinally(context.Background(),
			func(ctx context.Context, ses *fakeSession, yield func(int) bool) error { return nil },
			nil,
		)
		assert.Nil(t, stream)
		assert.ErrorIs(t, err, ErrNilFinalizer)
	})

	// rejeição síncrona: nenhum finalizer chegou a rodar
	assert.Equal(t, int32(0), finalized.Load())
}

func TestExecuteMany_SourceFailureSkipsCallbackAndFinalizer(t *testing.T) {
	errOpen := errors.New("cannot open session")
	scoped := NewScoped[*fakeSession, int](func(ctx context.Context) (*fakeSession, error) {
		return nil, errOpen
	})

	var finalized atomic.Int32
	callbackRan := false

	stream, err := scoped.ExecuteManyFinally(context.Background(),
		func(ctx context.Context, ses *fakeSession, yield func(int) bool) error {
			callbackRan = true
			return nil
		},
		countingFinalizer(&finalized),
	)
	require.NoError(t, err)

	values, err := stream.Collect()
	assert.Empty(t, values)
	assert.Equal(t, errOpen, err)
	assert.False(t, callbackRan)
	assert.Equal(t, int32(0), finalized.Load())
}

func TestExecuteMany_CancelMidProductionFinalizesOnce(t *testing.T) {
	scoped := NewScoped[*fakeSession, int](fixedSource(&fakeSession{}))
	var finalized atomic.Int32

	stream, err := scoped.ExecuteManyFinally(context.Background(),
		func(ctx context.Context, ses *fakeSession, yield func(int) bool) error {
			for i := 0; ; i++ {
				if !yield(i) {
					return nil
				}
			}
		},
		countingFinalizer(&finalized),
	)
	require.NoError(t, err)

	received := 0
	for range stream.Values() {
		received++
		if received == 2 {
			stream.Cancel()
		}
	}

	assert.GreaterOrEqual(t, received, 2)
	assert.ErrorIs(t, stream.Err(), context.Canceled)
	assert.Equal(t, int32(1), finalized.Load())
}

func TestExecuteMany_CallerContextCancelFinalizesOnce(t *testing.T) {
	scoped := NewScoped[*fakeSession, int](fixedSource(&fakeSession{}))
	var finalized atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := scoped.ExecuteManyFinally(ctx,
		func(ctx context.Context, ses *fakeSession, yield func(int) bool) error {
			for i := 0; ; i++ {
				if !yield(i) {
					return nil
				}
			}
		},
		countingFinalizer(&finalized),
	)
	require.NoError(t, err)

	<-stream.Values()
	cancel()
	_, err = stream.Collect()

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), finalized.Load())
}

func TestExecuteMany_FinalizerErrorGoesToSideChannelOnly(t *testing.T) {
	errFinally := errors.New("end session failed")
	var observed error

	scoped := NewScoped[*fakeSession, string](fixedSource(&fakeSession{}),
		WithFinalizerObserver(func(err error) { observed = err }),
	)

	stream, err := scoped.ExecuteManyFinally(context.Background(),
		func(ctx context.Context, ses *fakeSession, yield func(string) bool) error {
			yield("ok")
			return nil
		},
		func(ses *fakeSession) error { return errFinally },
	)
	require.NoError(t, err)

	values, err := stream.Collect()
	// o resultado primário fica intacto
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, values)
	// o erro do finalizer aparece só no canal lateral
	assert.Equal(t, errFinally, observed)
}

func TestExecuteMany_FinalizerErrorNeverMasksCallbackError(t *testing.T) {
	errBoom := errors.New("boom")
	errFinally := errors.New("end session failed")
	var observed error

	scoped := NewScoped[*fakeSession, int](fixedSource(&fakeSession{}),
		WithFinalizerObserver(func(err error) { observed = err }),
	)

	stream, err := scoped.ExecuteManyFinally(context.Background(),
		func(ctx context.Context, ses *fakeSession, yield func(int) bool) error {
			return errBoom
		},
		func(ses *fakeSession) error { return errFinally },
	)
	require.NoError(t, err)

	_, err = stream.Collect()
	assert.Equal(t, errBoom, err)
	assert.Equal(t, errFinally, observed)
}

func TestExecuteMany_CallbackPanicIsRecovered(t *testing.T) {
	scoped := NewScoped[*fakeSession, int](fixedSource(&fakeSession{}))
	var finalized atomic.Int32

	stream, err := scoped.ExecuteManyFinally(context.Background(),
		func(ctx context.Context, ses *fakeSession, yield func(int) bool) error {
			panic("unexpected cursor state")
		},
		countingFinalizer(&finalized),
	)
	require.NoError(t, err)

	_, err = stream.Collect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.Equal(t, int32(1), finalized.Load())
}

func TestExecuteMany_NoopFinalizerConvenience(t *testing.T) {
	scoped := NewScoped[*fakeSession, int](fixedSource(&fakeSession{}))

	stream, err := scoped.ExecuteMany(context.Background(),
		func(ctx context.Context, ses *fakeSession, yield func(int) bool) error {
			yield(42)
			return nil
		},
	)
	require.NoError(t, err)

	values, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, []int{42}, values)
}
