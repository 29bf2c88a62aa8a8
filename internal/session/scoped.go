package session

import (
	"context"
	"fmt"
)

// Scoped executa callbacks dentro de uma sessão fornecida por um Source.
// S é o tipo do handle de sessão (ex: *mongo.Session) e T o tipo dos
// valores produzidos.
//
// O gateway não guarda estado entre invocações além da configuração.
type Scoped[S, T any] struct {
	open Source[S]
	cfg  settings
}

// NewScoped cria o gateway por cima de um Source.
func NewScoped[S, T any](open Source[S], opts ...Option) *Scoped[S, T] {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Scoped[S, T]{open: open, cfg: cfg}
}

// ExecuteManyFinally é a primitiva do gateway: roda o callback na
// sessão e garante exatamente uma chamada ao finalizer depois do estado
// terminal (sucesso, erro ou cancelamento). O finalizer termina ANTES
// do fechamento do canal de valores, então o consumidor nunca observa o
// sinal terminal com a sessão ainda sendo desmontada.
//
// Callback e finalizer nil são rejeitados de forma síncrona, antes de
// qualquer trabalho assíncrono começar.
func (s *Scoped[S, T]) ExecuteManyFinally(ctx context.Context, action Callback[S, T], doFinally Finalizer[S]) (*Stream[T], error) {
	if action == nil {
		return nil, ErrNilCallback
	}
	if doFinally == nil {
		return nil, ErrNilFinalizer
	}

	runCtx, cancel := context.WithCancel(ctx)
	st := newStream[T](cancel)
	go s.produce(runCtx, st, action, doFinally)
	return st, nil
}

// ExecuteMany é ExecuteManyFinally com um finalizer vazio.
func (s *Scoped[S, T]) ExecuteMany(ctx context.Context, action Callback[S, T]) (*Stream[T], error) {
	return s.ExecuteManyFinally(ctx, action, func(S) error { return nil })
}

// ExecuteOneFinally adapta a execução para cardinalidade 0 ou 1.
// Um segundo valor produzido vira ErrNonUnique e cancela a produção.
func (s *Scoped[S, T]) ExecuteOneFinally(ctx context.Context, action Callback[S, T], doFinally Finalizer[S]) (*One[T], error) {
	st, err := s.ExecuteManyFinally(ctx, action, doFinally)
	if err != nil {
		return nil, err
	}
	return &One[T]{stream: st}, nil
}

// ExecuteOne é ExecuteOneFinally com um finalizer vazio.
func (s *Scoped[S, T]) ExecuteOne(ctx context.Context, action Callback[S, T]) (*One[T], error) {
	return s.ExecuteOneFinally(ctx, action, func(S) error { return nil })
}

// produce roda em goroutine própria: uma invocação, uma goroutine.
func (s *Scoped[S, T]) produce(ctx context.Context, st *Stream[T], action Callback[S, T], doFinally Finalizer[S]) {
	ses, err := s.open(ctx)
	if err != nil {
		// Sem sessão o callback nunca rodou, então o finalizer também
		// não roda (não existe handle para entregar a ele).
		st.finish(err)
		return
	}

	yield := func(v T) bool {
		if ctx.Err() != nil {
			return false
		}
		select {
		case st.values <- v:
			return true
		case <-ctx.Done():
			return false
		}
	}

	err = runCallback(ctx, ses, action, yield)
	if err == nil && ctx.Err() != nil {
		// Cancelado com o callback retornando nil: o consumidor não
		// pode confundir produção truncada com produção completa.
		err = ctx.Err()
	}

	s.finalize(st, ses, doFinally)
	st.finish(err)
}

func runCallback[S, T any](ctx context.Context, ses S, action Callback[S, T], yield func(T) bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic no session callback: %v", r)
		}
	}()
	return action(ctx, ses, yield)
}

// finalize garante a semântica "exatamente uma vez" com test-and-set
// atômico: o primeiro sinal terminal vence, os demais viram no-op.
func (s *Scoped[S, T]) finalize(st *Stream[T], ses S, doFinally Finalizer[S]) {
	if !st.finalized.CompareAndSwap(false, true) {
		return
	}
	if err := runFinalizer(ses, doFinally); err != nil {
		// Canal lateral: o erro do finalizer nunca mascara o resultado
		// primário do callback.
		s.cfg.logger.Error().Err(err).Msg("Finalizer da sessão falhou")
		if s.cfg.onFinalizerError != nil {
			s.cfg.onFinalizerError(err)
		}
	}
}

func runFinalizer[S any](ses S, doFinally Finalizer[S]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic no finalizer da sessão: %v", r)
		}
	}()
	return doFinally(ses)
}
