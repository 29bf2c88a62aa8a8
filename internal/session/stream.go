package session

import (
	"context"
	"sync/atomic"
)

// Stream é o canal de resultados multi-valor de uma execução.
//
// O fechamento de Values é o sinal terminal e só acontece depois que o
// finalizer terminou de rodar. Err só é confiável após esse fechamento.
// O consumidor deve drenar Values ou chamar Cancel, senão a produção
// fica bloqueada esperando espaço no canal.
type Stream[T any] struct {
	values    chan T
	cancel    context.CancelFunc
	err       error
	finalized atomic.Bool
}

func newStream[T any](cancel context.CancelFunc) *Stream[T] {
	return &Stream[T]{values: make(chan T), cancel: cancel}
}

// Values entrega os valores na ordem em que o callback produziu.
func (s *Stream[T]) Values() <-chan T { return s.values }

// Err retorna o erro terminal da execução. Erros do callback (e do
// Source) passam por aqui sem wrap nenhum, preservando errors.Is/As.
func (s *Stream[T]) Err() error { return s.err }

// Cancel interrompe a produção. O finalizer continua garantido,
// exatamente uma vez.
func (s *Stream[T]) Cancel() { s.cancel() }

// Collect drena o stream até o sinal terminal e devolve tudo que foi
// produzido junto com o erro terminal.
func (s *Stream[T]) Collect() ([]T, error) {
	var out []T
	for v := range s.values {
		out = append(out, v)
	}
	return out, s.err
}

// finish publica o erro e emite o sinal terminal. A escrita de err
// acontece antes do close, então quem lê depois do fechamento de
// Values pode confiar em Err.
func (s *Stream[T]) finish(err error) {
	s.err = err
	close(s.values)
	s.cancel()
}
