// Package session fornece um gateway de execução com escopo de sessão:
// um callback roda amarrado a um handle de sessão do backend e um
// finalizer é executado exatamente uma vez ao final, tenha o callback
// terminado com sucesso, com erro ou cancelado. O resultado sai por um
// canal assíncrono (Stream para N valores, One para 0..1).
//
// O pacote não abre nem fecha conexões: o handle vem de um Source
// externo e quem encerra a sessão é o finalizer fornecido pelo chamador.
package session

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Source abre (ou empresta) o handle de sessão usado em uma execução.
// O gateway chama o Source uma vez por invocação e apenas repassa o
// handle para o callback e para o finalizer; ele nunca fecha a sessão.
type Source[S any] func(ctx context.Context) (S, error)

// Callback é a unidade de trabalho. Produz zero ou mais valores via
// yield e retorna o erro terminal (nil em caso de sucesso).
// yield devolve false quando o consumidor cancelou; a partir daí o
// callback deve retornar o quanto antes.
type Callback[S, T any] func(ctx context.Context, ses S, yield func(T) bool) error

// Finalizer roda exatamente uma vez depois que o callback atinge um
// estado terminal. Normalmente é aqui que a sessão é encerrada.
// Erros do finalizer nunca substituem o resultado do callback: eles
// vão para o canal lateral (log + observer opcional) e nada mais.
type Finalizer[S any] func(ses S) error

type settings struct {
	logger           zerolog.Logger
	onFinalizerError func(err error)
}

// Option configura o gateway na construção.
type Option func(*settings)

// WithLogger troca o logger usado no canal lateral de erros de finalizer.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithFinalizerObserver registra um hook chamado quando o finalizer
// falha. Útil para métricas e testes; o resultado primário não muda.
func WithFinalizerObserver(fn func(err error)) Option {
	return func(s *settings) { s.onFinalizerError = fn }
}

func defaultSettings() settings {
	return settings{logger: log.Logger}
}
