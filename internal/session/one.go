package session

import "sync"

// One adapta um Stream para cardinalidade 0 ou 1.
type One[T any] struct {
	stream *Stream[T]

	once  sync.Once
	value T
	found bool
	err   error
}

// Get bloqueia até o estado terminal e devolve o valor, se houver.
// found indica se o callback produziu exatamente um valor; zero valores
// retornam found=false sem erro. Mais de um valor vira ErrNonUnique.
// Chamadas repetidas devolvem o mesmo resultado.
func (o *One[T]) Get() (T, bool, error) {
	o.once.Do(o.resolve)
	return o.value, o.found, o.err
}

func (o *One[T]) resolve() {
	count := 0
	for v := range o.stream.Values() {
		count++
		switch count {
		case 1:
			o.value = v
		case 2:
			// Cardinalidade violada: interrompe a produção e continua
			// drenando até o sinal terminal (e o finalizer) chegarem.
			o.stream.Cancel()
		}
	}

	if count > 1 {
		var zero T
		o.value, o.found, o.err = zero, false, ErrNonUnique
		return
	}
	if err := o.stream.Err(); err != nil {
		var zero T
		o.value, o.found, o.err = zero, false, err
		return
	}
	o.found = count == 1
}
