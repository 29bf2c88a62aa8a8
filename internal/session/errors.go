package session

import "errors"

var (
	// ErrNilCallback e ErrNilFinalizer são rejeições síncronas:
	// nenhuma goroutine sobe e nenhum finalizer roda.
	ErrNilCallback  = errors.New("session callback must not be nil")
	ErrNilFinalizer = errors.New("session finalizer must not be nil")

	// ErrNonUnique indica que uma execução 0..1 recebeu mais de um valor.
	ErrNonUnique = errors.New("session callback produced more than one result")
)
