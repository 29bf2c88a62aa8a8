package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SessionSource abre sessões causalmente consistentes no cluster.
// É o colaborador externo do gateway de sessão: o gateway só repassa o
// handle, e quem encerra a sessão é o finalizer (endSession).
type SessionSource struct {
	client *mongo.Client
}

func NewSessionSource(client *mongo.Client) *SessionSource {
	return &SessionSource{client: client}
}

// Open implementa session.Source para *mongo.Session
func (s *SessionSource) Open(ctx context.Context) (*mongo.Session, error) {
	ses, err := s.client.StartSession(options.Session().SetCausalConsistency(true))
	if err != nil {
		return nil, fmt.Errorf("failed to start mongo session: %w", err)
	}
	return ses, nil
}

// endSession é o finalizer padrão dos repositórios deste pacote.
// Usa context.Background de propósito: o encerramento precisa acontecer
// mesmo quando o contexto da requisição já foi cancelado.
func endSession(ses *mongo.Session) error {
	ses.EndSession(context.Background())
	return nil
}
