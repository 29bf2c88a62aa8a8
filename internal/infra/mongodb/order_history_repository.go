package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/session"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// historyDocument representa o documento que será salvo no Mongo.
// Usamos tags 'bson' em vez de 'json'.
type historyDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"` // O Mongo gera automático se vazio
	OrderID     string        `bson:"order_id"`
	Status      string        `bson:"status"`
	Detail      string        `bson:"detail,omitempty"`
	AmountCents int64         `bson:"amount_cents"`
	RecordedAt  time.Time     `bson:"recorded_at"`
}

// OrderHistoryRepository implementa gateway.OrderHistoryRepository.
// Todas as operações rodam pelo gateway de sessão: o callback faz o
// trabalho dentro da sessão e o finalizer encerra a sessão em qualquer
// desfecho (sucesso, erro de cursor ou cancelamento do consumidor).
type OrderHistoryRepository struct {
	collection *mongo.Collection
	list       *session.Scoped[*mongo.Session, domain.OrderHistory]
	insert     *session.Scoped[*mongo.Session, string]
}

func NewOrderHistoryRepository(client *mongo.Client, dbName string) *OrderHistoryRepository {
	// Cria/Obtém a collection "order_history"
	collection := client.Database(dbName).Collection("order_history")
	source := NewSessionSource(client)
	return &OrderHistoryRepository{
		collection: collection,
		list:       session.NewScoped[*mongo.Session, domain.OrderHistory](source.Open),
		insert:     session.NewScoped[*mongo.Session, string](source.Open),
	}
}

// Append grava um registro de histórico dentro de uma sessão.
// ExecuteOneFinally: um insert, um id de volta, sessão encerrada no final.
func (r *OrderHistoryRepository) Append(ctx context.Context, entry domain.OrderHistory) error {
	one, err := r.insert.ExecuteOneFinally(ctx,
		func(ctx context.Context, ses *mongo.Session, yield func(string) bool) error {
			sesCtx := mongo.NewSessionContext(ctx, ses)

			doc := historyDocument{
				OrderID:     entry.OrderID,
				Status:      entry.Status,
				Detail:      entry.Detail,
				AmountCents: entry.AmountCents,
				RecordedAt:  entry.RecordedAt,
			}
			if doc.RecordedAt.IsZero() {
				doc.RecordedAt = time.Now()
			}

			result, err := r.collection.InsertOne(sesCtx, doc)
			if err != nil {
				return fmt.Errorf("failed to insert history entry: %w", err)
			}
			if oid, ok := result.InsertedID.(bson.ObjectID); ok {
				yield(oid.Hex())
			}
			return nil
		},
		endSession,
	)
	if err != nil {
		return err
	}

	_, _, err = one.Get()
	return err
}

// ListByOrder devolve o histórico do pedido em ordem cronológica.
// O cursor inteiro é percorrido dentro da mesma sessão causalmente
// consistente; se o consumidor cancelar no meio, o finalizer ainda
// encerra a sessão exatamente uma vez.
func (r *OrderHistoryRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	stream, err := r.list.ExecuteManyFinally(ctx,
		func(ctx context.Context, ses *mongo.Session, yield func(domain.OrderHistory) bool) error {
			sesCtx := mongo.NewSessionContext(ctx, ses)

			findOpts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}})
			cursor, err := r.collection.Find(sesCtx, bson.D{{Key: "order_id", Value: orderID}}, findOpts)
			if err != nil {
				return fmt.Errorf("failed to query order history: %w", err)
			}
			defer func() {
				_ = cursor.Close(sesCtx)
			}()

			for cursor.Next(sesCtx) {
				var doc historyDocument
				if err := cursor.Decode(&doc); err != nil {
					return fmt.Errorf("failed to decode history entry: %w", err)
				}
				if !yield(toDomainHistory(doc)) {
					return nil // consumidor cancelou
				}
			}
			return cursor.Err()
		},
		endSession,
	)
	if err != nil {
		return nil, err
	}

	return stream.Collect()
}

// Mapper: documento Mongo -> domínio
func toDomainHistory(doc historyDocument) domain.OrderHistory {
	return domain.OrderHistory{
		OrderID:     doc.OrderID,
		Status:      doc.Status,
		Detail:      doc.Detail,
		AmountCents: doc.AmountCents,
		RecordedAt:  doc.RecordedAt,
	}
}
