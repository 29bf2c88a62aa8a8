package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/infra/mongodb"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Estrutura do evento que vem do RabbitMQ (JSON)
type OrderPlacedEvent struct {
	OrderID     string `json:"order_id"`
	CustomerID  string `json:"customer_id"`
	SKU         string `json:"sku"`
	Quantity    int64  `json:"quantity"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Arquivo .env não encontrado, usando variáveis de ambiente")
	}

	mongoUser := os.Getenv("MONGO_USER")
	mongoPass := os.Getenv("MONGO_PASS")
	mongoHost := os.Getenv("MONGO_HOST")
	if mongoHost == "" {
		// Em docker compose, o host é o nome do serviço 'mongodb'. Localmente, mapeamos porta.
		mongoHost = "localhost"
	}
	mongoURI := fmt.Sprintf("mongodb://%s:%s@%s:27017", mongoUser, mongoPass, mongoHost)

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao criar client MongoDB")
	}

	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Erro ao desconectar Mongo")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Verifica conexão
	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatal().Err(err).Msg("Erro ao pingar MongoDB")
	}
	log.Info().Msg("✅ Conectado ao MongoDB!")

	// O histórico passa pelo gateway de sessão: cada escrita roda em uma
	// sessão causalmente consistente, encerrada pelo finalizer.
	historyRepo := mongodb.NewOrderHistoryRepository(mongoClient, "orderflow_history")

	rabbitUser := os.Getenv("RABBITMQ_USER")
	rabbitPass := os.Getenv("RABBITMQ_PASS")
	rabbitHost := os.Getenv("RABBITMQ_HOST")
	if rabbitHost == "" {
		rabbitHost = "localhost"
	}

	rabbitURL := "amqp://" + rabbitUser + ":" + rabbitPass + "@" + rabbitHost + ":5672/"
	conn, err := amqp.DialConfig(rabbitURL, amqp.Config{
		Properties: amqp.Table{
			"connection_name": "HistoryWorker_Consumer",
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao conectar no RabbitMQ")
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Msg("Erro ao fechar conexão RabbitMQ")
		}
	}()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao abrir canal")
	}
	defer func() {
		if err := ch.Close(); err != nil {
			log.Error().Err(err).Msg("Erro ao fechar canal RabbitMQ")
		}
	}()

	// Definir QoS (Prefetch Count = 1)
	// Isso garante que o RabbitMQ mande apenas 1 mensagem por vez e espere o Ack.
	// Resolve problemas de "travar" ou buffer encher.
	if err := ch.Qos(1, 0, false); err != nil {
		log.Fatal().Err(err).Msg("Erro ao configurar QoS")
	}

	// Declarar a Exchange (Garantia de que ela existe, idempotente)
	err = ch.ExchangeDeclare(
		"order_events", // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao declarar exchange")
	}

	// Declarar a Fila (QUEUE) - Onde as mensagens ficam guardadas
	q, err := ch.QueueDeclare(
		"order_history_queue", // name
		true,                  // durable (sobrevive a restart do server)
		false,                 // delete when unused
		false,                 // exclusive
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao declarar fila")
	}

	//  Bind (Amarração) - Ligar a Fila ao Exchange
	// "Tudo que começar com 'order.' vai para a 'order_history_queue'"
	err = ch.QueueBind(
		q.Name,         // queue name
		"order.#",      // routing key (# é curinga/wildcard)
		"order_events", // exchange
		false,
		nil,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao fazer bind da fila")
	}

	// Iniciar Consumo (manual ack: só confirmamos depois do Mongo gravar)
	msgs, err := ch.Consume(
		q.Name,           // queue
		"history_worker", // consumer tag
		false,            // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,              // args
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao registrar consumidor")
	}

	// Monitoramento de queda de conexão
	notifyClose := make(chan *amqp.Error)
	ch.NotifyClose(notifyClose)

	log.Info().Str("queue", q.Name).Msg(" [*] Worker iniciado. Aguardando mensagens...")

	go func() {
		for {
			select {
			case err := <-notifyClose:
				if err != nil {
					log.Error().Err(err).Msg("🔴 Canal RabbitMQ fechado")
					os.Exit(1) // Força o worker a cair para o Docker subir de novo
				}
				return
			case d, ok := <-msgs:
				if !ok {
					log.Error().Msg("🔴 Canal de mensagens fechado.")
					os.Exit(1)
				}

				log.Info().Str("body", string(d.Body)).Msg(" [⬇️] Recebido")

				var event OrderPlacedEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Error().Err(err).Msg("Erro ao decodificar JSON")
					if err := d.Nack(false, false); err != nil {
						log.Error().Err(err).Msg("Erro ao enviar Nack (JSON inválido)")
					}
					continue
				}

				entry := domain.OrderHistory{
					OrderID:     event.OrderID,
					Status:      event.Status,
					Detail:      fmt.Sprintf("%dx %s para %s", event.Quantity, event.SKU, event.CustomerID),
					AmountCents: event.AmountCents,
					RecordedAt:  time.Now(),
				}

				saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := historyRepo.Append(saveCtx, entry); err != nil {
					log.Error().Err(err).Msg("Erro ao salvar no Mongo")
					if err := d.Nack(false, true); err != nil {
						log.Error().Err(err).Msg("Erro ao enviar Nack (Mongo erro)")
					}
					cancel()
					continue
				}
				cancel()

				if err := d.Ack(false); err != nil {
					log.Error().Err(err).Msg("Erro ao enviar Ack")
				}
				log.Info().Str("order_id", event.OrderID).Msg(" [✅] Histórico salvo no MongoDB e Ack enviado.")
			}
		}
	}()

	// Graceful Shutdown (Bloqueia a main até receber sinal)
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	<-stopChan // <--- O programa fica parado AQUI até receber Ctrl+C

	log.Info().Msg("Shutting down worker...")
}
