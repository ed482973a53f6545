package email

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dispatcher encola correos salientes para entrega asíncrona. El flujo que
// encola nunca espera la entrega: la mutación de estado ya quedó persistida
// y un fallo de correo no debe revertirla ni convertirla en error.
type Dispatcher interface {
	Enqueue(ctx context.Context, msg Message) error
}

const (
	deliverAttempts = 3
	deliverBackoff  = 2 * time.Second
)

// deliver intenta enviar un mensaje con reintentos y backoff fijo.
func deliver(ctx context.Context, logger *zap.Logger, sender Sender, msg Message) {
	var lastErr error
	for attempt := 1; attempt <= deliverAttempts; attempt++ {
		if lastErr = sender.Send(ctx, msg); lastErr == nil {
			return
		}
		if attempt < deliverAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(deliverBackoff):
			}
		}
	}
	if logger != nil {
		logger.Error("mail delivery failed",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(lastErr),
		)
	}
}

// MemoryQueue despacha correos desde un canal en memoria con un worker propio.
type MemoryQueue struct {
	logger *zap.Logger
	sender Sender
	jobs   chan Message
}

func NewMemoryQueue(logger *zap.Logger, sender Sender, buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryQueue{
		logger: logger,
		sender: sender,
		jobs:   make(chan Message, buffer),
	}
}

// Start consume la cola hasta que el contexto se cancele.
func (q *MemoryQueue) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-q.jobs:
				deliver(ctx, q.logger, q.sender, msg)
			}
		}
	}()
}

func (q *MemoryQueue) Enqueue(_ context.Context, msg Message) error {
	select {
	case q.jobs <- msg:
		return nil
	default:
		return errors.New("mail queue full")
	}
}

// RedisQueue despacha correos a través de una lista de Redis, de modo que la
// cola sobrevive reinicios del proceso y puede consumirse desde otra réplica.
type RedisQueue struct {
	logger *zap.Logger
	sender Sender
	client *redis.Client
	key    string
}

func NewRedisQueue(logger *zap.Logger, sender Sender, client *redis.Client) *RedisQueue {
	return &RedisQueue{
		logger: logger,
		sender: sender,
		client: client,
		key:    "mail:outbox",
	}
}

// Start consume la lista de Redis hasta que el contexto se cancele.
func (q *RedisQueue) Start(ctx context.Context) {
	go func() {
		for {
			if ctx.Err() != nil {
				return
			}
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if errors.Is(err, redis.Nil) {
					continue
				}
				if q.logger != nil {
					q.logger.Warn("mail queue pop failed", zap.Error(err))
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}
			if len(res) != 2 {
				continue
			}
			var msg Message
			if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
				if q.logger != nil {
					q.logger.Warn("mail queue bad payload", zap.Error(err))
				}
				continue
			}
			deliver(ctx, q.logger, q.sender, msg)
		}
	}()
}

func (q *RedisQueue) Enqueue(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}
