package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"social-scheduler/internal/domain"
	"social-scheduler/internal/infra/metrics"
)

const defaultPollInterval = time.Second

// RabbitRunQueue реализует очередь запросов на прогон через AMQP.
type RabbitRunQueue struct {
	url          string
	queue        string
	pollInterval time.Duration

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

var _ domain.RunQueue = (*RabbitRunQueue)(nil)

// NewRabbitRunQueue создаёт очередь. Подключение устанавливается лениво.
func NewRabbitRunQueue(amqpURL, queue string) (*RabbitRunQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	if _, err := amqp.ParseURI(amqpURL); err != nil {
		return nil, fmt.Errorf("parse amqp url: %w", err)
	}
	return &RabbitRunQueue{url: amqpURL, queue: queue, pollInterval: defaultPollInterval}, nil
}

// channel возвращает открытый канал, переподключаясь при необходимости.
func (q *RabbitRunQueue) channel() (*amqp.Channel, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ch != nil && !q.ch.IsClosed() {
		return q.ch, nil
	}
	if q.conn == nil || q.conn.IsClosed() {
		start := time.Now()
		conn, err := amqp.Dial(q.url)
		metrics.ObserveNetworkRequest("rabbitmq", "dial", q.queue, start, err)
		if err != nil {
			return nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		q.conn = conn
	}
	ch, err := q.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(q.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	q.ch = ch
	return ch, nil
}

// Enqueue публикует запрос в очередь.
func (q *RabbitRunQueue) Enqueue(ctx context.Context, req domain.RunRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal run request: %w", err)
	}
	ch, err := q.channel()
	if err != nil {
		return err
	}
	start := time.Now()
	err = ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    req.ID,
		Timestamp:    time.Now(),
		Body:         payload,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", q.queue, start, err)
	if err != nil {
		return fmt.Errorf("publish run request: %w", err)
	}
	return nil
}

// Pop опрашивает очередь, пока не получит запрос или не истечёт ctx.
func (q *RabbitRunQueue) Pop(ctx context.Context) (domain.RunRequest, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.RunRequest{}, err
		}
		ch, err := q.channel()
		if err != nil {
			return domain.RunRequest{}, err
		}
		start := time.Now()
		msg, ok, err := ch.Get(q.queue, true)
		metrics.ObserveNetworkRequest("rabbitmq", "get", q.queue, start, err)
		if err != nil {
			return domain.RunRequest{}, fmt.Errorf("get message: %w", err)
		}
		if !ok {
			select {
			case <-ctx.Done():
				return domain.RunRequest{}, ctx.Err()
			case <-time.After(q.pollInterval):
			}
			continue
		}
		var req domain.RunRequest
		if err := json.Unmarshal(msg.Body, &req); err != nil {
			return domain.RunRequest{}, fmt.Errorf("decode run request: %w", err)
		}
		return req, nil
	}
}

// Close закрывает канал и соединение.
func (q *RabbitRunQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	var errs []error
	if q.ch != nil {
		errs = append(errs, q.ch.Close())
		q.ch = nil
	}
	if q.conn != nil {
		errs = append(errs, q.conn.Close())
		q.conn = nil
	}
	return errors.Join(errs...)
}
