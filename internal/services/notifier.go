package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"axion/interview-evaluator/internal/models"
)

// AnswerScoredEvent is published once a submitted answer has been judged.
type AnswerScoredEvent struct {
	ResponseID  uuid.UUID        `json:"response_id"`
	CandidateID uuid.UUID        `json:"candidate_id"`
	QuestionID  uuid.UUID        `json:"question_id"`
	Score       int              `json:"score"`
	Sentiment   models.Sentiment `json:"sentiment"`
	Timestamp   time.Time        `json:"timestamp"`
}

func NewAnswerScoredEvent(resp *models.Response, j models.Judgment) AnswerScoredEvent {
	return AnswerScoredEvent{
		ResponseID:  resp.ID,
		CandidateID: resp.CandidateID,
		QuestionID:  resp.QuestionID,
		Score:       j.Score,
		Sentiment:   j.Sentiment,
		Timestamp:   time.Now().UTC(),
	}
}

type EventPublisher interface {
	PublishAnswerScored(ctx context.Context, event AnswerScoredEvent) error
	Close() error
}

// amqpChannel is the part of *amqp.Channel the publisher needs.
type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpPublisher struct {
	conn     *amqp.Connection
	channel  func() (amqpChannel, error)
	exchange string
	mu       sync.Mutex
}

// NewAMQPPublisher dials the broker and declares the topic exchange answers
// are routed through.
func NewAMQPPublisher(url, exchange string) (EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	log.Printf("✅ Connected to RabbitMQ, publishing to '%s'\n", exchange)

	return &amqpPublisher{
		conn: conn,
		channel: func() (amqpChannel, error) {
			return conn.Channel()
		},
		exchange: exchange,
	}, nil
}

// PublishAnswerScored implements EventPublisher. Each publish uses its own
// channel, since channels are not safe for concurrent use.
func (p *amqpPublisher) PublishAnswerScored(ctx context.Context, event AnswerScoredEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ch, err := p.channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.Publish(
		p.exchange,
		CandidateRoutingKey(event.CandidateID),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
			MessageId:    event.ResponseID.String(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close implements EventPublisher.
func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// CandidateRoutingKey routes events of one candidate.
func CandidateRoutingKey(candidateID uuid.UUID) string {
	return fmt.Sprintf("candidate.%s", candidateID)
}

type noopPublisher struct{}

// NewNoopPublisher is used when no broker is configured.
func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishAnswerScored(ctx context.Context, event AnswerScoredEvent) error {
	return nil
}

func (noopPublisher) Close() error { return nil }
