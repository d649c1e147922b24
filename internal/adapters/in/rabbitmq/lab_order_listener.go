package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/carewell-hms/allocation-service/internal/config"
	"github.com/carewell-hms/allocation-service/internal/core/domain"
	"github.com/carewell-hms/allocation-service/internal/core/ports/in"
	"github.com/carewell-hms/allocation-service/internal/core/ports/out"
)

const declareAttempts = 3

// systemActor is the identity the order subsystem acts under when its
// events drive workload transitions.
var systemActor = domain.Actor{ID: uuid.Nil, Role: domain.RoleAdmin}

type (
	EventResourceType string
	EventAction       string
)

const (
	EventResourceLabOrder    EventResourceType = "laborder"
	EventResourceTestCatalog EventResourceType = "testcatalog"
)

const (
	EventActionAssigned   EventAction = "assigned"
	EventActionCompleted  EventAction = "completed"
	EventActionInvalidate EventAction = "invalidate"
)

// EventRoutingKey is the parsed form of keys like
// hms.allocation-svc.laborder.assigned.
type EventRoutingKey struct {
	Source       string
	Receiver     string
	ResourceType EventResourceType
	Action       EventAction
}

type LabOrderMessage struct {
	OrderID      string `json:"orderId"`
	TechnicianID string `json:"technicianId"`
}

type TestCatalogMessage struct {
	TestID string `json:"testId"`
}

// LabOrderListener keeps technician workloads current from the order
// subsystem's events: order placement elsewhere in the HMS feeds Assign,
// completion feeds Complete. Catalog change events invalidate the category
// cache.
type LabOrderListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.TechnicianUseCase
	cache   out.CachePort
	cfg     *config.Config
	logger  out.LoggerPort
}

func NewLabOrderListener(useCase in.TechnicianUseCase, cache out.CachePort, cfg *config.Config, logger out.LoggerPort) (*LabOrderListener, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMQ.URL,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return &LabOrderListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// withRetry runs a declare-phase operation up to declareAttempts times;
// broker topology races during rollouts settle within a retry or two.
func (l *LabOrderListener) withRetry(event string, fields out.LogFields, fn func() error) error {
	var err error
	for attempt := 0; attempt < declareAttempts; attempt++ {
		if err = fn(); err == nil {
			l.logger.Info(event+".success", fields)
			return nil
		}

		retryFields := out.LogFields{"attempt": attempt + 1, "error": err.Error()}
		for k, v := range fields {
			retryFields[k] = v
		}
		l.logger.Warn(event+".retry", retryFields)
		time.Sleep(500 * time.Millisecond)
	}
	return err
}

func (l *LabOrderListener) Start(ctx context.Context) error {
	exchange := l.cfg.RabbitMQ.Exchange
	queueName := l.cfg.RabbitMQ.Queue

	err := l.withRetry("rabbitmq.exchange_declare", out.LogFields{"exchange": exchange}, func() error {
		return l.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	var queue amqp.Queue
	err = l.withRetry("rabbitmq.queue_declare", out.LogFields{"queue": queueName}, func() error {
		var declareErr error
		queue, declareErr = l.channel.QueueDeclare(queueName, true, false, false, false, nil)
		return declareErr
	})
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	// One queue, two bindings: lab-order lifecycle events and catalog
	// invalidation events.
	bindings := []string{l.cfg.RabbitMQ.Bind, "hms.allocation-svc.testcatalog.*"}
	for _, binding := range bindings {
		bindKey := binding
		err = l.withRetry("rabbitmq.queue_bind", out.LogFields{"queue": queue.Name, "binding": bindKey}, func() error {
			return l.channel.QueueBind(queue.Name, bindKey, exchange, false, nil)
		})
		if err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", queue.Name, err)
		}
	}

	consumerID := fmt.Sprintf("consumer-%s-%s", queue.Name, uuid.NewString())
	var msgs <-chan amqp.Delivery
	err = l.withRetry("rabbitmq.consume", out.LogFields{"queue": queue.Name, "consumerID": consumerID}, func() error {
		var consumeErr error
		msgs, consumeErr = l.channel.Consume(queue.Name, consumerID, false, false, false, false, nil)
		return consumeErr
	})
	if err != nil {
		return fmt.Errorf("failed to consume from queue %s: %w", queue.Name, err)
	}

	go func() {
		l.logger.Info("rabbitmq.consumer.started", out.LogFields{
			"queue":      queue.Name,
			"consumerID": consumerID,
		})

		for {
			select {
			case <-ctx.Done():
				l.logger.Info("rabbitmq.consumer.stopping_by_context", out.LogFields{
					"queue": queue.Name,
				})
				return
			case msg, ok := <-msgs:
				if !ok {
					l.logger.Warn("rabbitmq.consumer.channel_closed", out.LogFields{
						"queue": queue.Name,
					})
					return
				}

				if err := l.processMessage(ctx, msg); err != nil {
					l.logger.Error("rabbitmq.process_message.failed", out.LogFields{
						"routingKey": msg.RoutingKey,
						"messageId":  msg.MessageId,
						"error":      err.Error(),
					})

					// Rejected guards and malformed messages are not
					// requeued: redelivery cannot make them succeed.
					if nackErr := msg.Nack(false, false); nackErr != nil {
						l.logger.Error("rabbitmq.message.nack_failed", out.LogFields{
							"error": nackErr.Error(),
						})
					}
					continue
				}

				if ackErr := msg.Ack(false); ackErr != nil {
					l.logger.Error("rabbitmq.message.ack_failed", out.LogFields{
						"error": ackErr.Error(),
					})
				}
			}
		}
	}()

	return nil
}

func (l *LabOrderListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}

func parseEventRoutingKey(routingKey string) (EventRoutingKey, error) {
	parts := strings.Split(routingKey, ".")
	if len(parts) < 4 {
		return EventRoutingKey{}, fmt.Errorf("invalid routing key: %s", routingKey)
	}

	return EventRoutingKey{
		Source:       parts[0],
		Receiver:     parts[1],
		ResourceType: EventResourceType(parts[2]),
		Action:       EventAction(parts[3]),
	}, nil
}

func (l *LabOrderListener) processMessage(ctx context.Context, msg amqp.Delivery) error {
	key, err := parseEventRoutingKey(msg.RoutingKey)
	if err != nil {
		return err
	}

	processCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch key.ResourceType {
	case EventResourceLabOrder:
		return l.processLabOrderMessage(processCtx, key.Action, msg)
	case EventResourceTestCatalog:
		return l.processTestCatalogMessage(processCtx, key.Action, msg)
	default:
		l.logger.Debug("rabbitmq.message.skipped", out.LogFields{
			"resourceType": string(key.ResourceType),
		})
		return nil
	}
}

func (l *LabOrderListener) processLabOrderMessage(ctx context.Context, action EventAction, msg amqp.Delivery) error {
	var body LabOrderMessage
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		return fmt.Errorf("failed to unmarshal lab order message: %w", err)
	}

	technicianID, err := uuid.Parse(body.TechnicianID)
	if err != nil {
		return fmt.Errorf("invalid technician id in message: %w", err)
	}

	l.logger.Info("laborder.message.received", out.LogFields{
		"orderId":      body.OrderID,
		"technicianId": body.TechnicianID,
		"action":       string(action),
	})

	switch action {
	case EventActionAssigned:
		_, err = l.useCase.Assign(ctx, systemActor, technicianID)
	case EventActionCompleted:
		_, err = l.useCase.Complete(ctx, systemActor, technicianID)
	default:
		l.logger.Debug("laborder.message.skipped", out.LogFields{
			"action": string(action),
		})
		return nil
	}

	return err
}

func (l *LabOrderListener) processTestCatalogMessage(ctx context.Context, action EventAction, msg amqp.Delivery) error {
	if action != EventActionInvalidate || l.cache == nil {
		return nil
	}

	var body TestCatalogMessage
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		return fmt.Errorf("failed to unmarshal catalog message: %w", err)
	}

	l.cache.InvalidateTestCategory(ctx, body.TestID)
	l.logger.Info("testcatalog.message.invalidated", out.LogFields{
		"testId": body.TestID,
	})
	return nil
}
