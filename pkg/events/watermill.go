// Package events provides the PostgreSQL-backed pub/sub EventBus that carries
// domain events between the item, recipe and user contexts.
//
// Delivery semantics:
//   - All worker instances share the <service>-consumer group, so each message
//     is handled by exactly one instance.
//   - Handlers must be idempotent. A failing handler is retried in-process
//     with capped exponential backoff. Once the attempts are spent the message
//     is copied to <topic>.dead and acked, so one poison message does not hold
//     back the rest of its topic.
//   - Trace context travels in message metadata and is restored for handlers.
package events

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/pantry/pkg/config"
	"github.com/ghuser/pantry/pkg/logger"
)

const (
	shutdownTimeout = 30 * time.Second
	forwarderTopic  = "_forwarder_queue"
	errChanCap      = 100
)

// Metadata keys set on dead-lettered messages.
const (
	MetaDeadError = "dead_error"
	MetaDeadTopic = "dead_topic"
)

// DeadLetterTopic names the topic a message lands on after its handler
// exhausted every retry.
func DeadLetterTopic(topic string) string {
	return topic + ".dead"
}

// RetryPolicy bounds the in-process retries of a failing handler.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy is used when the config leaves retries unset.
var DefaultRetryPolicy = RetryPolicy{Attempts: 5, BaseDelay: 500 * time.Millisecond, MaxDelay: 30 * time.Second}

func retryPolicyFrom(cfg *config.Config) RetryPolicy {
	p := DefaultRetryPolicy
	if cfg.EventRetryAttempts > 0 {
		p.Attempts = cfg.EventRetryAttempts
	}
	if cfg.EventRetryBaseDelay > 0 {
		p.BaseDelay = cfg.EventRetryBaseDelay
	}
	if cfg.EventRetryMaxDelay > 0 {
		p.MaxDelay = cfg.EventRetryMaxDelay
	}
	return p
}

// EventBus is a PostgreSQL-backed pub/sub EventBus built on Watermill's SQL
// transport, which claims rows with FOR UPDATE SKIP LOCKED.
type EventBus struct {
	publisher    message.Publisher // direct SQL publisher or forwarder-decorated
	subscriber   message.Subscriber
	fwd          *forwarder.Forwarder
	db           *sql.DB
	log          logger.Logger
	retry        RetryPolicy
	consumed     metric.Int64Counter
	wg           sync.WaitGroup
	useForwarder bool
}

// NewEventBus opens its own connection to cfg.DefinitionDatabaseURL and builds
// a Watermill SQL publisher and subscriber. Schema tables are created on
// first use.
func NewEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, log, false)
}

// NewEventBusWithForwarder creates an EventBus whose transactional publishes
// go to a durable forwarder queue. The Forwarder daemon started by
// StartForwarder moves them to their target topic once the transaction that
// wrote them has committed.
func NewEventBusWithForwarder(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, log, true)
}

func newEventBus(cfg *config.Config, log logger.Logger, useForwarder bool) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DefinitionDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	wlog := &slogAdapter{log: log}

	pub, err := newSQLPublisher(db, wlog)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}

	var publisher message.Publisher = pub
	if useForwarder {
		publisher = forwarder.NewPublisher(pub, forwarder.PublisherConfig{
			ForwarderTopic: forwarderTopic,
		})
	}

	sub, err := newSQLSubscriber(db, cfg.ServiceName+"-consumer", wlog)
	if err != nil {
		_ = pub.Close()
		_ = db.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}

	consumed, err := otel.Meter("github.com/ghuser/pantry/pkg/events").Int64Counter(
		"events.consumed",
		metric.WithDescription("Messages consumed, by topic and outcome"),
	)
	if err != nil {
		_ = sub.Close()
		_ = pub.Close()
		_ = db.Close()
		return nil, fmt.Errorf("events: create counter: %w", err)
	}

	return &EventBus{
		publisher:    publisher,
		subscriber:   sub,
		db:           db,
		log:          log,
		retry:        retryPolicyFrom(cfg),
		consumed:     consumed,
		useForwarder: useForwarder,
	}, nil
}

func newSQLPublisher(db *sql.DB, wlog watermill.LoggerAdapter) (*watermillsql.Publisher, error) {
	return watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, wlog)
}

func newSQLSubscriber(db *sql.DB, group string, wlog watermill.LoggerAdapter) (*watermillsql.Subscriber, error) {
	return watermillsql.NewSubscriber(db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, wlog)
}

// StartForwarder starts the background daemon that drains the forwarder
// queue into the target topics. It returns once the daemon is running.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.useForwarder {
		return fmt.Errorf("events: StartForwarder called on non-forwarder EventBus")
	}
	if q.fwd != nil {
		return fmt.Errorf("events: forwarder already started")
	}

	wlog := &slogAdapter{log: q.log}

	fwdSub, err := newSQLSubscriber(q.db, "forwarder-consumer", wlog)
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}
	targetPub, err := newSQLPublisher(q.db, wlog)
	if err != nil {
		_ = fwdSub.Close()
		return fmt.Errorf("events: new forwarder target publisher: %w", err)
	}

	fwd, err := forwarder.NewForwarder(fwdSub, targetPub, wlog, forwarder.Config{
		ForwarderTopic: forwarderTopic,
	})
	if err != nil {
		_ = targetPub.Close()
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: forwarder started")
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
	case <-ctx.Done():
		return fmt.Errorf("events: context cancelled waiting for forwarder: %w", ctx.Err())
	}
	return nil
}

// DB returns the underlying *sql.DB.
func (q *EventBus) DB() *sql.DB {
	return q.db
}

// NewTxPublisher returns a Publisher bound to tx, so the event commits or
// rolls back together with the business write. Schema tables already exist
// by the time a transaction publishes.
func (q *EventBus) NewTxPublisher(tx *sql.Tx) (message.Publisher, error) {
	pub, err := watermillsql.NewPublisher(tx, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: false,
	}, &slogAdapter{log: q.log})
	if err != nil {
		return nil, fmt.Errorf("events: new tx publisher: %w", err)
	}
	if q.useForwarder {
		return forwarder.NewPublisher(pub, forwarder.PublisherConfig{
			ForwarderTopic: forwarderTopic,
		}), nil
	}
	return pub, nil
}

// Publish sends messages to topic outside any transaction, injecting the
// trace context of ctx into each message's metadata.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe consumes topic in the background until ctx is done or the bus
// is closed. Errors that survive retries and dead-lettering are sent on
// the returned channel, which callers must drain.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errChanCap)
	propagator := otel.GetTextMapPropagator()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)

		for msg := range ch {
			carrier := propagation.MapCarrier{}
			for k, v := range msg.Metadata {
				carrier[k] = v
			}
			msgCtx := propagator.Extract(ctx, carrier)

			if err := q.process(msgCtx, topic, msg, handler); err != nil {
				msg.Nack()
				select {
				case errCh <- err:
				default:
					q.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
						"error", err, "topic", topic)
				}
				continue
			}
			msg.Ack()
		}
	}()

	return errCh, nil
}

// process runs handler with retries. When every attempt fails the message
// is dead-lettered and process returns nil so it can be acked. It only
// returns an error when dead-lettering itself fails or ctx ends.
func (q *EventBus) process(ctx context.Context, topic string, msg *message.Message, handler Handler) error {
	herr := retryWithBackoff(ctx, msg, handler, q.retry, q.log)
	if herr == nil {
		q.count(ctx, topic, "ok")
		return nil
	}
	if ctx.Err() != nil {
		return herr
	}

	dead := msg.Copy()
	dead.Metadata.Set(MetaDeadError, herr.Error())
	dead.Metadata.Set(MetaDeadTopic, topic)
	if err := q.publisher.Publish(DeadLetterTopic(topic), dead); err != nil { //nolint:contextcheck
		q.count(ctx, topic, "failed")
		return fmt.Errorf("events: dead-letter %s: %w (handler: %w)", msg.UUID, err, herr)
	}

	q.count(ctx, topic, "dead")
	q.log.ErrorContext(ctx, "events: message dead-lettered",
		"topic", topic, "message_uuid", msg.UUID, "error", herr)
	return nil
}

func (q *EventBus) count(ctx context.Context, topic, outcome string) {
	if q.consumed == nil {
		return
	}
	q.consumed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("outcome", outcome),
	))
}

// retryWithBackoff calls handler up to p.Attempts times, doubling the delay
// after each failure up to p.MaxDelay.
func retryWithBackoff(ctx context.Context, msg *message.Message, handler Handler, p RetryPolicy, log logger.Logger) error {
	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == p.Attempts {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"message_uuid", msg.UUID,
			"attempt", attempt,
			"max_attempts", p.Attempts,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, p.MaxDelay)
	}
	return fmt.Errorf("events: handler failed after %d attempts: %w", p.Attempts, err)
}

// Ping checks the EventBus database connection health.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and the forwarder, waits up to 30s for
// in-flight handlers, then closes the publisher and the connection.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}

	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers to complete")
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return q.db.Close()
}

// slogAdapter bridges logger.Logger to watermill.LoggerAdapter.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
