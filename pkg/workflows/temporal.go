package workflows

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"

	"github.com/ghuser/pantry/pkg/logger"
)

// TemporalClient wraps the Temporal SDK client with the namespace and task
// queue shopping-list workflows run on.
type TemporalClient struct {
	Client    client.Client
	Namespace string
	TaskQueue string
	log       logger.Logger
}

// NewTemporalClient initializes a Temporal client with OTel tracing integration.
// Call Close() when the application shuts down.
func NewTemporalClient(ctx context.Context, hostPort, namespace, taskQueue string, log logger.Logger) (*TemporalClient, error) {
	otelInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer("temporal-client"),
	})
	if err != nil {
		return nil, fmt.Errorf("create temporal otel interceptor: %w", err)
	}

	c, err := client.DialContext(ctx, client.Options{
		HostPort:     hostPort,
		Namespace:    namespace,
		Logger:       newTemporalLogger(log),
		Interceptors: []interceptor.ClientInterceptor{otelInterceptor},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal server at %s: %w", hostPort, err)
	}

	log.Info("temporal client connected", "host_port", hostPort, "namespace", namespace, "task_queue", taskQueue)

	return &TemporalClient{
		Client:    c,
		Namespace: namespace,
		TaskQueue: taskQueue,
		log:       log,
	}, nil
}

// StartRecompute starts RecomputeShoppingListsWorkflow for a recipe change.
// The workflow id is derived from the event id, so a redelivered event maps
// onto the run it already started.
func (tc *TemporalClient) StartRecompute(ctx context.Context, recipeID, eventID uuid.UUID) error {
	run, err := tc.Client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "recompute-shopping-lists-" + eventID.String(),
		TaskQueue: tc.TaskQueue,
	}, RecomputeShoppingListsWorkflow, recipeID)
	if err != nil {
		return fmt.Errorf("start recompute workflow for recipe %s: %w", recipeID, err)
	}
	tc.log.InfoContext(ctx, "recompute workflow started",
		"recipe_id", recipeID, "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return nil
}

// Ping reports whether the Temporal frontend is serving.
func (tc *TemporalClient) Ping(ctx context.Context) error {
	if _, err := tc.Client.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return fmt.Errorf("temporal health check: %w", err)
	}
	return nil
}

// Close gracefully shuts down the Temporal client connection.
func (tc *TemporalClient) Close() {
	tc.Client.Close()
	tc.log.Info("temporal client closed")
}

// temporalLogger adapts logger.Logger to Temporal's log.Logger interface.
type temporalLogger struct {
	log logger.Logger
}

func newTemporalLogger(log logger.Logger) temporallog.Logger {
	return &temporalLogger{log: log}
}

func (l *temporalLogger) Debug(msg string, keyvals ...interface{}) {
	l.log.Debug(msg, keyvals...)
}

func (l *temporalLogger) Info(msg string, keyvals ...interface{}) {
	l.log.Info(msg, keyvals...)
}

func (l *temporalLogger) Warn(msg string, keyvals ...interface{}) {
	l.log.Warn(msg, keyvals...)
}

func (l *temporalLogger) Error(msg string, keyvals ...interface{}) {
	l.log.Error(msg, keyvals...)
}
