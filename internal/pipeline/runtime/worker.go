package runtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/broker"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/metrics"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/routing"
	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	amqp "github.com/rabbitmq/amqp091-go"
)

// delivery is the slice of amqp.Delivery the handler needs. Narrowing it
// keeps the processing contract testable without a live broker.
type delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Worker runs one Stage against its input queue. Within a process, handlers
// run concurrently only up to the channel prefetch; all cross-handler
// coordination goes through the relational store.
type Worker struct {
	cfg     *config.Config
	log     logger.Logger
	db      database.Database
	metrics metrics.Metrics
	tracer  tracer.Tracer
	catalog *workflow.Catalog
	stage   Stage

	// Ready, when set, is invoked once the worker is consuming. The health
	// server uses it to flip the readiness probe.
	Ready func()

	wg sync.WaitGroup
}

func NewWorker(
	cfg *config.Config,
	log logger.Logger,
	db database.Database,
	m metrics.Metrics,
	trc tracer.Tracer,
	catalog *workflow.Catalog,
	stage Stage,
) *Worker {
	return &Worker{
		cfg:     cfg,
		log:     log.WithField("component", stage.Component()),
		db:      db,
		metrics: m,
		tracer:  trc,
		catalog: catalog,
		stage:   stage,
	}
}

// Run connects, declares topology, and consumes until the context is
// cancelled. A dropped broker connection triggers a reconnect cycle; a
// cancelled context triggers the soft shutdown: stop consuming, drain
// in-flight handlers, close the channel.
func (w *Worker) Run(ctx context.Context) error {
	for {
		conn, err := broker.Connect(ctx, &w.cfg.Broker, w.log)
		if err != nil {
			return err
		}

		err = w.consume(ctx, conn)

		if ctx.Err() != nil {
			w.wg.Wait()
			_ = conn.Close()
			w.log.Info("worker stopped")
			return nil
		}
		_ = conn.Close()
		if err != nil {
			w.log.WithField("error", err.Error()).Warn("consume loop ended, reconnecting")
		}

		select {
		case <-ctx.Done():
			w.wg.Wait()
			return nil
		case <-time.After(time.Second):
		}
	}
}

func (w *Worker) consume(ctx context.Context, conn *broker.Connection) error {
	ch := conn.Channel()

	// Startup declares all topology before any consumer begins; every worker
	// does this idempotently so boot order does not matter.
	wf, err := w.catalog.Load(workflow.DefaultWorkflowName)
	if err != nil {
		return err
	}
	if err := broker.DeclareTopology(ch, wf, w.cfg.Broker.MessageTTLMS); err != nil {
		return err
	}

	queue := broker.QueueForComponent(w.stage.Component())
	deliveries, err := ch.Consume(queue, w.stage.Component(), false, false, false, false, nil)
	if err != nil {
		return err
	}

	publisher := broker.NewPublisher(ch, w.stage.Component())
	w.log.WithField("queue", queue).Info("consuming")
	if w.Ready != nil {
		w.Ready()
	}

	for {
		select {
		case <-ctx.Done():
			_ = ch.Cancel(w.stage.Component(), false)
			return nil
		case amqpErr := <-conn.NotifyClose():
			if amqpErr != nil {
				return amqpErr
			}
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			w.wg.Add(1)
			go func(d amqp.Delivery) {
				defer w.wg.Done()
				w.handle(ctx, publisher, &d, d.Body, deathCount(d.Headers))
			}(d)
		}
	}
}

// handle runs the per-message processing contract:
//
//  1. deserialize; malformed bodies are dead-lettered immediately
//  2. open one transaction and invoke the stage logic inside it
//  3. commit
//  4. resolve and publish every outgoing pair
//  5. ack
//
// A failure in 2-3 rolls back and requeues (bounded by the redelivery
// ceiling); a publish failure after commit also requeues, which is why stage
// logic must be idempotent on replay. Commit-before-publish is the
// load-bearing ordering: a sibling can only observe state that is already
// durable.
func (w *Worker) handle(ctx context.Context, publisher broker.Publisher, d delivery, body []byte, redeliveries int) {
	start := time.Now()
	span, ctx := w.tracer.StartSpan(ctx, "worker:"+w.stage.Component())
	defer span.Finish()

	msg, err := envelope.Decode(body)
	if err != nil {
		w.log.WithField("error", err.Error()).Error("message rejected: undecodable")
		w.observe("rejected", start)
		_ = d.Nack(false, false)
		return
	}

	log := w.log.WithFields(map[string]any{
		"request_id": msg.RequestID,
		"trace_id":   msg.TraceID,
	})
	log.Info("message received")
	span.SetTag("request_id", msg.RequestID)

	var outgoing []Outgoing
	err = w.db.Atomic(ctx, func(txCtx context.Context) error {
		var stageErr error
		outgoing, stageErr = w.stage.Process(txCtx, msg)
		return stageErr
	})
	if err != nil {
		requeue := w.shouldRequeue(err, redeliveries)
		log.WithFields(map[string]any{
			"error":   err.Error(),
			"requeue": requeue,
		}).Error("stage processing failed")
		w.observe("failed", start)
		_ = d.Nack(false, requeue)
		return
	}

	published := 0
	for _, out := range outgoing {
		dest, err := routing.Resolve(out.Key, out.Message, w.catalog, w.stage.Component())
		if err != nil {
			log.WithFields(map[string]any{
				"routing_key": out.Key,
				"error":       err.Error(),
			}).Error("routing resolution failed after commit")
			w.observe("failed", start)
			_ = d.Nack(false, w.shouldRequeue(err, redeliveries))
			return
		}
		if dest == nil {
			log.Debug("terminal stage, nothing to publish")
			continue
		}
		if err := publisher.Publish(ctx, dest.Exchange, dest.RoutingKey, dest.Message); err != nil {
			log.WithFields(map[string]any{
				"exchange":    dest.Exchange,
				"routing_key": dest.RoutingKey,
				"error":       err.Error(),
			}).Error("publish failed after commit")
			w.observe("failed", start)
			_ = d.Nack(false, true)
			return
		}
		published++
	}

	_ = d.Ack(false)
	w.observe("processed", start)
	log.WithFields(map[string]any{
		"elapsed_s":       time.Since(start).Seconds(),
		"published_count": published,
	}).Info("message processed")
}

// shouldRequeue maps an error to the redelivery decision. Permanent errors
// (unknown workflow, malformed data, constraint violations) go straight to
// the DLQ; transient and unclassified errors requeue until the redelivery
// ceiling pushes them out.
func (w *Worker) shouldRequeue(err error, redeliveries int) bool {
	maxRetries := w.cfg.Broker.MaxRetries
	if maxRetries > 0 && redeliveries >= maxRetries {
		return false
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Kind != apperror.KindPersistance
	}
	return true
}

func (w *Worker) observe(outcome string, start time.Time) {
	w.metrics.RecordStage(w.stage.Component(), outcome, time.Since(start).Seconds())
}

// deathCount reads how many times this message has already been dead-letter
// cycled or rejected, from the broker-maintained x-death header.
func deathCount(headers amqp.Table) int {
	deaths, ok := headers["x-death"].([]any)
	if !ok {
		return 0
	}
	total := 0
	for _, d := range deaths {
		entry, ok := d.(amqp.Table)
		if !ok {
			continue
		}
		if count, ok := entry["count"].(int64); ok {
			total += int(count)
		}
	}
	return total
}
