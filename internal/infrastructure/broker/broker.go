package broker

import (
	"context"
	"time"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Connection wraps an AMQP connection plus the single channel a worker uses.
// The channel's prefetch bounds how many un-acked deliveries a worker holds
// at once; coordination between handlers happens through the database, never
// through shared process state.
type Connection struct {
	cfg *config.BrokerConfig
	log logger.Logger

	conn    *amqp.Connection
	channel *amqp.Channel

	closed chan *amqp.Error
}

// Connect dials the broker, retrying with a fixed wait until the context is
// cancelled. Workers are expected to come up before (or while) the broker
// does, so a refused dial is not fatal.
func Connect(ctx context.Context, cfg *config.BrokerConfig, log logger.Logger) (*Connection, error) {
	wait := time.Duration(cfg.ReconnectWait) * time.Second
	if wait <= 0 {
		wait = 3 * time.Second
	}

	l := log.WithField("component", "broker")
	for {
		conn, err := amqp.Dial(cfg.URL)
		if err == nil {
			ch, err := conn.Channel()
			if err != nil {
				conn.Close()
				return nil, apperror.NewTransient(apperror.CodeBrokerUnavailable, "failed to open channel", err)
			}
			if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
				conn.Close()
				return nil, apperror.NewTransient(apperror.CodeBrokerUnavailable, "failed to set qos", err)
			}

			c := &Connection{
				cfg:     cfg,
				log:     l,
				conn:    conn,
				channel: ch,
				closed:  conn.NotifyClose(make(chan *amqp.Error, 1)),
			}
			l.Info("broker connected")
			return c, nil
		}

		l.WithFields(map[string]any{
			"error":      err.Error(),
			"retry_wait": wait.String(),
		}).Warn("broker dial failed, retrying")

		select {
		case <-ctx.Done():
			return nil, apperror.NewTransient(apperror.CodeBrokerUnavailable, "broker dial cancelled", ctx.Err())
		case <-time.After(wait):
		}
	}
}

// Channel returns the worker's channel.
func (c *Connection) Channel() *amqp.Channel {
	return c.channel
}

// NotifyClose fires when the underlying connection drops; the worker run loop
// uses it to trigger a reconnect cycle.
func (c *Connection) NotifyClose() <-chan *amqp.Error {
	return c.closed
}

// Close shuts the channel then the connection. Safe to call after a broker-
// initiated close.
func (c *Connection) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}
