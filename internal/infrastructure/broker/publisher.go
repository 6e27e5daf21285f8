package broker

import (
	"context"

	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	"github.com/SergioST90/document-processing-system/internal/pkg/uid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the outbound half of the wire contract. Implementations must
// publish persistent JSON messages; the worker runtime publishes only after
// its transaction has committed.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, msg *envelope.Message) error
}

type channelPublisher struct {
	channel   *amqp.Channel
	component string
}

var _ Publisher = (*channelPublisher)(nil)

// NewPublisher returns a Publisher bound to the worker's channel. The
// component name travels in the message headers for audit trails.
func NewPublisher(ch *amqp.Channel, component string) Publisher {
	return &channelPublisher{channel: ch, component: component}
}

func (p *channelPublisher) Publish(ctx context.Context, exchange, routingKey string, msg *envelope.Message) error {
	body, err := msg.Encode()
	if err != nil {
		return apperror.NewInternal(apperror.CodeInternalError, "failed to encode message", err)
	}

	err = p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    uid.NewUUID(),
		Headers: amqp.Table{
			"request_id": msg.RequestID,
			"component":  p.component,
		},
	})
	if err != nil {
		return apperror.NewTransient(apperror.CodeBrokerUnavailable, "failed to publish message", err)
	}
	return nil
}
