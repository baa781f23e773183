package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/davicafu/knowledgenest/internal/shared/events"
)

// Resultados de publicación que no tiene sentido reintentar: un mensaje sin
// cola destino o un nack del broker no se arreglan repitiendo el envío.
var (
	errUnroutable = Permanent(errors.New("broker: message unroutable, no queue bound"))
	errNacked     = Permanent(errors.New("broker: message not acknowledged by broker"))
)

// Publish serializa el envelope a JSON UTF-8 y lo publica con confirmación de
// entrega y flag mandatory. Devuelve true solo si el broker confirmó la
// recepción y enrutó el mensaje a al menos una cola. Un false no es fatal para
// el llamador: la publicación siempre ocurre después del commit local, así que
// un fallo aquí puede perder un evento, nunca un registro.
func (c *Client) Publish(ctx context.Context, exchange, routingKey string, env events.Envelope) bool {
	if !c.EnsureConnection(ctx) {
		c.log.Warn("No se puede publicar: sin conexión con RabbitMQ",
			zap.String("event_type", env.EventType),
		)
		return false
	}

	body, err := json.Marshal(env)
	if err != nil {
		c.log.Error("No se pudo serializar el envelope",
			zap.String("event_type", env.EventType),
			zap.Error(err),
		)
		return false
	}

	err = c.backoff.Do(ctx, "publish "+routingKey, func() error {
		return c.publishOnce(ctx, exchange, routingKey, body)
	})
	if err != nil {
		// Unroutable y nack ya quedaron logueados en el intento.
		if !errors.Is(err, errUnroutable) && !errors.Is(err, errNacked) {
			c.log.Warn("No se pudo publicar el evento",
				zap.String("event_type", env.EventType),
				zap.String("routing_key", routingKey),
				zap.Error(err),
			)
		}
		return false
	}

	c.log.Debug("Evento publicado",
		zap.String("event_type", env.EventType),
		zap.String("exchange", exchange),
		zap.String("routing_key", routingKey),
	)
	return true
}

func (c *Client) publishOnce(ctx context.Context, exchange, routingKey string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Autocuración dentro del intento: una sola marcación por intento, el
	// Backoff Executor acota el total.
	if !c.connectedLocked() {
		if err := c.connectLocked(); err != nil {
			return err
		}
	}

	ch, err := c.channelLocked()
	if err != nil {
		return err
	}

	// Redeclarar el exchange cura una topología perdida tras un reinicio del
	// broker; la declaración es idempotente.
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		c.invalidateChannelLocked()
		return classify(err)
	}

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, routingKey, true, false, amqp.Publishing{
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		DeliveryMode:    amqp.Persistent,
		MessageId:       uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		Body:            body,
	})
	if err != nil {
		c.invalidateChannelLocked()
		return err
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return err
	}

	// Un basic.return llega por el canal antes que el ack del confirm, así
	// que si el mensaje no se pudo enrutar ya está en el buffer.
	select {
	case ret, ok := <-c.returns:
		if !ok {
			// El canal murió durante la confirmación.
			c.invalidateChannelLocked()
			return amqp.ErrClosed
		}
		c.log.Warn("Mensaje devuelto por el broker: ninguna cola enlazada",
			zap.String("exchange", exchange),
			zap.String("routing_key", routingKey),
			zap.String("reply", ret.ReplyText),
		)
		return errUnroutable
	default:
	}

	if !acked {
		c.log.Warn("El broker no confirmó el mensaje (nack)",
			zap.String("exchange", exchange),
			zap.String("routing_key", routingKey),
		)
		return errNacked
	}
	return nil
}

// BoundPublisher fija el exchange de destino para que los servicios publiquen
// solo con routing key y envelope.
type BoundPublisher struct {
	client   *Client
	exchange string
}

func NewBoundPublisher(client *Client, exchange string) *BoundPublisher {
	return &BoundPublisher{client: client, exchange: exchange}
}

func (p *BoundPublisher) Publish(ctx context.Context, routingKey string, env events.Envelope) bool {
	return p.client.Publish(ctx, p.exchange, routingKey, env)
}
