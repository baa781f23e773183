package broker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/davicafu/knowledgenest/internal/shared/events"
)

// Dispatch procesa un evento ya decodificado. Un error rechaza la entrega sin
// requeue; nil la confirma.
type Dispatch func(ctx context.Context, eventType string, data map[string]any) error

type ConsumerConfig struct {
	Exchange string
	Queue    string
	Patterns []string
	Prefetch int // 1 por defecto: una entrega en vuelo por consumidor
	Tag      string
}

// Consume registra el consumidor y procesa entregas hasta que el contexto se
// cancele. Si el canal de entregas se cierra (caída de red, reinicio del
// broker), reconecta bajo backoff y re-ejecuta la topología completa, que es
// idempotente; las entregas sin ack en vuelo se reentregarán. Si la
// reconexión agota los reintentos devuelve el error al supervisor en vez de
// quedarse en bucle en silencio.
func (c *Client) Consume(ctx context.Context, cfg ConsumerConfig, dispatch Dispatch) error {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}

	for {
		if !c.EnsureConnection(ctx) {
			return fmt.Errorf("broker: consumer: %w", ErrNotConnected)
		}

		deliveries, err := c.setupConsumer(ctx, cfg)
		if err != nil {
			return fmt.Errorf("broker: consumer setup: %w", err)
		}

		c.log.Info("🎧 Consumidor registrado, esperando eventos...",
			zap.String("queue", cfg.Queue),
			zap.Strings("routing_keys", cfg.Patterns),
			zap.Int("prefetch", cfg.Prefetch),
		)

	deliveryLoop:
		for {
			select {
			case <-ctx.Done():
				// Parada cooperativa: cancelamos el registro en el broker
				// para que las entregas en vuelo vuelvan a la cola.
				c.cancelConsumer(cfg.Tag)
				c.log.Info("Consumidor detenido", zap.String("queue", cfg.Queue))
				return nil
			case d, ok := <-deliveries:
				if !ok {
					c.log.Warn("Canal de entregas cerrado, reconectando...",
						zap.String("queue", cfg.Queue))
					break deliveryLoop
				}
				c.handleDelivery(ctx, d, dispatch)
			}
		}
	}
}

// setupConsumer declara la topología, fija el prefetch y registra la entrega
// con ack manual. El prefetch es el único límite de concurrencia: con 1, el
// broker no entrega un mensaje nuevo hasta que el anterior se confirma o
// rechaza.
func (c *Client) setupConsumer(ctx context.Context, cfg ConsumerConfig) (<-chan amqp.Delivery, error) {
	queue, err := c.setupTopology(ctx, cfg.Exchange, cfg.Queue, cfg.Patterns)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ch, err := c.channelLocked()
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		c.invalidateChannelLocked()
		return nil, err
	}
	deliveries, err := ch.Consume(queue, cfg.Tag, false, false, false, false, nil)
	if err != nil {
		c.invalidateChannelLocked()
		return nil, err
	}
	return deliveries, nil
}

func (c *Client) cancelConsumer(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch != nil && !c.ch.IsClosed() {
		if err := c.ch.Cancel(tag, false); err != nil {
			c.log.Warn("No se pudo cancelar el consumidor", zap.Error(err))
		}
	}
}

// handleDelivery confirma o rechaza cada entrega exactamente una vez.
func (c *Client) handleDelivery(ctx context.Context, d amqp.Delivery, dispatch Dispatch) {
	var env events.Envelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		// Basura permanente: reencolarla crearía un bucle de poison message.
		c.log.Error("Entrega no decodificable, descartada sin requeue",
			zap.Uint64("delivery_tag", d.DeliveryTag),
			zap.String("routing_key", d.RoutingKey),
			zap.Error(err),
		)
		c.reject(d)
		return
	}

	if err := dispatch(ctx, env.EventType, env.Data); err != nil {
		// Un fallo de handler se asume determinista: reintentar el mismo
		// evento en caliente volvería a fallar. Declarando la cola con DLX,
		// estos rechazos quedarían disponibles para inspección offline.
		c.log.Error("El handler falló, entrega rechazada sin requeue",
			zap.String("event_type", env.EventType),
			zap.Uint64("delivery_tag", d.DeliveryTag),
			zap.Error(err),
		)
		c.reject(d)
		return
	}

	if err := d.Ack(false); err != nil {
		c.log.Warn("No se pudo confirmar la entrega",
			zap.Uint64("delivery_tag", d.DeliveryTag),
			zap.Error(err),
		)
	}
}

func (c *Client) reject(d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		c.log.Warn("No se pudo rechazar la entrega",
			zap.Uint64("delivery_tag", d.DeliveryTag),
			zap.Error(err),
		)
	}
}
