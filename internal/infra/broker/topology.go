package broker

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeclareExchange declara un exchange topic durable. Es idempotente: repetir
// la declaración con los mismos parámetros es un no-op; declararlo con
// parámetros incompatibles es un error de configuración fatal y no se
// reintenta (ver classify).
func (c *Client) DeclareExchange(ctx context.Context, name string) error {
	return c.backoff.Do(ctx, "declare exchange "+name, func() error {
		if !c.EnsureConnection(ctx) {
			return ErrNotConnected
		}
		c.mu.Lock()
		defer c.mu.Unlock()

		ch, err := c.channelLocked()
		if err != nil {
			return err
		}
		if err := ch.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			c.invalidateChannelLocked()
			return classify(err)
		}
		return nil
	})
}

// DeclareQueue declara una cola durable y devuelve su nombre canónico (el
// broker puede renombrar colas anónimas; las colas nombradas devuelven el
// nombre dado).
func (c *Client) DeclareQueue(ctx context.Context, name string) (string, error) {
	var queueName string
	err := c.backoff.Do(ctx, "declare queue "+name, func() error {
		if !c.EnsureConnection(ctx) {
			return ErrNotConnected
		}
		c.mu.Lock()
		defer c.mu.Unlock()

		ch, err := c.channelLocked()
		if err != nil {
			return err
		}
		q, err := ch.QueueDeclare(name, true, false, false, false, nil)
		if err != nil {
			c.invalidateChannelLocked()
			return classify(err)
		}
		queueName = q.Name
		return nil
	})
	return queueName, err
}

// BindQueue enlaza la cola al exchange con un patrón de routing key
// ('*' un segmento, '#' cero o más). Repetir el binding es un no-op.
func (c *Client) BindQueue(ctx context.Context, queue, exchange, pattern string) error {
	return c.backoff.Do(ctx, "bind queue "+queue, func() error {
		if !c.EnsureConnection(ctx) {
			return ErrNotConnected
		}
		c.mu.Lock()
		defer c.mu.Unlock()

		ch, err := c.channelLocked()
		if err != nil {
			return err
		}
		if err := ch.QueueBind(queue, pattern, exchange, false, nil); err != nil {
			c.invalidateChannelLocked()
			return classify(err)
		}
		return nil
	})
}

// setupTopology declara exchange y cola y establece todos los bindings, en
// ese orden: el exchange y la cola deben existir antes de enlazarlos. Es
// seguro re-ejecutarla completa tras cada reconexión.
func (c *Client) setupTopology(ctx context.Context, exchange, queue string, patterns []string) (string, error) {
	if err := c.DeclareExchange(ctx, exchange); err != nil {
		return "", err
	}
	name, err := c.DeclareQueue(ctx, queue)
	if err != nil {
		return "", err
	}
	for _, pattern := range patterns {
		if err := c.BindQueue(ctx, name, exchange, pattern); err != nil {
			return "", err
		}
	}
	return name, nil
}
