package broker

import (
	"context"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrNotConnected se devuelve cuando una operación necesita el broker y la
// conexión no se pudo establecer dentro de la política de reintentos.
var ErrNotConnected = errors.New("broker: not connected")

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	VHost       string
	Heartbeat   time.Duration
	DialTimeout time.Duration
	Retry       Policy
}

type dialFunc func(cfg Config) (*amqp.Connection, error)

// Client posee la conexión física con RabbitMQ: exactamente una conexión y un
// canal lógico por proceso, protegidos por mutex (los canales AMQP no son
// seguros para uso concurrente). La conexión es perezosa: se abre en el primer
// EnsureConnection y se restablece cuando el transporte reporta cierre.
type Client struct {
	cfg     Config
	log     *zap.Logger
	backoff *Executor
	dial    dialFunc

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	returns chan amqp.Return
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg:     cfg,
		log:     log,
		backoff: NewExecutor(cfg.Retry, log),
		dial:    amqpDial,
	}
}

func amqpDial(cfg Config) (*amqp.Connection, error) {
	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		Vhost:    cfg.VHost,
	}
	return amqp.DialConfig(uri.String(), amqp.Config{
		Heartbeat:  cfg.Heartbeat,
		Dial:       amqp.DefaultDial(cfg.DialTimeout),
		Properties: amqp.Table{"connection_name": "knowledgenest"},
	})
}

// EnsureConnection garantiza una conexión viva, reconectando bajo backoff si
// hace falta. Nunca lanza más allá de este límite: los llamadores deciden con
// el booleano si siguen reintentando a otro ritmo o abortan.
func (c *Client) EnsureConnection(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connectedLocked() {
		return true
	}

	if err := c.backoff.Do(ctx, "connect", c.connectLocked); err != nil {
		c.log.Error("No se pudo conectar con RabbitMQ",
			zap.String("host", c.cfg.Host),
			zap.Int("port", c.cfg.Port),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (c *Client) connectedLocked() bool {
	return c.conn != nil && !c.conn.IsClosed()
}

// connectLocked abre la conexión y el único canal lógico del proceso.
func (c *Client) connectLocked() error {
	conn, err := c.dial(c.cfg)
	if err != nil {
		return err
	}

	// Una conexión bloqueada por límites de recursos del broker se registra
	// pero no fuerza la desconexión; solo el cierre del transporte lo hace.
	blocked := conn.NotifyBlocked(make(chan amqp.Blocking, 1))
	go func() {
		for b := range blocked {
			if b.Active {
				c.log.Warn("Conexión bloqueada por el broker", zap.String("reason", b.Reason))
			} else {
				c.log.Info("Conexión desbloqueada por el broker")
			}
		}
	}()

	c.conn = conn
	c.ch = nil
	if _, err := c.channelLocked(); err != nil {
		conn.Close()
		c.conn = nil
		return err
	}

	c.log.Info("✅ Conectado a RabbitMQ",
		zap.String("host", c.cfg.Host),
		zap.Int("port", c.cfg.Port),
	)
	return nil
}

// channelLocked devuelve el canal actual, reabriéndolo desde la conexión viva
// si el que teníamos reporta cierre. Todo canal nuevo entra en modo confirm y
// registra el canal de basic.return para los mensajes mandatory devueltos.
func (c *Client) channelLocked() (*amqp.Channel, error) {
	if c.ch != nil && !c.ch.IsClosed() {
		return c.ch, nil
	}
	if c.conn == nil || c.conn.IsClosed() {
		return nil, ErrNotConnected
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return nil, err
	}

	c.ch = ch
	c.returns = ch.NotifyReturn(make(chan amqp.Return, 8))
	return ch, nil
}

// invalidateChannelLocked descarta el canal para que la siguiente operación
// abra uno fresco.
func (c *Client) invalidateChannelLocked() {
	if c.ch != nil && !c.ch.IsClosed() {
		c.ch.Close()
	}
	c.ch = nil
}

// Close cierra la conexión con el broker; los mensajes sin ack en vuelo se
// reentregarán a otro consumidor.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.ch = nil
	c.log.Info("Conexión RabbitMQ cerrada")
	return err
}

// classify marca como permanentes los rechazos de canal por parámetros
// incompatibles: reintentar no arregla un mismatch de configuración.
func classify(err error) error {
	var aerr *amqp.Error
	if errors.As(err, &aerr) && aerr.Code == amqp.PreconditionFailed {
		return Permanent(err)
	}
	return err
}
