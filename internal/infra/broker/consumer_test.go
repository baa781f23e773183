package broker

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeAcker implementa amqp.Acknowledger registrando cada ack/nack.
type fakeAcker struct {
	acks    int
	nacks   int
	requeue []bool
}

func (f *fakeAcker) Ack(tag uint64, multiple bool) error {
	f.acks++
	return nil
}

func (f *fakeAcker) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacks++
	f.requeue = append(f.requeue, requeue)
	return nil
}

func (f *fakeAcker) Reject(tag uint64, requeue bool) error {
	f.nacks++
	f.requeue = append(f.requeue, requeue)
	return nil
}

var _ amqp.Acknowledger = (*fakeAcker)(nil)

func newTestClient() *Client {
	return NewClient(Config{Retry: Policy{MaxAttempts: 1}}, zap.NewNop())
}

func delivery(acker amqp.Acknowledger, body string) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: acker,
		DeliveryTag:  42,
		RoutingKey:   "course.enrolled",
		Body:         []byte(body),
	}
}

func TestHandleDelivery_Success(t *testing.T) {
	c := newTestClient()
	acker := &fakeAcker{}

	var gotType string
	var gotData map[string]any
	dispatch := func(_ context.Context, eventType string, data map[string]any) error {
		gotType = eventType
		gotData = data
		return nil
	}

	body := `{"event_type":"course.enrolled","timestamp":"2026-08-28T10:00:00Z","data":{"course_id":7,"user_id":3}}`
	c.handleDelivery(context.Background(), delivery(acker, body), dispatch)

	assert.Equal(t, "course.enrolled", gotType)
	assert.Equal(t, float64(7), gotData["course_id"])
	assert.Equal(t, 1, acker.acks)
	assert.Equal(t, 0, acker.nacks)
}

func TestHandleDelivery_MalformedBodyRejectedWithoutRequeue(t *testing.T) {
	c := newTestClient()
	acker := &fakeAcker{}

	dispatched := false
	dispatch := func(context.Context, string, map[string]any) error {
		dispatched = true
		return nil
	}

	c.handleDelivery(context.Background(), delivery(acker, "esto no es JSON"), dispatch)

	// Un cuerpo no decodificable jamás llega al handler ni vuelve a la cola.
	assert.False(t, dispatched)
	assert.Equal(t, 0, acker.acks)
	assert.Equal(t, 1, acker.nacks)
	assert.Equal(t, []bool{false}, acker.requeue)
}

func TestHandleDelivery_HandlerErrorRejectedWithoutRequeue(t *testing.T) {
	c := newTestClient()
	acker := &fakeAcker{}

	dispatch := func(context.Context, string, map[string]any) error {
		return errors.New("downstream unavailable")
	}

	body := `{"event_type":"review.created","timestamp":"2026-08-28T10:00:00Z","data":{}}`
	c.handleDelivery(context.Background(), delivery(acker, body), dispatch)

	assert.Equal(t, 0, acker.acks)
	assert.Equal(t, 1, acker.nacks)
	assert.Equal(t, []bool{false}, acker.requeue)
}

func TestHandleDelivery_UnknownTopLevelKeysIgnored(t *testing.T) {
	c := newTestClient()
	acker := &fakeAcker{}

	dispatch := func(context.Context, string, map[string]any) error { return nil }

	// Claves desconocidas a nivel raíz se ignoran por compatibilidad.
	body := `{"event_type":"user.registered","timestamp":"2026-08-28T10:00:00Z","data":{},"trace_id":"abc","v":2}`
	c.handleDelivery(context.Background(), delivery(acker, body), dispatch)

	assert.Equal(t, 1, acker.acks)
	assert.Equal(t, 0, acker.nacks)
}
