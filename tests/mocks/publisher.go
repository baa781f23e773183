package mocks

import (
	"context"
	"sync"

	"github.com/davicafu/knowledgenest/internal/shared/events"
)

// PublishedEvent guarda la evidencia de una publicación del mock.
type PublishedEvent struct {
	RoutingKey string
	Envelope   events.Envelope
}

// MockPublisher captura los envelopes publicados. Si Fail es true simula un
// broker inalcanzable devolviendo false.
type MockPublisher struct {
	Published []PublishedEvent
	Fail      bool
	mu        sync.Mutex
}

func (p *MockPublisher) Publish(ctx context.Context, routingKey string, env events.Envelope) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return false
	}
	p.Published = append(p.Published, PublishedEvent{RoutingKey: routingKey, Envelope: env})
	return true
}

// Last devuelve el último evento publicado, o nil si no hay ninguno.
func (p *MockPublisher) Last() *PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Published) == 0 {
		return nil
	}
	return &p.Published[len(p.Published)-1]
}
