package notification

import (
	"context"

	"go.uber.org/zap"
)

// Handler procesa el data mapping de un evento. Los handlers son callbacks
// puros: el core no les pasa nada específico del broker.
type Handler func(ctx context.Context, data map[string]any) error

// Router mapea event_type → handler. El dispatch es un lookup, no un switch
// sobre strings.
type Router struct {
	handlers map[string]Handler
	log      *zap.Logger
}

func NewRouter(log *zap.Logger) *Router {
	return &Router{
		handlers: make(map[string]Handler),
		log:      log,
	}
}

func (r *Router) Register(eventType string, h Handler) {
	r.handlers[eventType] = h
}

// Dispatch busca el handler del tipo recibido. Un evento bien formado sin
// handler registrado no es un fallo: se loguea como warning y se devuelve nil
// para que la entrega se confirme igualmente.
func (r *Router) Dispatch(ctx context.Context, eventType string, data map[string]any) error {
	h, ok := r.handlers[eventType]
	if !ok {
		r.log.Warn("⚠️ Tipo de evento sin handler registrado",
			zap.String("event_type", eventType),
		)
		return nil
	}
	return h(ctx, data)
}
