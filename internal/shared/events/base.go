package events

import "time"

// Envelope es la unidad de intercambio entre servicios. El event_type hace
// también de routing key en el exchange. El esquema de Data lo deciden los
// productores y consumidores de cada tipo de evento, no el transporte.
type Envelope struct {
	EventType string         `json:"event_type"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// NewEnvelope crea un envelope con timestamp ISO-8601 asignado por el productor.
func NewEnvelope(eventType string, data map[string]any) Envelope {
	return Envelope{
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}
}
