package clickhouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// NotificationLogRepo guarda cada evento procesado por el servicio de
// notificaciones en ClickHouse para análisis offline.
type NotificationLogRepo struct {
	db *sql.DB
}

func NewNotificationLogRepo(addr string, dbName string) (*NotificationLogRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &NotificationLogRepo{db: conn}, nil
}

// Record inserta el evento procesado. El payload se guarda como JSON plano;
// el esquema por tipo lo conocen los productores, no este log.
func (r *NotificationLogRepo) Record(ctx context.Context, eventType string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO notifications_log (event_type, payload, received_at) VALUES (?, ?, ?)`,
		eventType, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification log: %w", err)
	}
	return nil
}
