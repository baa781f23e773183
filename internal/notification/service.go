package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/davicafu/knowledgenest/internal/infra/broker"
	"github.com/davicafu/knowledgenest/internal/shared/events"
)

// AuditLog registra cada evento procesado en un almacén analítico.
type AuditLog interface {
	Record(ctx context.Context, eventType string, data map[string]any) error
}

// Service es el único consumidor del sistema: enlaza la cola de
// notificaciones a los patrones de routing y despacha cada evento a su
// handler. Los handlers solo tienen efectos laterales (logs, notificación
// downstream); un handler lento atasca el pipeline de prefetch=1, trade-off
// aceptado a cambio de procesar en orden.
type Service struct {
	client *broker.Client
	router *Router
	cfg    broker.ConsumerConfig
	audit  AuditLog
	log    *zap.Logger
}

func NewService(client *broker.Client, cfg broker.ConsumerConfig, audit AuditLog, log *zap.Logger) *Service {
	s := &Service{
		client: client,
		router: NewRouter(log),
		cfg:    cfg,
		audit:  audit,
		log:    log,
	}

	s.router.Register(events.UserRegistered, s.handleUserRegistered)
	s.router.Register(events.CourseCreated, s.handleCourseCreated)
	s.router.Register(events.CourseEnrolled, s.handleCourseEnrolled)
	s.router.Register(events.ReviewCreated, s.handleReviewCreated)

	return s
}

// Run bloquea consumiendo eventos hasta que el contexto se cancele o la
// reconexión se agote.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("🚀 Servicio de notificaciones arrancado",
		zap.String("queue", s.cfg.Queue),
		zap.Strings("routing_keys", s.cfg.Patterns),
	)
	return s.client.Consume(ctx, s.cfg, s.dispatch)
}

func (s *Service) dispatch(ctx context.Context, eventType string, data map[string]any) error {
	s.log.Info("📩 Evento recibido", zap.String("event_type", eventType))

	if err := s.router.Dispatch(ctx, eventType, data); err != nil {
		return err
	}

	// El audit log es opcional y best-effort: un fallo analítico no debe
	// rechazar una notificación ya procesada.
	if s.audit != nil {
		if err := s.audit.Record(ctx, eventType, data); err != nil {
			s.log.Warn("No se pudo registrar el evento en el audit log",
				zap.String("event_type", eventType),
				zap.Error(err),
			)
		}
	}
	return nil
}

// ---------------- Handlers ----------------
// En producción enviarían emails o push reales; aquí dejan constancia en el
// log, igual que el resto de efectos downstream.

func (s *Service) handleUserRegistered(_ context.Context, data map[string]any) error {
	s.log.Info("📧 Enviando email de bienvenida",
		zap.Any("user_id", data["user_id"]),
		zap.Any("email", data["email"]),
	)
	return nil
}

func (s *Service) handleCourseCreated(_ context.Context, data map[string]any) error {
	s.log.Info("📚 Curso nuevo añadido al catálogo",
		zap.Any("course_id", data["course_id"]),
		zap.Any("title", data["title"]),
	)
	return nil
}

func (s *Service) handleCourseEnrolled(_ context.Context, data map[string]any) error {
	s.log.Info("🎓 Enviando confirmación de matrícula",
		zap.Any("user_id", data["user_id"]),
		zap.Any("course_id", data["course_id"]),
	)
	return nil
}

func (s *Service) handleReviewCreated(_ context.Context, data map[string]any) error {
	s.log.Info("⭐ Reseña procesada, rating del curso actualizado",
		zap.Any("review_id", data["review_id"]),
		zap.Any("course_id", data["course_id"]),
		zap.Any("rating", data["rating"]),
	)
	return nil
}
