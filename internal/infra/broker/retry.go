package broker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Policy define los parámetros de reintento con backoff exponencial.
// El delay del intento i es min(InitialDelay * 2^i, MaxDelay).
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Delay calcula la espera tras el intento fallido `attempt` (base 0).
func (p Policy) Delay(attempt int) time.Duration {
	d := p.InitialDelay << attempt
	if d > p.MaxDelay || d <= 0 { // <=0 cubre overflow del shift
		return p.MaxDelay
	}
	return d
}

// PermanentError marca un fallo que no tiene sentido reintentar
// (p.ej. una declaración con parámetros incompatibles).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent envuelve un error para que el Executor no lo reintente.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Executor ejecuta operaciones falibles con reintentos. Es stateless y
// reentrante: se puede compartir entre goroutines.
type Executor struct {
	policy Policy
	log    *zap.Logger
	sleep  func(context.Context, time.Duration) error
}

func NewExecutor(policy Policy, log *zap.Logger) *Executor {
	return &Executor{policy: policy, log: log, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do ejecuta fn hasta MaxAttempts veces (el primer intento cuenta). Tras cada
// fallo espera el delay calculado; el último error se propaga sin envolver.
// Un PermanentError corta los reintentos inmediatamente.
func (e *Executor) Do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < e.policy.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var perm *PermanentError
		if errors.As(lastErr, &perm) {
			return lastErr
		}

		if attempt == e.policy.MaxAttempts-1 {
			break
		}

		delay := e.policy.Delay(attempt)
		e.log.Warn("Operación fallida, reintentando",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", e.policy.MaxAttempts),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)
		if err := e.sleep(ctx, delay); err != nil {
			return err
		}
	}

	e.log.Error("Reintentos agotados",
		zap.String("op", op),
		zap.Int("max_attempts", e.policy.MaxAttempts),
		zap.Error(lastErr),
	)
	return lastErr
}
