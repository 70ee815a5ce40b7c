package generation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/eternisai/fxinsight/internal/insights"
	"github.com/eternisai/fxinsight/internal/logger"
)

var errNoPayload = errors.New("strategy returned neither payload nor error")

// Strategy is one way of obtaining a payload for a request.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req insights.Request) (insights.Payload, error)
}

// Orchestrator tries its strategies in order until one yields a payload.
// It holds no per-call state and is safe for concurrent use.
type Orchestrator struct {
	strategies []Strategy
	logger     *logger.Logger
}

// NewOrchestrator creates an orchestrator over strategies, tried in the given order.
func NewOrchestrator(logger *logger.Logger, strategies ...Strategy) *Orchestrator {
	return &Orchestrator{
		strategies: strategies,
		logger:     logger.WithComponent("generation"),
	}
}

// Generate returns at least req.MinBullets points for req.
//
// ctx is the cancellation handle of this invocation: once it is done Generate
// returns ErrCanceled and no further strategy is tried. A failed strategy is
// never retried; the next one runs immediately. When every strategy fails the
// error is a *GenerationError wrapping the last failure.
func (o *Orchestrator) Generate(ctx context.Context, req insights.Request) ([]insights.Point, error) {
	req.MinBullets = insights.ClampMinBullets(req.MinBullets)

	var (
		attempts []string
		lastErr  error
	)

	for _, strategy := range o.strategies {
		if ctx.Err() != nil {
			return nil, ErrCanceled
		}

		name := strategy.Name()
		attempts = append(attempts, name)
		attemptCtx := logger.WithStrategy(ctx, name)
		log := o.logger.WithContext(attemptCtx)

		start := time.Now()
		payload, err := strategy.Attempt(attemptCtx, req)
		if errors.Is(err, ErrCanceled) || ctx.Err() != nil {
			log.Info("generation canceled", slog.Duration("duration", time.Since(start)))
			return nil, ErrCanceled
		}
		if err != nil {
			log.Debug("strategy failed",
				slog.Duration("duration", time.Since(start)),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		if payload == nil {
			log.Warn("strategy returned no payload", slog.Duration("duration", time.Since(start)))
			lastErr = &DecodeError{Err: errNoPayload}
			continue
		}

		points := insights.Finalize(insights.Interpret(payload, req.MinBullets), req.MinBullets)

		log.Info("generation succeeded",
			slog.Duration("duration", time.Since(start)),
			slog.Int("points", len(points)))

		return points, nil
	}

	if lastErr == nil {
		lastErr = &ConfigError{Reason: "no generation strategy configured"}
	}

	return nil, &GenerationError{Attempts: attempts, Err: lastErr}
}
