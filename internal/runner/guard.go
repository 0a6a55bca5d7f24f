package runner

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"letraz-autoapply/internal/logging/types"
	"letraz-autoapply/pkg/utils"
)

// CircuitState represents the state of the failure circuit
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// String returns string representation of CircuitState
func (cs CircuitState) String() string {
	switch cs {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// GuardConfig configures a Guard
type GuardConfig struct {
	// ApplicationsPerHour paces attempts; zero or less disables pacing
	ApplicationsPerHour int
	// MaxConsecutiveFailures opens the circuit; zero or less disables it
	MaxConsecutiveFailures int
	// Cooldown is how long the circuit stays open before a trial attempt
	Cooldown time.Duration
}

// Guard paces application attempts and backs off after a run of failures,
// which usually means the site changed or started rejecting the session
type Guard struct {
	limiter      *rate.Limiter
	perHour      int
	maxFailures  int
	cooldown     time.Duration
	failureCount int
	lastFailTime time.Time
	state        CircuitState
	attempts     int64
	failures     int64
	now          func() time.Time
	mu           sync.Mutex
	logger       types.Logger
}

func NewGuard(cfg GuardConfig, logger types.Logger) *Guard {
	limit := rate.Inf
	if cfg.ApplicationsPerHour > 0 {
		limit = rate.Every(time.Hour / time.Duration(cfg.ApplicationsPerHour))
	}

	return &Guard{
		limiter:     rate.NewLimiter(limit, 1),
		perHour:     cfg.ApplicationsPerHour,
		maxFailures: cfg.MaxConsecutiveFailures,
		cooldown:    cfg.Cooldown,
		state:       CircuitClosed,
		now:         time.Now,
		logger:      logger,
	}
}

// Wait blocks until the next attempt may start: first until an open circuit
// has cooled down, then until the rate limiter grants a slot
func (g *Guard) Wait(ctx context.Context) error {
	if remaining := g.openFor(); remaining > 0 {
		g.logger.Warn("Circuit open, pausing applications", map[string]interface{}{
			"remaining": utils.FormatDuration(remaining),
		})
		if err := utils.Sleep(ctx, remaining); err != nil {
			return err
		}
		g.openFor()
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	g.attempts++
	g.mu.Unlock()
	return nil
}

// openFor moves an expired open circuit to half-open and returns how much
// of the cooldown is left otherwise
func (g *Guard) openFor() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != CircuitOpen {
		return 0
	}
	remaining := g.cooldown - g.now().Sub(g.lastFailTime)
	if remaining > 0 {
		return remaining
	}
	g.state = CircuitHalfOpen
	g.logger.Info("Circuit breaker transitioned to half-open")
	return 0
}

// RecordSuccess resets the consecutive failure count and closes a half-open circuit
func (g *Guard) RecordSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failureCount = 0
	if g.state == CircuitHalfOpen {
		g.state = CircuitClosed
		g.logger.Info("Circuit breaker closed after successful application")
	}
}

// RecordFailure counts a failed attempt and opens the circuit once the
// threshold is reached, or immediately when a half-open trial fails
func (g *Guard) RecordFailure(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failures++
	g.failureCount++
	g.lastFailTime = g.now()

	if g.maxFailures <= 0 {
		return
	}
	if g.state == CircuitHalfOpen || (g.state == CircuitClosed && g.failureCount >= g.maxFailures) {
		g.state = CircuitOpen
		fields := map[string]interface{}{
			"failures": g.failureCount,
			"cooldown": utils.FormatDuration(g.cooldown),
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		g.logger.Warn("Circuit breaker opened due to failures", fields)
	}
}

// State returns the current circuit state
func (g *Guard) State() CircuitState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Stats returns a snapshot for the status endpoint
func (g *Guard) Stats() map[string]interface{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	return map[string]interface{}{
		"attempts":       g.attempts,
		"failures":       g.failures,
		"circuit_state":  g.state.String(),
		"failure_count":  g.failureCount,
		"max_failures":   g.maxFailures,
		"last_fail_time": g.lastFailTime,
		"per_hour":       g.perHour,
	}
}
