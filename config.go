package executor

import (
	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/traderknot/executor/metrics"
)

// DefaultMaxWorkers is the concurrency ceiling applied when WithMaxWorkers is
// not specified.
const DefaultMaxWorkers = 2

// config holds Scheduler configuration.
type config struct {
	// MaxWorkers caps the number of simultaneously running workers.
	// Must be > 0. Default: DefaultMaxWorkers.
	MaxWorkers uint

	// Logger receives dispatch and completion events.
	// Default: zap.NewNop() (silent).
	Logger *zap.Logger

	// Metrics provides the instruments the scheduler records into.
	// Default: metrics.NewNoopProvider().
	Metrics metrics.Provider
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		MaxWorkers: DefaultMaxWorkers,
		Logger:     zap.NewNop(),
		Metrics:    metrics.NewNoopProvider(),
	}
}

// validateConfig performs invariants checks on the assembled configuration.
func validateConfig(cfg *config) error {
	if cfg.MaxWorkers == 0 {
		return errorc.With(ErrInvalidConfig, errorc.String("", "MaxWorkers must be > 0"))
	}
	if cfg.Logger == nil {
		return errorc.With(ErrInvalidConfig, errorc.String("", "Logger must not be nil"))
	}
	if cfg.Metrics == nil {
		return errorc.With(ErrInvalidConfig, errorc.String("", "Metrics must not be nil"))
	}
	return nil
}

// Option configures a Scheduler. Options return an error on invalid input
// instead of panicking.
type Option func(*config) error

// WithMaxWorkers sets the concurrency ceiling (must be > 0).
func WithMaxWorkers(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMaxWorkers requires n > 0"))
		}
		cfg.MaxWorkers = n
		return nil
	}
}

// WithLogger sets the logger used for dispatch/completion events.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics sets the metrics provider the scheduler records into.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}
