package nasc

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option is a function that configures a Nasc engine.
type Option func(*Nasc) error

// WithLogger sends diagnostics about absorbed failures (missing bindings,
// failed constructors, dependency cycles) to logger at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Nasc) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		n.logger = logger
		return nil
	}
}

// WithDebug logs diagnostics to stderr with a development console logger.
func WithDebug() Option {
	return func(n *Nasc) error {
		n.logger = newDevelopmentLogger(zapcore.DebugLevel)
		return nil
	}
}

// WithMetrics registers resolution counters on reg under the "nasc"
// namespace. Engines given the same registerer share one set of counters.
func WithMetrics(reg prometheus.Registerer) Option {
	return withMetrics(reg, "")
}

func withMetrics(reg prometheus.Registerer, namespace string) Option {
	return func(n *Nasc) error {
		if reg == nil {
			return fmt.Errorf("registerer cannot be nil")
		}
		m := newMetrics(namespace)
		if err := m.register(reg); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		n.metrics = m
		return nil
	}
}

// WithConfig applies a Config: its logger and, when enabled, its metrics.
func WithConfig(cfg Config) Option {
	return func(n *Nasc) error {
		logger, err := cfg.BuildLogger()
		if err != nil {
			return err
		}
		n.logger = logger

		if !cfg.Metrics.Enabled {
			return nil
		}
		reg := cfg.Metrics.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		return withMetrics(reg, cfg.Metrics.Namespace)(n)
	}
}
