package nasc

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/toutaio/toutago-nasc-resolver/registry"
)

const (
	reasonCycle       = "cycle"
	reasonConstructor = "constructor"
)

// metrics counts resolution outcomes. A nil *metrics records nothing.
type metrics struct {
	resolutions   *prometheus.CounterVec
	constructions *prometheus.CounterVec
	failures      *prometheus.CounterVec
}

func newMetrics(namespace string) *metrics {
	if namespace == "" {
		namespace = "nasc"
	}

	return &metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Top-level resolutions by outcome.",
		}, []string{"outcome"}),
		constructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "constructions_total",
			Help:      "Instances constructed by lifetime.",
		}, []string{"lifetime"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "construction_failures_total",
			Help:      "Implementations that could not be constructed, by reason.",
		}, []string{"reason"}),
	}
}

// register adds the counters to reg. Counters already registered there by
// another engine with the same namespace are adopted, so engines sharing a
// registerer share their counts.
func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []**prometheus.CounterVec{&m.resolutions, &m.constructions, &m.failures} {
		registered, err := registerCounter(reg, *c)
		if err != nil {
			return err
		}
		*c = registered
	}
	return nil
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return nil, err
}

func (m *metrics) resolved(ok bool) {
	if m == nil {
		return
	}
	outcome := "absent"
	if ok {
		outcome = "resolved"
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *metrics) constructed(lifetime registry.Lifetime) {
	if m == nil {
		return
	}
	m.constructions.WithLabelValues(lifetime.String()).Inc()
}

func (m *metrics) failed(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}
