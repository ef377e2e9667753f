package identity

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "nostrkeys"

// Metrics counts identity operations. A nil *Metrics records nothing.
type Metrics struct {
	Unlocks    *prometheus.CounterVec
	Mutations  *prometheus.CounterVec
	Signatures prometheus.Counter
}

// NewMetrics builds the counters and registers them on reg when reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Unlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unlock_total",
			Help:      "Unlock attempts by result.",
		}, []string{"result"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "registry_mutations_total",
			Help:      "Successful identity registry changes by operation.",
		}, []string{"op"}),
		Signatures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "signatures_total",
			Help:      "Events signed.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Unlocks, m.Mutations, m.Signatures)
	}

	return m
}

func (m *Metrics) unlock(result string) {
	if m == nil {
		return
	}
	m.Unlocks.WithLabelValues(result).Inc()
}

func (m *Metrics) mutation(op string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op).Inc()
}

// SignCounter returns the signatures counter, or nil.
func (m *Metrics) SignCounter() prometheus.Counter {
	if m == nil {
		return nil
	}
	return m.Signatures
}
