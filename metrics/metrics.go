package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors for the pipeline and the bridge. One
// instance per process, registered against the default registry.
type Metrics struct {
	TransmissionsGenerated *prometheus.CounterVec
	TransmissionsPending   *prometheus.CounterVec
	SealsComputed          *prometheus.CounterVec
	PinVerifications       *prometheus.CounterVec
	CardPresent            prometheus.Gauge
	BridgeClients          prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		TransmissionsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigillo_transmissions_generated_total",
			Help: "Fiscal documents generated, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		TransmissionsPending: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigillo_transmissions_pending_total",
			Help: "Transmissions observed pending delivery, by kind.",
		}, []string{"kind"}),
		SealsComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigillo_seals_computed_total",
			Help: "Fiscal seals computed, by mode (card or demo).",
		}, []string{"mode"}),
		PinVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigillo_pin_verifications_total",
			Help: "PIN verification attempts, by outcome.",
		}, []string{"outcome"}),
		CardPresent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sigillo_card_present",
			Help: "1 when a smart card is inserted, 0 otherwise.",
		}),
		BridgeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sigillo_bridge_clients",
			Help: "Currently connected bridge clients.",
		}),
	}

	prometheus.MustRegister(
		m.TransmissionsGenerated,
		m.TransmissionsPending,
		m.SealsComputed,
		m.PinVerifications,
		m.CardPresent,
		m.BridgeClients,
	)
	return m
}

// NewUnregistered returns collectors that are not registered anywhere,
// for tests that construct multiple instances in one process.
func NewUnregistered() *Metrics {
	return &Metrics{
		TransmissionsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "sigillo_transmissions_generated_total"}, []string{"kind", "outcome"}),
		TransmissionsPending:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "sigillo_transmissions_pending_total"}, []string{"kind"}),
		SealsComputed:          prometheus.NewCounterVec(prometheus.CounterOpts{Name: "sigillo_seals_computed_total"}, []string{"mode"}),
		PinVerifications:       prometheus.NewCounterVec(prometheus.CounterOpts{Name: "sigillo_pin_verifications_total"}, []string{"outcome"}),
		CardPresent:            prometheus.NewGauge(prometheus.GaugeOpts{Name: "sigillo_card_present"}),
		BridgeClients:          prometheus.NewGauge(prometheus.GaugeOpts{Name: "sigillo_bridge_clients"}),
	}
}
