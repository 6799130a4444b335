package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "phonomorph"

// Metrics holds the service counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	wallets   *prometheus.CounterVec
	transfers *prometheus.CounterVec
}

// New registers the service counters with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		wallets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallets_created_total",
			Help:      "Custodial wallets created, by method.",
		}, []string{"method"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Transfer requests, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.wallets, m.transfers)
	return m
}

// WalletCreated counts a wallet created by method ("generated" or "imported").
func (m *Metrics) WalletCreated(method string) {
	if m == nil {
		return
	}
	m.wallets.WithLabelValues(method).Inc()
}

// TransferOutcome counts a transfer attempt by its error kind, or "submitted".
func (m *Metrics) TransferOutcome(outcome string) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(outcome).Inc()
}
