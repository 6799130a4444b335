package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.WalletCreated("generated")
	m.WalletCreated("generated")
	m.TransferOutcome("submitted")

	if got := testutil.ToFloat64(m.wallets.WithLabelValues("generated")); got != 2 {
		t.Fatalf("expected 2 generated wallets, got %v", got)
	}
	if got := testutil.ToFloat64(m.transfers.WithLabelValues("submitted")); got != 1 {
		t.Fatalf("expected 1 submitted transfer, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.WalletCreated("imported")
	m.TransferOutcome("InvalidAmount")
}
