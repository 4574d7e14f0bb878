package infra

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Settlement and bonus metrics, labelled by tenant where the cardinality is
// bounded by the tenant count.
var (
	WagersSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casino_wagers_settled_total",
		Help: "Settled wagers by outcome.",
	}, []string{"outcome"})

	WagersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casino_wagers_rejected_total",
		Help: "Rejected wagers by error code.",
	}, []string{"code"})

	AmountWagered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casino_amount_wagered_minor_units_total",
		Help: "Total amount wagered, minor currency units.",
	})

	AmountPaidOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casino_amount_paid_out_minor_units_total",
		Help: "Total payouts credited, minor currency units.",
	})

	BonusGrants = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casino_bonus_grants_total",
		Help: "Threshold campaign bonuses granted.",
	})

	BonusUnlocks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casino_bonus_unlocks_total",
		Help: "Bonus grants completed and transferred to real balance.",
	})

	SettlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "casino_settlement_duration_seconds",
		Help:    "Wall time of the settlement transaction including retries.",
		Buckets: prometheus.DefBuckets,
	})
)

type HealthFunc func(ctx context.Context) error

// StartMetricsServer serves /metrics and /healthz on its own port; run it
// from main in a goroutine via the returned server's ListenAndServe.
func StartMetricsServer(addr string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unhealthy: " + err.Error()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
