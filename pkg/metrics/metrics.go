package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chaininsight"

var (
	Actions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_total",
		Help:      "User actions by action and result.",
	}, []string{"action", "result"})

	RPCDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "Latency of chain and wallet RPC calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "result"})

	Connected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "wallet_connected",
		Help:      "1 while a wallet session is held.",
	})
)

// Collectors returns every collector exported by this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{Actions, RPCDuration, Connected}
}

// NewRegistry returns a registry with the package collectors registered.
func NewRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(Collectors()...)
	return r
}

// ObserveRPC records the duration of an RPC call started at start.
func ObserveRPC(method string, start time.Time, err error) {
	RPCDuration.WithLabelValues(method, result(err)).Observe(time.Since(start).Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveAction counts a finished user action.
func ObserveAction(action string, err error) {
	Actions.WithLabelValues(action, result(err)).Inc()
}
