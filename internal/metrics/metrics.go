package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

var (
	CartCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_commands_total",
		Help: "Cart commands dispatched, by command.",
	}, []string{"command"})

	CartMirrorWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mirror_writes_total",
		Help: "Cart mirror writes, by result.",
	}, []string{"result"})

	ListingPages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_pages_total",
		Help: "Listing pages rendered, by view.",
	}, []string{"view"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Latency of backend calls, by method and result.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "result"})
)

func result(err error) string {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}

func ObserveMirrorWrite(err error) {
	CartMirrorWrites.WithLabelValues(result(err)).Inc()
}

func ObserveBackendRequest(method string, start time.Time, err error) {
	BackendRequestDuration.WithLabelValues(method, result(err)).Observe(time.Since(start).Seconds())
}

