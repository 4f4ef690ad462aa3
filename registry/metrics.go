package registry

import (
	"strconv"

	"github.com/aukilabs/monumentfinder/monument"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindLabel      = "kind"
	operationLabel = "operation"
	categoryLabel  = "category"
	insertedLabel  = "inserted"
)

var (
	adapterCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "region_count",
		Help: "The number of regions in the registry.",
	}, []string{kindLabel})

	skippedTunnelCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skipped_tunnel_count",
		Help: "The number of tunnel pieces skipped because their type is not recognized.",
	})

	queryCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "region_query_count",
		Help: "The number of region queries.",
	}, []string{operationLabel, categoryLabel})

	captureCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "region_capture_count",
		Help: "The number of region captures.",
	}, []string{insertedLabel})
)

func instrumentAdapterCount(kind monument.Kind, count int) {
	adapterCount.
		With(prometheus.Labels{kindLabel: string(kind)}).
		Set(float64(count))
}

func instrumentSkippedTunnel() {
	skippedTunnelCount.Inc()
}

func instrumentQuery(operation string, c Category) {
	queryCount.
		With(prometheus.Labels{
			operationLabel: operation,
			categoryLabel:  string(c),
		}).
		Inc()
}

func instrumentCapture(inserted bool) {
	captureCount.
		With(prometheus.Labels{insertedLabel: strconv.FormatBool(inserted)}).
		Inc()
}
