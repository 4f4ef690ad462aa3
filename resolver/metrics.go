package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	sourceLabel = "source"
	fieldLabel  = "field"
)

var (
	boundsSourceCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "region_bounds_source_count",
		Help: "The number of regions resolved per bounds source.",
	}, []string{sourceLabel})

	volumeMissingCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prevent_building_volume_missing_count",
		Help: "The number of times a requested prevent building volume was not found.",
	}, []string{fieldLabel})
)

func instrumentBoundsSource(source BoundsSource) {
	boundsSourceCount.
		With(prometheus.Labels{sourceLabel: string(source)}).
		Inc()
}

func instrumentVolumeMissing(field string) {
	volumeMissingCount.
		With(prometheus.Labels{fieldLabel: field}).
		Inc()
}
