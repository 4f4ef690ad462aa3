package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	trackingSessionCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tracking_session_count",
		Help: "The number of position tracking sessions.",
	})

	trackingSessionCountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracking_session_count_total",
		Help: "The total number of position tracking sessions.",
	})
)

func instrumentIncreaseSessionGauge() {
	trackingSessionCount.Inc()
}

func instrumentDecreaseSessionGauge() {
	trackingSessionCount.Dec()
}

func instrumentCountSession() {
	trackingSessionCountTotal.Inc()
}
