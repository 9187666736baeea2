package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OpsStartTime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qin_mask_start_time",
		Help: "unix time the process started",
	})
	OpsReadLines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qin_mask_read_lines_total",
		Help: "physical lines read from the input",
	})
	OpsReadProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qin_mask_read_processed_total",
		Help: "insert statements decoded from the input",
	})
	OpsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qin_mask_skipped_total",
		Help: "insert statements passed through unparsed",
	})
	OpsMaskedValues = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qin_mask_masked_values_total",
		Help: "values replaced by the masking transform, by generator",
	}, []string{"generator"})
	OpsWriteProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qin_mask_write_processed_total",
		Help: "messages written to the output",
	})
)
