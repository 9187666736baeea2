package utils

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/metrics"
)

func StartHttp(help *Help) {
	metrics.OpsStartTime.Set(float64(time.Now().Unix()))
	if help.HttpPort == 0 {
		return
	}
	// Start prometheus http monitor
	go func() {
		log.Infof("starting http on port %d", help.HttpPort)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		httpPortAddr := fmt.Sprintf(":%d", help.HttpPort)
		if err := http.ListenAndServe(httpPortAddr, mux); err != nil {
			log.Errorf("starting http monitor error: %v", err)
		}
	}()
}
