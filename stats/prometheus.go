// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package stats

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cellsim/cellsim/types"
)

// prometheusMetrics holds the per-UE gauge vectors fed by Reporter.observe.
// Stale series (a UE that has since been removed) are left in place rather
// than pruned; the simulator's UE population is small and long-lived enough
// that this is not worth the bookkeeping.
type prometheusMetrics struct {
	registry *prometheus.Registry

	distanceM        *prometheus.GaugeVec
	uploadPER        *prometheus.GaugeVec
	downloadPER      *prometheus.GaugeVec
	uploadRateMbps   *prometheus.GaugeVec
	downloadRateMbps *prometheus.GaugeVec
}

// newPrometheusMetrics builds a fresh registry per Reporter rather than
// registering into prometheus.DefaultRegisterer: a process may run more
// than one Reporter (tests build one per case), and the global registerer
// panics on the second registration of the same metric name.
func newPrometheusMetrics() *prometheusMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	labels := []string{"ue", "tower"}
	return &prometheusMetrics{
		registry: registry,
		distanceM: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cellsim",
			Name:      "ue_distance_meters",
			Help:      "Distance from a UE to its serving tower.",
		}, labels),
		uploadPER: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cellsim",
			Name:      "ue_upload_packet_error_rate",
			Help:      "Uplink packet error rate at a 1024-byte reference frame size.",
		}, labels),
		downloadPER: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cellsim",
			Name:      "ue_download_packet_error_rate",
			Help:      "Downlink packet error rate at a 1024-byte reference frame size.",
		}, labels),
		uploadRateMbps: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cellsim",
			Name:      "ue_upload_rate_mbps",
			Help:      "Achievable uplink rate in Mbps.",
		}, labels),
		downloadRateMbps: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cellsim",
			Name:      "ue_download_rate_mbps",
			Help:      "Achievable downlink rate in Mbps.",
		}, labels),
	}
}

func (m *prometheusMetrics) observe(l Line) {
	ue := fmt.Sprintf("%d", l.UEID)
	tower := "none"
	if l.ServingTower != types.InvalidTowerID {
		tower = fmt.Sprintf("%d", l.ServingTower)
	}
	m.distanceM.WithLabelValues(ue, tower).Set(l.DistanceM)
	m.uploadPER.WithLabelValues(ue, tower).Set(l.UploadPER)
	m.downloadPER.WithLabelValues(ue, tower).Set(l.DownloadPER)
	m.uploadRateMbps.WithLabelValues(ue, tower).Set(l.UploadRateMbps)
	m.downloadRateMbps.WithLabelValues(ue, tower).Set(l.DownloadRateMbps)
}

// Handler returns the /metrics HTTP handler for this Reporter's gauges.
func (r *Reporter) Handler() http.Handler {
	return promhttp.HandlerFor(r.metrics.registry, promhttp.HandlerOpts{})
}
