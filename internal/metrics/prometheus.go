// Copyright (C) 2025 Jeff Rose
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/whiskeyjimbo/DNSWatch/internal/health"
	"go.uber.org/zap"
)

const namespace = "dnswatch"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// ResolutionMetrics instruments the polling loop: per-worker call
// outcomes, observed address changes, and round-trip latency.
type ResolutionMetrics struct {
	logger *zap.SugaredLogger
	domain string

	resolutionsTotal *prometheus.CounterVec
	changesTotal     *prometheus.CounterVec
	failuresTotal    *prometheus.CounterVec

	lastRTT        *prometheus.GaugeVec
	lastChangeTime *prometheus.GaugeVec
	workers        *prometheus.GaugeVec

	rttHist *prometheus.HistogramVec
}

func NewResolutionMetrics(logger *zap.SugaredLogger, domain string) *ResolutionMetrics {
	m := &ResolutionMetrics{
		logger: logger,
		domain: domain,
	}
	m.initMetrics()
	return m
}

func (m *ResolutionMetrics) initMetrics() {
	m.resolutionsTotal = createResolutionsCounter()
	m.changesTotal = createChangesCounter()
	m.failuresTotal = createFailuresCounter()
	m.lastRTT = createLastRTTGauge()
	m.lastChangeTime = createLastChangeGauge()
	m.workers = createWorkersGauge()
	m.rttHist = createRTTHistogram()
}

// SetWorkers records the configured worker count once at startup.
func (m *ResolutionMetrics) SetWorkers(count int) {
	m.workers.WithLabelValues(m.domain).Set(float64(count))
}

func (m *ResolutionMetrics) ObserveResolution(worker int, success bool, elapsed time.Duration) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeError
		m.failuresTotal.WithLabelValues(m.domain).Inc()
	}
	m.resolutionsTotal.WithLabelValues(m.domain, strconv.Itoa(worker), outcome).Inc()

	// Latency metrics cover successful round trips only
	if success {
		m.lastRTT.WithLabelValues(m.domain).Set(float64(elapsed.Milliseconds()))
		m.rttHist.WithLabelValues(m.domain).Observe(elapsed.Seconds())
	}
}

func (m *ResolutionMetrics) ObserveChange() {
	m.changesTotal.WithLabelValues(m.domain).Inc()
	m.lastChangeTime.WithLabelValues(m.domain).SetToCurrentTime()
}

func StartMetricsServer(logger *zap.SugaredLogger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health/live", health.LivenessHandler)
	mux.HandleFunc("/health/ready", health.ReadinessHandler)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start metrics server: %v", err)
		}
	}()
}

func createResolutionsCounter() *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Total resolution attempts by worker and outcome",
		},
		[]string{"domain", "worker", "outcome"},
	)
}

func createChangesCounter() *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "address_changes_total",
			Help:      "Total observed changes of the resolved address set",
		},
		[]string{"domain"},
	)
}

func createFailuresCounter() *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_failures_total",
			Help:      "Total failed resolution attempts",
		},
		[]string{"domain"},
	)
}

func createLastRTTGauge() *prometheus.GaugeVec {
	return promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resolution_rtt_milliseconds",
			Help:      "Round-trip time of the most recent successful resolution",
		},
		[]string{"domain"},
	)
}

func createLastChangeGauge() *prometheus.GaugeVec {
	return promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_change_timestamp_seconds",
			Help:      "Unix time of the most recent observed address change",
		},
		[]string{"domain"},
	)
}

func createWorkersGauge() *prometheus.GaugeVec {
	return promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Number of configured resolution workers",
		},
		[]string{"domain"},
	)
}

func createRTTHistogram() *prometheus.HistogramVec {
	return promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_rtt_histogram_seconds",
			Help:      "Histogram of resolution round-trip times",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"domain"},
	)
}
