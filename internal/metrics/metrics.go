// Package metrics holds the Prometheus collectors shared across packages.
// All collectors register on the default registry via promauto and are
// served by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP requests partitioned by method, route template and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atas_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atas_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "atas_http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Alerts accepted by the notifier, by threshold label
	AlertasEnviados = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atas_alertas_enviados_total",
			Help: "Expiration alerts accepted by the notifier",
		},
		[]string{"tipo"},
	)

	AlertasFalhos = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atas_alertas_falhos_total",
			Help: "Expiration alerts rejected by the notifier or failed while processing",
		},
		[]string{"tipo"},
	)

	RelatoriosEnviados = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atas_relatorios_total",
			Help: "Report dispatch attempts by type and outcome",
		},
		[]string{"tipo", "resultado"},
	)

	VerificacaoDuracao = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "atas_verificacao_duracao_seconds",
			Help:    "Duration of one alert check run",
			Buckets: prometheus.DefBuckets,
		},
	)

	HistoricoTamanho = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "atas_historico_alertas",
			Help: "Entries currently held in the alert history",
		},
	)

	// Scheduler job runs by slot (diario|semanal|mensal) and outcome
	AgendadorExecucoes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atas_agendador_execucoes_total",
			Help: "Scheduler job executions",
		},
		[]string{"job", "resultado"},
	)

	// E-mail queue
	EmailJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atas_email_jobs_total",
			Help: "E-mail jobs processed by the worker pool",
		},
		[]string{"resultado"},
	)
)
