package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	productImporter = "product_importer"

	rowsImportedTotal     = "rows_imported_total"
	importJobsTotal       = "import_jobs_total"
	webhookDeliveredTotal = "webhook_deliveries_total"

	importPathLabel     = "path"
	jobStatusLabel      = "status"
	deliveryStatusLabel = "status"
)

/**
* Metrics definition
**/
var rowsImportedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: productImporter,
		Name:      rowsImportedTotal,
		Help:      "number of rows applied to the product store, partitioned by ingestion path",
	},
	[]string{importPathLabel},
)

var importJobsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: productImporter,
		Name:      importJobsTotal,
		Help:      "number of import jobs that reached a terminal status",
	},
	[]string{jobStatusLabel},
)

var webhookDeliveredTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: productImporter,
		Name:      webhookDeliveredTotal,
		Help:      "number of outbound webhook deliveries by outcome",
	},
	[]string{deliveryStatusLabel},
)

func AddRowsImported(path string, count int) {
	rowsImportedTotalMetric.With(prometheus.Labels{importPathLabel: path}).Add(float64(count))
}

func IncreaseImportJobsTotal(status string) {
	importJobsTotalMetric.With(prometheus.Labels{jobStatusLabel: status}).Inc()
}

func IncreaseWebhookDeliveries(status string) {
	webhookDeliveredTotalMetric.With(prometheus.Labels{deliveryStatusLabel: status}).Inc()
}

type PrometheusMetricsHandler struct{}

func NewPrometheusMetricsHandler() *PrometheusMetricsHandler {
	prometheus.MustRegister(rowsImportedTotalMetric)
	prometheus.MustRegister(importJobsTotalMetric)
	prometheus.MustRegister(webhookDeliveredTotalMetric)

	return &PrometheusMetricsHandler{}
}

func (h *PrometheusMetricsHandler) Handler() http.Handler {
	return promhttp.Handler()
}
