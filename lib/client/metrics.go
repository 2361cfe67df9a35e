package client

import (
	"github.com/VictoriaMetrics/metrics"
)

// Process-wide transfer counters, exposed via metrics.WritePrometheus
var (
	metricConnects      = metrics.NewCounter("tcpc_client_connects_total")
	metricConnectErrors = metrics.NewCounter("tcpc_client_connect_errors_total")
	metricBytesSent     = metrics.NewCounter("tcpc_client_bytes_sent_total")
	metricBytesReceived = metrics.NewCounter("tcpc_client_bytes_received_total")
)
