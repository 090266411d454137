package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var postWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blog_post_writes_total",
		Help: "Total number of post writes by operation and result",
	},
	[]string{"operation", "result"},
)

const (
	opSaveDraft = "save_draft"
	opPublish   = "publish"
	opDelete    = "delete"
)

func recordWrite(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	postWritesTotal.WithLabelValues(operation, result).Inc()
}
