package batching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snakezero",
		Subsystem: "batching",
		Name:      "batches_total",
		Help:      "Number of batches dispatched to the consumer",
	})

	itemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snakezero",
		Subsystem: "batching",
		Name:      "items_total",
		Help:      "Number of requests dispatched across all batches",
	})

	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "snakezero",
		Subsystem: "batching",
		Name:      "batch_size",
		Help:      "Distribution of dispatched batch sizes",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	consumerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snakezero",
		Subsystem: "batching",
		Name:      "consumer_errors_total",
		Help:      "Number of batches whose consumer call failed",
	})
)
