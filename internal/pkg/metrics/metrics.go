package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "omnipos_store"

var (
	StockAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_adjustments_total",
		Help:      "Stock ledger adjustments by direction.",
	}, []string{"direction"})

	SalesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_recorded_total",
		Help:      "Sales recorded.",
	})

	SaleCancellations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sale_cancellations_total",
		Help:      "Cancel-last-sale requests by outcome.",
	}, []string{"outcome"})

	OrdersReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_received_total",
		Help:      "Restock orders marked received.",
	})

	ActiveSubscriptions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_subscriptions",
		Help:      "Open live subscriptions per collection.",
	}, []string{"collection"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
