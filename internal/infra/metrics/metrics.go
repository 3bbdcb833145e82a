// Package metrics registers the workshop's Prometheus instruments. The
// /metrics endpoint itself is mounted by the HTTP server when enabled.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taller_orders_created_total",
		Help: "Production orders created.",
	})

	StepsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taller_steps_completed_total",
		Help: "Production steps completed.",
	})

	PaymentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taller_payments_processed_total",
		Help: "Payments settled, by payment kind.",
	}, []string{"kind"})

	StockAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taller_stock_adjustments_total",
		Help: "Inventory stock adjustments, by direction.",
	}, []string{"direction"})
)
