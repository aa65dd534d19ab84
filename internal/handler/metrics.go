package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "canteen",
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Total number of orders placed.",
	})

	orderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "canteen",
		Subsystem: "orders",
		Name:      "transitions_total",
		Help:      "Status transition attempts by target status and outcome.",
	}, []string{"target", "outcome"})
)

const (
	outcomeApplied  = "applied"
	outcomeRejected = "rejected"
	outcomeConflict = "conflict"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)
