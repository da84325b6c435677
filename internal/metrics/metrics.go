package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsCreated counts accepted booking submissions.
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "booking",
		Name:      "created_total",
		Help:      "The total number of bookings created",
	})

	// BookingConflicts counts seat races lost at the database.
	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "booking",
		Name:      "seat_conflicts_total",
		Help:      "The total number of booking attempts rejected by a seat conflict",
	})

	// PaymentsFinalized counts payment state transitions by terminal status.
	PaymentsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payment",
		Name:      "finalized_total",
		Help:      "The total number of payments moved to a terminal status",
	}, []string{"status"})

	// IPNRejected counts IPN callbacks rejected before any state change.
	IPNRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payment",
		Name:      "ipn_rejected_total",
		Help:      "The total number of IPN callbacks rejected",
	}, []string{"reason"})
)
