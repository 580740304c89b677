// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_generated_total",
			Help: "Total number of recommendation lists generated",
		},
		[]string{"outcome"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "recommendation_duration_seconds",
			Help: "Duration of recommendation generation in seconds",
		},
		[]string{"operation"},
	)

	NotificationsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listing_notifications_persisted_total",
			Help: "Total number of new-listing notifications persisted",
		},
	)

	NotificationDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_notification_deliveries_total",
			Help: "Total number of delivery attempts for new-listing notifications",
		},
		[]string{"channel", "status"},
	)

	ClientsEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listing_clients_evaluated_total",
			Help: "Total number of clients scored against a new listing",
		},
	)
)
