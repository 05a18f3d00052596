package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_deliveries_total",
		Help: "Menu deliveries per channel and outcome (sent, failed, skipped).",
	}, []string{"channel", "status"})

	deliveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "menu_delivery_duration_seconds",
		Help:    "Time spent sending the menu to one channel.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
	}, []string{"channel"})

	deliveryRateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_delivery_rate_limited_total",
		Help: "429 answers from chat services.",
	}, []string{"channel"})

	channelBreakerOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_delivery_breaker_opened_total",
		Help: "Times a channel was paused after consecutive failures.",
	}, []string{"channel"})

	channelBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "menu_delivery_breaker_state",
		Help: "Channel breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"channel"})

	deliveriesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "menu_deliveries_in_flight",
		Help: "Channel deliveries currently running.",
	})

	channelsEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "menu_delivery_channels_enabled",
		Help: "Enabled delivery channels at the last dispatch.",
	})
)

// observeDelivery counts one delivery outcome. Skipped deliveries made no
// attempt, so they have no duration.
func observeDelivery(channel string, status DeliveryStatus, took time.Duration) {
	deliveriesTotal.WithLabelValues(channel, string(status)).Inc()
	if status != DeliverySkipped {
		deliveryDuration.WithLabelValues(channel).Observe(took.Seconds())
	}
}
