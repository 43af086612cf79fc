package monitoring

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	attemptTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_attempt_transitions_total",
			Help: "Checkout attempt state transitions",
		},
		[]string{"state"},
	)

	activeAttempts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "checkout_attempts_active",
			Help: "Live checkout attempts in Redis per state",
		},
		[]string{"state"},
	)

	legsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_legs_persisted_total",
			Help: "Booking leg submissions by leg and result",
		},
		[]string{"leg", "result"},
	)

	partialBookings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_partial_total",
			Help: "Attempts that ended partially booked and need support followup",
		},
	)

	checkoutAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checkout_amount_minor_units",
			Help:    "Authorized checkout amounts in minor currency units",
			Buckets: prometheus.ExponentialBuckets(10000, 4, 8),
		},
	)
)

type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}

	// Start metrics collection
	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx := context.Background()
		m.collectAttemptMetrics(ctx)
	}
}

func (m *Monitor) collectAttemptMetrics(ctx context.Context) {
	keys, _ := m.redis.Keys(ctx, "checkout:attempt:*").Result()

	counts := map[string]int{}
	for _, key := range keys {
		data, err := m.redis.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var attempt struct {
			State string `json:"state"`
		}
		if err := json.Unmarshal([]byte(data), &attempt); err != nil {
			continue
		}
		counts[attempt.State]++
	}

	activeAttempts.Reset()
	for state, n := range counts {
		activeAttempts.WithLabelValues(state).Set(float64(n))
	}
}

// TrackTransition counts one attempt state transition.
func (m *Monitor) TrackTransition(state string) {
	attemptTransitions.WithLabelValues(state).Inc()
}

// TrackLeg counts one leg submission outcome.
func (m *Monitor) TrackLeg(leg, result string) {
	legsPersisted.WithLabelValues(leg, result).Inc()
}

// TrackPartialBooking counts one partially booked attempt.
func (m *Monitor) TrackPartialBooking() {
	partialBookings.Inc()
}

// TrackCheckoutAmount observes one authorized amount in minor units.
func (m *Monitor) TrackCheckoutAmount(amountMinor int64) {
	checkoutAmount.Observe(float64(amountMinor))
}
