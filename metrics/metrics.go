// Package metrics provides Prometheus metrics for the gamification service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gamification"

// Webhook outcomes.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Manager holds every collector. A nil *Manager is valid and records nothing.
type Manager struct {
	registry *prometheus.Registry

	webhookDeliveries    *prometheus.CounterVec
	xpAwarded            prometheus.Counter
	achievementsUnlocked *prometheus.CounterVec
	notifications        *prometheus.CounterVec
	processingLatency    prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Manager {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Manager{
		registry: reg,
		webhookDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Tracker webhook deliveries by outcome.",
		}, []string{"outcome"}),
		xpAwarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_awarded_total",
			Help:      "Total XP credited to employees.",
		}),
		achievementsUnlocked: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_unlocked_total",
			Help:      "Achievement unlocks by achievement id.",
		}, []string{"achievement"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Chat notifications by result.",
		}, []string{"result"}),
		processingLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_processing_seconds",
			Help:      "Time spent crediting one completion, notifications included.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func (m *Manager) RecordWebhook(outcome string) {
	if m == nil {
		return
	}
	m.webhookDeliveries.WithLabelValues(outcome).Inc()
}

func (m *Manager) RecordXP(xp int64) {
	if m == nil || xp <= 0 {
		return
	}
	m.xpAwarded.Add(float64(xp))
}

func (m *Manager) RecordUnlock(achievementID string) {
	if m == nil {
		return
	}
	m.achievementsUnlocked.WithLabelValues(achievementID).Inc()
}

func (m *Manager) RecordNotification(err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.notifications.WithLabelValues(result).Inc()
}

func (m *Manager) ObserveProcessing(seconds float64) {
	if m == nil {
		return
	}
	m.processingLatency.Observe(seconds)
}
