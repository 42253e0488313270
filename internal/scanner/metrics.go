package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "surebet_cycle_duration_seconds",
		Help:    "Duration of a full scan cycle",
		Buckets: prometheus.DefBuckets,
	})

	quotesCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surebet_quotes_collected_total",
			Help: "Valid quotes collected, per provider",
		},
		[]string{"provider"},
	)

	fetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surebet_fetch_errors_total",
			Help: "Failed provider fetches, per provider",
		},
		[]string{"provider"},
	)

	marketGroups = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "surebet_market_groups",
		Help: "Market groups with 2+ providers in the last cycle",
	})

	opportunitiesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surebet_opportunities_detected_total",
		Help: "Arbitrage opportunities detected (before dedup)",
	})

	opportunityProfit = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "surebet_opportunity_profit_percent",
		Help:    "Profit of detected opportunities in percent",
		Buckets: []float64{0.5, 1, 2, 3, 5, 8, 12, 20},
	})

	notificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surebet_notifications_sent_total",
		Help: "Opportunity notifications delivered",
	})

	notificationsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surebet_notifications_expired_total",
		Help: "Notifications edited as expired",
	})

	notificationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surebet_notification_errors_total",
		Help: "Failed Telegram sends and edits",
	})
)
