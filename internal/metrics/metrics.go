package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckoutSessionsCreated checkout sessions created at the payment processor (counter)
	CheckoutSessionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourshop",
			Name:      "checkout_sessions_created_total",
			Help:      "The total number of checkout sessions created",
		},
		[]string{"order_type"},
	)

	// CheckoutFailures checkout attempts that failed, by stage (counter)
	CheckoutFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourshop",
			Name:      "checkout_failures_total",
			Help:      "The total number of failed checkout attempts",
		},
		[]string{"order_type", "stage"},
	)

	// GiftCardCouponFallbacks coupon creation failures that fell back to scaled lines (counter)
	GiftCardCouponFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tourshop",
			Name:      "gift_card_coupon_fallbacks_total",
			Help:      "The total number of gift card coupons replaced by scaled line items",
		},
	)

	// BookingsPromoted pending records promoted by the payment webhook (counter)
	BookingsPromoted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourshop",
			Name:      "bookings_promoted_total",
			Help:      "The total number of pending records confirmed by the payment webhook",
		},
		[]string{"order_type"},
	)

	// PendingExpired pending records expired by the cleanup loop (counter)
	PendingExpired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourshop",
			Name:      "pending_expired_total",
			Help:      "The total number of pending records expired without a completed payment",
		},
		[]string{"order_type"},
	)

	// CatalogSyncProducts products visited by catalog sync runs, by outcome (counter)
	CatalogSyncProducts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourshop",
			Name:      "catalog_sync_products_total",
			Help:      "The total number of products processed by catalog sync",
		},
		[]string{"result"},
	)

	// CatalogSyncRateLimited inventory platform 429 responses seen by catalog sync (counter)
	CatalogSyncRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tourshop",
			Name:      "catalog_sync_rate_limited_total",
			Help:      "The total number of rate limited inventory requests",
		},
	)

	// CatalogSyncDuration wall time of catalog sync runs (histogram)
	CatalogSyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tourshop",
			Name:      "catalog_sync_duration_seconds",
			Help:      "The time spent per catalog sync run",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	// HTTPRequestDuration request latency by route template (histogram)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tourshop",
			Name:      "http_request_duration_seconds",
			Help:      "The time spent serving HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// RateLimitRejected requests refused by a rate limit rule (counter)
	RateLimitRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourshop",
			Name:      "rate_limit_rejected_total",
			Help:      "The total number of requests rejected by rate limiting",
		},
		[]string{"rule"},
	)
)
