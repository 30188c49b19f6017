package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	OffersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "offers_created_total",
		Help: "Total number of offers submitted",
	})

	// OffersResolvedTotal counts agent decisions and payments by outcome (accepted, rejected, bought).
	OffersResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offers_resolved_total",
		Help: "Total number of offers moved out of pending",
	}, []string{"outcome"})

	OfferAcceptLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "offer_accept_latency_seconds",
		Help:    "Latency of the accept-and-reject-competitors transaction",
		Buckets: prometheus.DefBuckets,
	})

	PaymentIntentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_intents_created_total",
		Help: "Total number of payment intents created",
	})

	ListingCacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_cache_requests_total",
		Help: "Listing cache lookups by result",
	}, []string{"result"})
)
