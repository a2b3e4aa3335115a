package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PaymentVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment verifications by payment type and result",
		},
		[]string{"type", "result"},
	)
	SubscriptionRenewals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_renewals_total",
			Help: "Auto-pay renewal attempts by result",
		},
		[]string{"result"},
	)
	TrendingFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trending_fetches_total",
			Help: "Trending list refreshes by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(PaymentVerifications)
	prometheus.MustRegister(SubscriptionRenewals)
	prometheus.MustRegister(TrendingFetches)
}
