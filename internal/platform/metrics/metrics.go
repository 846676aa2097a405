// Package metrics exposes Prometheus counters for identity resolution and
// subscription gating.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	resolutions *prometheus.CounterVec
	gateChecks  *prometheus.CounterVec
	webhooks    *prometheus.CounterVec
}

// NewCollector registers the portal's metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_identity_resolutions_total",
			Help: "Identity resolutions by target and outcome (winning strategy, miss, empty, error).",
		}, []string{"target", "outcome"}),
		gateChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_subscription_checks_total",
			Help: "Subscription gate checks by result.",
		}, []string{"result"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_stripe_webhooks_total",
			Help: "Stripe webhook events by type and outcome.",
		}, []string{"type", "outcome"}),
	}
	reg.MustRegister(c.resolutions, c.gateChecks, c.webhooks)
	return c
}

func (c *Collector) RecordResolution(target, outcome string) {
	c.resolutions.WithLabelValues(target, outcome).Inc()
}

func (c *Collector) RecordGateCheck(result string) {
	c.gateChecks.WithLabelValues(result).Inc()
}

func (c *Collector) RecordWebhook(eventType, outcome string) {
	c.webhooks.WithLabelValues(eventType, outcome).Inc()
}

// Handler serves the registry for scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
