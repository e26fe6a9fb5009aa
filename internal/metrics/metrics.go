// Package metrics provides Prometheus metrics for the form proxy.
// Labels never carry session ids or tokens.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GatewayRequestsTotal counts proxied backend calls by route and outcome
	// (ok, session_invalid, remote_error, unreachable, bad_request, misconfigured).
	GatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formresume_gateway_requests_total",
		Help: "Total number of proxied form requests, by route and outcome.",
	}, []string{"route", "outcome"})

	// RefDataLoadsTotal counts loader calls that reached the backend, by kind.
	RefDataLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formresume_refdata_loads_total",
		Help: "Total number of reference-data loads issued to the backend, by kind.",
	}, []string{"kind"})

	// ContactsStoredTotal counts contact submissions written, by operation.
	ContactsStoredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formresume_contacts_stored_total",
		Help: "Total number of contact submissions stored, by operation.",
	}, []string{"op"})
)
