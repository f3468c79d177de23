package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IdentityTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "identity_tokens_issued_total",
			Help: "Total number of identity tokens issued",
		},
	)

	AuthGuardAdmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_guard_admitted_total",
			Help: "Total number of requests admitted by the auth guard",
		},
	)

	AuthGuardDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_guard_denied_total",
			Help: "Total number of requests denied by the auth guard by reason",
		},
		[]string{"reason"},
	)

	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of register and login attempts by outcome",
		},
		[]string{"operation", "outcome"},
	)
)
