// Package metrics declares the domain counters exported on /metrics next to the
// HTTP metrics collected by fiberprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agrilearn"

var (
	IdentityFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_fallbacks_total",
		Help:      "Anonymous identities that fell back to the timestamp name.",
	}, []string{"reason"})

	ProgressRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "progress_recomputes_total",
		Help:      "Progress recomputations by completion scope.",
	}, []string{"scope"})

	CoursesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "course_completions_total",
		Help:      "Recomputes that left a course fully completed.",
	})

	CertificatesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "certificates_issued_total",
		Help:      "Certificates written.",
	})

	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "like_toggles_total",
		Help:      "Like state changes by item kind and resulting state.",
	}, []string{"item", "state"})

	ExpiredLiveSessions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "live_sessions_expired_total",
		Help:      "Live sessions deactivated after their end time.",
	})
)
