// Package metrics defines and registers all custom Prometheus metrics for the
// Spoon accounts API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Credential metrics ────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - kind: "user" or "operator"
//   - result: "success", "invalid_credentials", "not_found"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by principal kind and result.",
	},
	[]string{"kind", "result"},
)

// RegistrationsTotal counts successful registrations.
// Label:
//   - kind: "user" or "operator"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered, by principal kind.",
	},
	[]string{"kind"},
)

// ── Reset-flow metrics ────────────────────────────────────────────────────────

// ResetRequestsTotal counts forgot-password requests that minted a token.
// Label:
//   - kind: "user" or "operator"
var ResetRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_requests_total",
		Help:      "Total number of password-reset tokens issued, by principal kind.",
	},
	[]string{"kind"},
)

// ResetCompletionsTotal counts reset-completion outcomes.
// Label:
//   - result: "success", "forbidden", "password_reused"
var ResetCompletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_completions_total",
		Help:      "Total number of reset completions, by result.",
	},
	[]string{"result"},
)

// ResetMailsTotal counts reset-mail delivery outcomes in the dispatcher.
// Label:
//   - result: "sent" or "failed"
var ResetMailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_mails_total",
		Help:      "Total number of reset mails handed to SMTP, by result.",
	},
	[]string{"result"},
)

// ── Token metrics ─────────────────────────────────────────────────────────────

// TokenRejectionsTotal counts bearer tokens rejected by the auth middleware.
// Label:
//   - reason: "missing", "malformed", "invalid"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of session tokens rejected before reaching a handler.",
	},
	[]string{"reason"},
)
