package usecase

// Login outcomes reported to Metrics.
const (
	OutcomeAdmitted           = "admitted"
	OutcomeRefreshed          = "refreshed"
	OutcomeForcedEviction     = "forced_eviction"
	OutcomeMaxSessions        = "rejected_max_sessions"
	OutcomeLocked             = "rejected_locked"
	OutcomeInvalidCredentials = "rejected_invalid_credentials"
	OutcomeNotVerified        = "rejected_not_verified"
)

// Metrics receives counters from the session core.
// The prometheus implementation lives in platform/observability.
type Metrics interface {
	LoginOutcome(outcome string)
	SessionsPruned(n int)
	TokensRevoked(n int)
}

type noopMetrics struct{}

func (noopMetrics) LoginOutcome(string) {}
func (noopMetrics) SessionsPruned(int)  {}
func (noopMetrics) TokensRevoked(int)   {}
