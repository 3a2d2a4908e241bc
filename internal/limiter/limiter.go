// Package limiter enforces per-user and global caps on AI provider calls.
//
// Two independent counters back every decision: a sliding 60-second window
// of call timestamps per user hash, and a fixed per-minute global counter.
// The per-user check always runs first so a single abusive user is limited
// by their own cap and never blamed on the global one. Both counters are
// incremented in the same critical section as the checks, so two concurrent
// requests can never both take the last slot.
//
// State is ephemeral by design: it lives in memory and resets on restart.
// It is never authoritative persisted data.
package limiter

import (
	"sync"
	"time"
)

// Deny reasons returned in Decision.Reason.
const (
	ReasonOK           = "ok"
	ReasonAIDisabled   = "ai_disabled"
	ReasonPerUserLimit = "per_psid_limit"
	ReasonGlobalLimit  = "global_limit"
)

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	Allowed bool
	Reason  string
	// TokensRemaining is the number of AI calls the user may still make
	// inside the current window, after this decision.
	TokensRemaining int
	// WindowResetAt is the next full-minute boundary, used by callers to
	// build "try again in Ns" replies.
	WindowResetAt time.Time
}

// Config holds the caps. Zero values are replaced with the defaults
// observed in production (5 per user, 10 global, per minute).
type Config struct {
	AIEnabled bool
	PerUser   int
	Global    int
}

const (
	defaultPerUser = 5
	defaultGlobal  = 10

	window = time.Minute
)

// Limiter is the shared mutable state of the routing core. All access goes
// through Check; raw counters are never exposed.
type Limiter struct {
	mu sync.Mutex

	aiEnabled bool
	perUser   int
	global    int

	// perUserCalls holds call timestamps within the trailing window,
	// oldest first.
	perUserCalls map[string][]time.Time

	// globalMinute identifies the fixed minute bucket globalCount refers
	// to. A new minute discards the previous bucket.
	globalMinute time.Time
	globalCount  int

	now func() time.Time
}

// New creates a Limiter. The clock is injectable for tests via WithClock.
func New(cfg Config) *Limiter {
	if cfg.PerUser <= 0 {
		cfg.PerUser = defaultPerUser
	}
	if cfg.Global <= 0 {
		cfg.Global = defaultGlobal
	}
	return &Limiter{
		aiEnabled:    cfg.AIEnabled,
		perUser:      cfg.PerUser,
		global:       cfg.Global,
		perUserCalls: make(map[string][]time.Time),
		now:          time.Now,
	}
}

// WithClock replaces the limiter's clock. Test hook; not safe to call after
// the limiter is in use.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check evaluates whether one AI call by userHash is allowed right now,
// and on allow records the call against both counters atomically.
//
// Decision order: disabled flag, then per-user sliding window, then global
// fixed window. A denial never increments anything.
func (l *Limiter) Check(userHash string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	resetAt := now.Truncate(window).Add(window)

	if !l.aiEnabled {
		return Decision{Allowed: false, Reason: ReasonAIDisabled, WindowResetAt: resetAt}
	}

	calls := l.pruneLocked(userHash, now)

	if len(calls) >= l.perUser {
		return Decision{
			Allowed:       false,
			Reason:        ReasonPerUserLimit,
			WindowResetAt: resetAt,
		}
	}

	minute := now.Truncate(window)
	if !minute.Equal(l.globalMinute) {
		l.globalMinute = minute
		l.globalCount = 0
	}
	if l.globalCount >= l.global {
		return Decision{
			Allowed:         false,
			Reason:          ReasonGlobalLimit,
			TokensRemaining: l.perUser - len(calls),
			WindowResetAt:   resetAt,
		}
	}

	l.perUserCalls[userHash] = append(calls, now)
	l.globalCount++

	return Decision{
		Allowed:         true,
		Reason:          ReasonOK,
		TokensRemaining: l.perUser - len(calls) - 1,
		WindowResetAt:   resetAt,
	}
}

// pruneLocked drops window-expired timestamps for userHash and returns the
// surviving slice. Callers must hold l.mu.
func (l *Limiter) pruneLocked(userHash string, now time.Time) []time.Time {
	calls := l.perUserCalls[userHash]
	cutoff := now.Add(-window)

	i := 0
	for i < len(calls) && !calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		calls = calls[i:]
		if len(calls) == 0 {
			delete(l.perUserCalls, userHash)
		} else {
			l.perUserCalls[userHash] = calls
		}
	}
	return calls
}
