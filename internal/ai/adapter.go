// Package ai provides the flag-gated, timeout-bounded adapter in front of
// the external AI provider. The adapter validates and clamps everything the
// provider returns; it never performs data writes, and every failure mode
// collapses into a single signal — Failover=true plus a reason — that tells
// the router to run the deterministic rule engine instead.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbrain/finbrain/internal/domain"
	"github.com/finbrain/finbrain/pkg/ctxutil"
)

// Failover reasons reported in domain.AIResult.Reason.
const (
	ReasonDisabled     = "ai_disabled"
	ReasonInputTooLong = "input_too_long"
	ReasonProvider429  = "provider_429"
	ReasonTimeout      = "timeout"
	ReasonProviderErr  = "provider_error"
	ReasonMalformed    = "malformed_output"
)

const (
	defaultTimeout     = 8 * time.Second
	defaultMaxInputLen = 2000

	maxTips    = 2
	maxTipLen  = 120
	maxNoteLen = 200
)

// systemPrompt is fixed: the message is the only variable content sent out.
const systemPrompt = `You are FinBrain, an expense-tracking assistant.
Classify the user's message and reply ONLY with a JSON object:
{"intent": "log|summary|undo|help",
 "amount": <number, only for log>,
 "note": "<short description of the expense, only for log>",
 "category": "food|transport|bills|shopping|health|entertainment|other",
 "tips": ["<at most 2 short money tips>"]}
No markdown, no explanations, JSON only.`

// Config holds adapter settings. Zero Timeout/MaxInputLen take the
// production defaults.
type Config struct {
	Enabled     bool
	Timeout     time.Duration
	MaxInputLen int
}

// Adapter wraps a Provider with gating, timeout, retry, and output
// validation.
type Adapter struct {
	provider    Provider
	enabled     bool
	timeout     time.Duration
	maxInputLen int
	log         *slog.Logger
}

// New creates an Adapter around the given provider.
func New(log *slog.Logger, provider Provider, cfg Config) *Adapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxInputLen <= 0 {
		cfg.MaxInputLen = defaultMaxInputLen
	}
	return &Adapter{
		provider:    provider,
		enabled:     cfg.Enabled,
		timeout:     cfg.Timeout,
		maxInputLen: cfg.MaxInputLen,
		log:         log.With("component", "ai_adapter"),
	}
}

// Enabled reports whether AI routing is switched on by configuration.
func (a *Adapter) Enabled() bool { return a.enabled }

// logger returns the adapter logger annotated with the caller's user hash
// when the context carries one. The adapter never sees raw identifiers.
func (a *Adapter) logger(ctx context.Context) *slog.Logger {
	if h, ok := ctxutil.UserHashFromCtx(ctx); ok {
		return a.log.With(slog.String("user_hash", h))
	}
	return a.log
}

// Parse sends text to the provider and returns a validated result.
//
// Preconditions are checked before any network call: the enabled flag and
// the input length cap. The provider gets one strict-timeout attempt plus at
// most one retry; an HTTP 429 fails over immediately without a retry. Any
// failure — timeout, provider error, unrepairable output — returns
// Failover=true with a reason; Parse never returns an error and never
// panics into the router.
func (a *Adapter) Parse(ctx context.Context, text string) domain.AIResult {
	if !a.enabled {
		return failover(ReasonDisabled)
	}
	if len(text) > a.maxInputLen {
		return failover(ReasonInputTooLong)
	}

	raw, reason := a.complete(ctx, text)
	if reason != "" {
		return failover(reason)
	}

	repaired, err := RepairJSON(raw)
	if err != nil {
		a.logger(ctx).WarnContext(ctx, "ai output unrepairable", slog.String("error", err.Error()))
		return failover(ReasonMalformed)
	}

	return a.validate(ctx, repaired)
}

// complete performs the bounded provider call. Returns the raw text, or a
// non-empty failover reason.
func (a *Adapter) complete(ctx context.Context, text string) (string, string) {
	attempt := func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		return a.provider.Complete(callCtx, systemPrompt, text)
	}

	raw, err := attempt()
	if err == nil {
		return raw, ""
	}
	if errors.Is(err, ErrProviderRateLimited) {
		return "", ReasonProvider429
	}
	if errors.Is(err, context.DeadlineExceeded) {
		// A late response from the provider is discarded, not awaited.
		return "", ReasonTimeout
	}

	a.logger(ctx).WarnContext(ctx, "ai call failed, retrying once", slog.String("error", err.Error()))

	raw, err = attempt()
	if err == nil {
		return raw, ""
	}
	if errors.Is(err, ErrProviderRateLimited) {
		return "", ReasonProvider429
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "", ReasonTimeout
	}
	return "", ReasonProviderErr
}

// rawResponse mirrors the provider's JSON contract before clamping.
// Amount is any because models emit both numbers and numeric strings.
type rawResponse struct {
	Intent   string   `json:"intent"`
	Amount   any      `json:"amount"`
	Note     string   `json:"note"`
	Category string   `json:"category"`
	Tips     []string `json:"tips"`
	Failover bool     `json:"failover"`
	Reason   string   `json:"reason"`
}

// validate clamps and whitelists every field of the provider's output.
// Invalid intents coerce to help, invalid categories to other, unparseable
// amounts are dropped, tips are capped in count and length.
func (a *Adapter) validate(ctx context.Context, repaired string) domain.AIResult {
	var raw rawResponse
	if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
		a.logger(ctx).WarnContext(ctx, "ai output not our schema", slog.String("error", err.Error()))
		return failover(ReasonMalformed)
	}

	if raw.Failover {
		reason := raw.Reason
		if reason == "" {
			reason = ReasonProviderErr
		}
		return failover(reason)
	}

	res := domain.AIResult{
		Intent:   domain.Intent(strings.ToLower(strings.TrimSpace(raw.Intent))),
		Note:     clampString(raw.Note, maxNoteLen),
		Category: domain.Category(strings.ToLower(strings.TrimSpace(raw.Category))),
	}
	if !res.Intent.IsValid() || res.Intent == domain.IntentError || res.Intent == domain.IntentRateLimited {
		res.Intent = domain.IntentHelp
	}
	if !res.Category.IsValid() {
		res.Category = domain.CategoryOther
	}

	if amt, ok := parseAmount(raw.Amount); ok && amt.IsPositive() {
		res.Amount = &amt
	}

	for _, tip := range raw.Tips {
		tip = strings.TrimSpace(tip)
		if tip == "" {
			continue
		}
		res.Tips = append(res.Tips, clampString(tip, maxTipLen))
		if len(res.Tips) == maxTips {
			break
		}
	}

	return res
}

func parseAmount(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return decimal.NewFromFloat(f), true
		}
	}
	return decimal.Decimal{}, false
}

func clampString(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func failover(reason string) domain.AIResult {
	return domain.AIResult{Failover: true, Reason: reason}
}
