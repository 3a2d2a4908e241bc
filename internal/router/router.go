// Package router sequences the routing core for every inbound message:
// hash the sender once, consult the rate limiter, pick the AI path or the
// deterministic rule engine, persist through the canonical writer, and
// bound the reply for the channel. The router is the only place these
// components meet, and its outer boundary converts any failure into a safe
// reply — a crash must never reach the caller.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finbrain/finbrain/internal/domain"
	"github.com/finbrain/finbrain/internal/limiter"
	"github.com/finbrain/finbrain/internal/parser"
	"github.com/finbrain/finbrain/internal/service/expense"
	"github.com/finbrain/finbrain/pkg/ctxutil"
)

const rateLimitDisclaimer = "[Basic mode] "

// Routing paths, logged with every decision.
const (
	pathRateLimited = "rate_limited"
	pathAI          = "ai"
	pathRules       = "rules"
)

// Hasher computes the stable user hash. Called exactly once per message.
type Hasher interface {
	Hash(raw string) string
}

// RateLimiter decides whether an AI call is allowed and records it.
type RateLimiter interface {
	Check(userHash string) limiter.Decision
}

// AIParser is the AI adapter boundary. Parse never returns an error; all
// failures arrive as Failover=true.
type AIParser interface {
	Parse(ctx context.Context, text string) domain.AIResult
}

// ExpenseStore is the canonical writer and reader for expenses.
type ExpenseStore interface {
	Log(ctx context.Context, userHash string, items []domain.ParsedItem, messageID string) (*expense.LogResult, error)
	Summary(ctx context.Context, userHash string, days int) (*expense.SummaryResult, error)
	Undo(ctx context.Context, userHash string) (*domain.Expense, error)
}

// Message is one inbound webhook message. UserID is the raw platform
// identifier; it is hashed immediately and never passed further down.
type Message struct {
	UserID    string
	Text      string
	MessageID string
	RequestID string
}

// Router orchestrates one routing decision per message.
type Router struct {
	hasher   Hasher
	limiter  RateLimiter
	ai       AIParser
	store    ExpenseStore
	maxReply int
	log      *slog.Logger
	now      func() time.Time
}

// Config holds router settings.
type Config struct {
	// MaxReplyLen caps every outgoing reply. Zero means the channel
	// default of 280.
	MaxReplyLen int
}

// New creates a Router.
func New(log *slog.Logger, hasher Hasher, rl RateLimiter, ai AIParser, store ExpenseStore, cfg Config) *Router {
	if cfg.MaxReplyLen <= 0 {
		cfg.MaxReplyLen = DefaultMaxReplyLen
	}
	return &Router{
		hasher:   hasher,
		limiter:  rl,
		ai:       ai,
		store:    store,
		maxReply: cfg.MaxReplyLen,
		log:      log.With("component", "router"),
		now:      time.Now,
	}
}

// Route produces the final decision for one message. It always returns a
// usable decision: panics and component errors collapse into a generic
// error reply, and the reply is always within the channel cap.
func (r *Router) Route(ctx context.Context, msg Message) (decision domain.RouteDecision) {
	// Hash once; everything downstream sees only the hash.
	userHash := r.hasher.Hash(msg.UserID)
	ctx = ctxutil.WithUserHash(ctx, userHash)
	if msg.RequestID != "" {
		ctx = ctxutil.WithRequestID(ctx, msg.RequestID)
	}

	path := pathRules
	reason := ""

	defer func() {
		if rec := recover(); rec != nil {
			r.log.ErrorContext(ctx, "routing panic recovered",
				slog.String("request_id", msg.RequestID),
				slog.String("user_hash", userHash),
				slog.Any("panic", rec),
			)
			decision = errorDecision()
		}
		decision.Reply = Format(decision.Reply, r.maxReply)
		r.log.InfoContext(ctx, "routing decision",
			slog.String("request_id", msg.RequestID),
			slog.String("user_hash", userHash),
			slog.String("path", path),
			slog.String("intent", decision.Intent.String()),
			slog.Bool("logged_expense", decision.Intent.LogsExpense()),
			slog.String("reason", reason),
		)
	}()

	limit := r.limiter.Check(userHash)
	reason = limit.Reason

	var err error
	switch {
	case !limit.Allowed && limit.Reason == limiter.ReasonAIDisabled:
		// AI off by configuration: plain deterministic routing.
		path = pathRules
		decision, err = r.routeRules(ctx, userHash, msg.Text, msg.MessageID)

	case !limit.Allowed:
		path = pathRateLimited
		decision, err = r.routeRateLimited(ctx, userHash, msg, limit)

	default:
		path = pathAI
		aiRes := r.ai.Parse(ctx, msg.Text)
		if aiRes.Failover {
			// Single, non-recursive fallback: rules produce exactly what
			// they would have produced with AI disabled.
			path = pathRules
			reason = aiRes.Reason
			decision, err = r.routeRules(ctx, userHash, msg.Text, msg.MessageID)
		} else {
			decision, err = r.routeAI(ctx, userHash, msg, aiRes)
		}
	}

	if err != nil {
		// Persistence or component failure: the user still gets a reply.
		r.log.ErrorContext(ctx, "routing failed",
			slog.String("request_id", msg.RequestID),
			slog.String("user_hash", userHash),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		decision = errorDecision()
	}
	return decision
}

// routeRateLimited is the deterministic handler for users over a limit.
// It never attempts AI, stays plain ASCII, is idempotent per message id
// (the canonical writer dedupes on it), and is always terminal — nothing
// is queued for later.
func (r *Router) routeRateLimited(ctx context.Context, userHash string, msg Message, limit limiter.Decision) (domain.RouteDecision, error) {
	decision, err := r.routeRules(ctx, userHash, msg.Text, msg.MessageID)
	if err != nil {
		return domain.RouteDecision{}, err
	}

	if decision.Intent == domain.IntentHelp {
		// Pure chat while limited: explain the limit instead of helping.
		wait := int(limit.WindowResetAt.Sub(r.now()).Seconds())
		if wait < 1 {
			wait = 1
		}
		return domain.RouteDecision{
			Reply: fmt.Sprintf(
				"You have hit the smart assistant limit. Try again in %ds. "+
					"You can still log expenses like 'coffee 100' or ask for 'summary'.", wait),
			Intent: domain.IntentRateLimited,
		}, nil
	}

	decision.Reply = rateLimitDisclaimer + decision.Reply
	return decision, nil
}

// routeAI turns a validated AI result into a decision, reusing the same
// handlers as the rule engine so both paths persist and reply identically.
func (r *Router) routeAI(ctx context.Context, userHash string, msg Message, res domain.AIResult) (domain.RouteDecision, error) {
	switch res.Intent {
	case domain.IntentSummary:
		return r.handleSummary(ctx, userHash)
	case domain.IntentUndo:
		return r.handleUndo(ctx, userHash)
	case domain.IntentLog:
		items, err := parser.Items(msg.Text)
		if err != nil {
			// The regex path saw an amount and rejected it; the rules
			// reply carries the validation message.
			return r.routeRules(ctx, userHash, msg.Text, msg.MessageID)
		}
		if len(items) == 0 {
			// The deterministic parser is authoritative for amounts; use
			// the model's extraction only when it found what regex could
			// not, and hold it to the same sanity ceiling.
			if res.Amount == nil {
				return r.routeRules(ctx, userHash, msg.Text, msg.MessageID)
			}
			if res.Amount.GreaterThan(parser.MaxAmount) {
				return amountTooLargeDecision(), nil
			}
			desc := res.Note
			if desc == "" {
				desc = "expense"
			}
			items = []domain.ParsedItem{{Amount: *res.Amount, Description: desc}}
		}
		decision, err := r.handleLog(ctx, userHash, items, msg.MessageID)
		if err != nil {
			return domain.RouteDecision{}, err
		}
		if len(res.Tips) > 0 {
			decision.Reply += " Tip: " + res.Tips[0]
		}
		return decision, nil
	default:
		decision := helpDecision()
		if len(res.Tips) > 0 {
			decision.Reply += " Tip: " + res.Tips[0]
		}
		return decision, nil
	}
}
