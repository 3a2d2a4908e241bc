package router

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/finbrain/finbrain/internal/domain"
	"github.com/finbrain/finbrain/internal/parser"
)

// Canned replies. All ASCII, all comfortably under the channel cap before
// any dynamic content is appended.
const (
	replyHelp = "I track expenses. Send 'coffee 100' to log one, " +
		"'summary' for a recap, 'undo' to remove the last entry."
	replyError       = "Something went wrong on our side. Please try again."
	replyNothingUndo = "Nothing to undo yet. Log an expense first, like 'coffee 100'."
	replyNoExpenses  = "No expenses in the last %d days. Log one like 'coffee 100'."
)

var (
	summaryRe = regexp.MustCompile(`^(?:show\s+(?:me\s+)?)?(?:summary|recap|report)\b`)
	undoRe    = regexp.MustCompile(`^undo(?:\s+last)?$`)
	helpRe    = regexp.MustCompile(`^(?:help|start|menu|hi|hello|hey)$`)
)

// routeRules is the deterministic rule engine: command literals first, then
// the expense parser, then a generic help reply. It needs nothing but the
// expense store and is the system's floor of guaranteed behavior — it must
// stay correct with AI and rate limiting disabled or broken.
func (r *Router) routeRules(ctx context.Context, userHash, text, messageID string) (domain.RouteDecision, error) {
	normalized := domain.NormalizeText(text)

	switch {
	case summaryRe.MatchString(normalized):
		return r.handleSummary(ctx, userHash)
	case undoRe.MatchString(normalized):
		return r.handleUndo(ctx, userHash)
	case helpRe.MatchString(normalized):
		return helpDecision(), nil
	}

	items, err := parser.Items(text)
	if err != nil {
		// Amount outside sane bounds: tell the user instead of storing it.
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return amountTooLargeDecision(), nil
		}
		return domain.RouteDecision{}, err
	}
	if len(items) == 0 {
		return helpDecision(), nil
	}

	return r.handleLog(ctx, userHash, items, messageID)
}

func (r *Router) handleLog(ctx context.Context, userHash string, items []domain.ParsedItem, messageID string) (domain.RouteDecision, error) {
	res, err := r.store.Log(ctx, userHash, items, messageID)
	if err != nil {
		return domain.RouteDecision{}, err
	}

	var reply string
	if res.Items == 1 {
		reply = fmt.Sprintf("Logged: %s - %s (%s). This month: %s across %d expenses.",
			items[0].Description, items[0].Amount.String(), res.Category,
			res.MonthlyTotal.String(), res.MonthlyCount)
	} else {
		reply = fmt.Sprintf("Logged %d expenses totalling %s. This month: %s across %d expenses.",
			res.Items, res.Total.String(), res.MonthlyTotal.String(), res.MonthlyCount)
	}

	category := res.Category
	total := res.Total
	return domain.RouteDecision{
		Reply:    reply,
		Intent:   domain.IntentLog,
		Category: &category,
		Amount:   &total,
	}, nil
}

func (r *Router) handleSummary(ctx context.Context, userHash string) (domain.RouteDecision, error) {
	res, err := r.store.Summary(ctx, userHash, 0)
	if err != nil {
		return domain.RouteDecision{}, err
	}

	if res.Count == 0 {
		return domain.RouteDecision{
			Reply:  fmt.Sprintf(replyNoExpenses, res.Days),
			Intent: domain.IntentSummary,
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d days: %s across %d expenses.", res.Days, res.Total.String(), res.Count)
	for _, t := range res.Totals {
		fmt.Fprintf(&b, " %s: %s (%d).", t.Category, t.Total.String(), t.Count)
	}

	return domain.RouteDecision{
		Reply:  b.String(),
		Intent: domain.IntentSummary,
	}, nil
}

func (r *Router) handleUndo(ctx context.Context, userHash string) (domain.RouteDecision, error) {
	removed, err := r.store.Undo(ctx, userHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.RouteDecision{
				Reply:  replyNothingUndo,
				Intent: domain.IntentUndo,
			}, nil
		}
		return domain.RouteDecision{}, err
	}

	return domain.RouteDecision{
		Reply: fmt.Sprintf("Removed: %s - %s. Your totals are updated.",
			removed.Description, removed.Amount.String()),
		Intent: domain.IntentUndo,
	}, nil
}

func helpDecision() domain.RouteDecision {
	return domain.RouteDecision{Reply: replyHelp, Intent: domain.IntentHelp}
}

// amountTooLargeDecision is the reply for an amount above parser.MaxAmount,
// whichever path extracted it.
func amountTooLargeDecision() domain.RouteDecision {
	return domain.RouteDecision{
		Reply:  "That amount looks too large to be real. " + replyHelp,
		Intent: domain.IntentHelp,
	}
}

func errorDecision() domain.RouteDecision {
	return domain.RouteDecision{Reply: replyError, Intent: domain.IntentError}
}
