// Package parser extracts expense items from free-form chat messages.
//
// Extraction is an ordered cascade from highest confidence (explicit
// currency marker next to a number) down to a bare number near descriptive
// text. The cascade is deterministic and needs no network or model: it is
// the floor the rest of the system falls back to.
package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finbrain/finbrain/internal/domain"
)

// MaxAmount is the sanity ceiling for a single expense. Amounts above it
// are almost certainly typos or garbage and are rejected with a validation
// error instead of being stored.
var MaxAmount = decimal.NewFromInt(10_000_000)

// fallbackDescription is used when an amount matches but no descriptive
// text survives cleanup.
const fallbackDescription = "expense"

var (
	// thousandsRe collapses digit-grouping commas ("1,200" -> "1200") so
	// that the multi-item splitter never cuts a number in half.
	thousandsRe = regexp.MustCompile(`(\d),(\d{3})\b`)

	// itemSplitRe separates multi-item messages: "coffee 100, burger 300
	// and juice 50" becomes three segments.
	itemSplitRe = regexp.MustCompile(`\s*(?:,|;|\band\b|&)\s*`)

	numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// Cascade patterns, highest confidence first.
	symbolAmountRe   = regexp.MustCompile(`[৳$€£]\s*(\d+(?:\.\d+)?)`)
	currencyWordRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:tk\.?|taka|টাকা|bdt|usd)\b`)
	verbAmountRe     = regexp.MustCompile(`\b(?:spent|paid|bought|cost|costs)\b[^\d]*(\d+(?:\.\d+)?)`)
	bareAmountRe     = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	currencyStripRe  = regexp.MustCompile(`[৳$€£]|\b(?:tk\.?|taka|টাকা|bdt|usd)\b`)
	fillerStripRe    = regexp.MustCompile(`\b(?:spent|paid|bought|cost|costs|on|for|a|an|the|my)\b`)
	punctuationTrims = " \t.,:;!?-"
)

// bengaliDigits maps Bengali numerals to ASCII. The original user base types
// amounts in both scripts interchangeably.
var digitFold = strings.NewReplacer(
	"০", "0", "১", "1", "২", "2", "৩", "3", "৪", "4",
	"৫", "5", "৬", "6", "৭", "7", "৮", "8", "৯", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

// Items extracts every expense item from text.
//
// Returns an empty slice (and nil error) when nothing in the message looks
// like an expense. Returns a validation error when an amount parses but is
// outside sane bounds; callers must surface that to the user rather than
// silently storing or dropping it.
func Items(text string) ([]domain.ParsedItem, error) {
	normalized := normalize(text)
	if normalized == "" {
		return nil, nil
	}

	var items []domain.ParsedItem
	for _, segment := range itemSplitRe.Split(normalized, -1) {
		item, ok, err := parseSegment(segment)
		if err != nil {
			return nil, err
		}
		if ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func normalize(text string) string {
	text = digitFold.Replace(text)
	text = thousandsRe.ReplaceAllString(text, "$1$2")
	return domain.NormalizeText(text)
}

func parseSegment(segment string) (domain.ParsedItem, bool, error) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return domain.ParsedItem{}, false, nil
	}

	raw := firstMatch(segment)
	if raw == "" {
		return domain.ParsedItem{}, false, nil
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		return domain.ParsedItem{}, false, nil
	}
	if amount.GreaterThan(MaxAmount) {
		return domain.ParsedItem{}, false,
			domain.NewValidationError("amount", "amount "+raw+" is beyond the sanity limit")
	}

	return domain.ParsedItem{
		Amount:      amount,
		Description: describe(segment, raw),
	}, true, nil
}

// firstMatch runs the confidence cascade and returns the matched amount
// string, or "" when no pattern applies.
func firstMatch(segment string) string {
	for _, re := range []*regexp.Regexp{symbolAmountRe, currencyWordRe, verbAmountRe} {
		if m := re.FindStringSubmatch(segment); m != nil {
			return m[1]
		}
	}
	// Lowest confidence: a bare number is only treated as an amount when
	// the segment carries some descriptive text around it.
	if m := bareAmountRe.FindStringSubmatch(segment); m != nil {
		rest := strings.Replace(segment, m[1], "", 1)
		if strings.TrimFunc(rest, func(r rune) bool {
			return strings.ContainsRune(punctuationTrims, r)
		}) != "" {
			return m[1]
		}
	}
	return ""
}

// describe strips the amount, currency markers, and filler verbs from a
// segment, leaving the human description of what was bought.
func describe(segment, amount string) string {
	s := strings.Replace(segment, amount, " ", 1)
	s = currencyStripRe.ReplaceAllString(s, " ")
	s = fillerStripRe.ReplaceAllString(s, " ")
	s = numberRe.ReplaceAllStringFunc(s, func(string) string { return " " })
	s = domain.NormalizeText(s)
	s = strings.Trim(s, punctuationTrims)
	if s == "" {
		return fallbackDescription
	}
	return s
}
