package recipients

import (
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jtuomist/massmail/types"
)

// Crude local@domain.tld shape check, the same one the message gets no
// further validation beyond.
var addressPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// ValidAddress reports whether s looks like an email address.
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// Filter returns the recipients that survive the email shape check and the
// drop_empty/drop_nonempty rules, preserving their original order. Dropped
// recipients are logged, never errored.
func Filter(recs []types.Recipient, rules types.FilterRules, logger *slog.Logger) []types.Recipient {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	surviving := make([]types.Recipient, 0, len(recs))
	for _, rec := range recs {
		if !ValidAddress(rec.Email()) {
			logger.Warn("not a valid-looking email address, skipping", slog.String("email", rec.Email()))
			continue
		}
		if keep(rec, rules, logger) {
			surviving = append(surviving, rec)
		}
	}
	return surviving
}

func keep(rec types.Recipient, rules types.FilterRules, logger *slog.Logger) bool {
	logger = logger.With(slog.String("email", rec.Email()))
	for _, col := range rules.DropEmpty {
		v, ok := rec.Get(col)
		if !ok {
			logger.Warn("filter column not in recipient columns", slog.String("column", col))
		}
		if strings.TrimSpace(v) == "" {
			logger.Debug("dropping recipient, column empty", slog.String("column", col))
			return false
		}
	}
	for _, col := range rules.DropNonempty {
		v, ok := rec.Get(col)
		if !ok {
			logger.Warn("filter column not in recipient columns", slog.String("column", col))
			continue
		}
		if strings.TrimSpace(v) != "" {
			logger.Debug("dropping recipient, column nonempty",
				slog.String("column", col), slog.String("value", v))
			return false
		}
	}
	return true
}
