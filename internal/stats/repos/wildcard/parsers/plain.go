package parsers

import (
	"io"
	"time"

	"github.com/haukened/rr-stats/internal/stats/common/log"
	"github.com/haukened/rr-stats/internal/stats/domain"
)

// ParsePlainList parses a newline-delimited list of names. Entries are exact
// unless they start with "*." or ".", which marks an apex-inclusive suffix.
// Duplicates keep their first position.
func ParsePlainList(r io.Reader, source string, logger log.Logger, now time.Time) ([]domain.BlockRule, error) {
	set := newRuleSet()
	err := eachLine(r, func(n int, s string) {
		kind := ruleKindFromRaw(s)
		name := normalizeDomainName(s)
		if !isValidFQDN(name) {
			logger.Debug(map[string]any{"line": n, "raw": s}, "skip_invalid_fqdn")
			return
		}
		rule, err := domain.NewBlockRule(name, kind, source, now)
		if err != nil {
			logger.Debug(map[string]any{"line": n, "name": name, "error": err.Error()}, "skip_invalid_rule")
			return
		}
		if !set.add(rule) {
			logger.Debug(map[string]any{"line": n, "name": name, "kind": kind.String()}, "skip_duplicate")
		}
	})
	if err != nil {
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(set.out)}, "plain_list_parsed")
	return set.out, nil
}
