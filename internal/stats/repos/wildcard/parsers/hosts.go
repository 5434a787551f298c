package parsers

import (
	"io"
	"strings"
	"time"

	"github.com/haukened/rr-stats/internal/stats/common/log"
	"github.com/haukened/rr-stats/internal/stats/common/utils"
	"github.com/haukened/rr-stats/internal/stats/domain"
)

// ParseHostsFile parses /etc/hosts-style files into exact rules. The address
// column is ignored; every following hostname becomes a rule. Tokens with a
// wildcard or a leading dot are skipped.
func ParseHostsFile(r io.Reader, source string, logger log.Logger, now time.Time) ([]domain.BlockRule, error) {
	set := newRuleSet()
	err := eachLine(r, func(n int, line string) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			logger.Debug(map[string]any{"line": n}, "hosts_no_hostnames")
			return
		}
		for _, raw := range fields[1:] {
			if strings.HasPrefix(raw, ".") || strings.Contains(raw, "*") {
				logger.Debug(map[string]any{"line": n, "raw": raw}, "hosts_skip_invalid_token")
				continue
			}
			name := utils.CanonicalDNSName(raw)
			if !isValidFQDN(name) {
				logger.Debug(map[string]any{"line": n, "name": name}, "hosts_skip_invalid_fqdn")
				continue
			}
			if rule, err := domain.NewExactBlockRule(name, source, now); err == nil {
				set.add(rule)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(set.out)}, "hosts_file_parsed")
	return set.out, nil
}

// CountHostsEntries returns the number of hostnames a hosts-style file
// declares, the figure dnsmasq reports when it reads an additional hosts file.
func CountHostsEntries(r io.Reader) (int, error) {
	total := 0
	err := eachLine(r, func(_ int, line string) {
		if fields := strings.Fields(line); len(fields) > 1 {
			total += len(fields) - 1
		}
	})
	return total, err
}
