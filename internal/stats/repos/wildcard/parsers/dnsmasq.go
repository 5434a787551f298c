package parsers

import (
	"io"
	"strings"
	"time"

	"github.com/haukened/rr-stats/internal/stats/common/log"
	"github.com/haukened/rr-stats/internal/stats/domain"
)

// ParseDnsmasqConf extracts wildcard rules from dnsmasq configuration lines
// of the form "address=/name/target" or "server=/name/". Each name becomes an
// apex-inclusive suffix rule; a single directive may list several names
// ("address=/a.example/b.example/0.0.0.0"). Other directives are ignored.
func ParseDnsmasqConf(r io.Reader, source string, logger log.Logger, now time.Time) ([]domain.BlockRule, error) {
	set := newRuleSet()
	err := eachLine(r, func(n int, line string) {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return
		}
		switch strings.TrimSpace(key) {
		case "address", "server", "local":
		default:
			return
		}
		names, ok := dnsmasqNames(strings.TrimSpace(value))
		if !ok {
			logger.Debug(map[string]any{"line": n, "value": value}, "dnsmasq_skip_malformed")
			return
		}
		for _, raw := range names {
			name := normalizeDomainName(raw)
			if !isValidFQDN(name) {
				logger.Debug(map[string]any{"line": n, "raw": raw}, "dnsmasq_skip_invalid_fqdn")
				continue
			}
			if rule, err := domain.NewSuffixBlockRule(name, source, now); err == nil {
				set.add(rule)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(set.out)}, "dnsmasq_conf_parsed")
	return set.out, nil
}

// dnsmasqNames splits "/a/b/target" into its domain segments.
func dnsmasqNames(value string) ([]string, bool) {
	if !strings.HasPrefix(value, "/") {
		return nil, false
	}
	parts := strings.Split(value[1:], "/")
	if len(parts) < 2 {
		return nil, false
	}
	names := parts[:len(parts)-1]
	out := names[:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out, len(out) > 0
}
