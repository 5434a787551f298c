package parsers

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/haukened/rr-stats/internal/stats/common/clock"
	"github.com/haukened/rr-stats/internal/stats/common/log"
	"github.com/haukened/rr-stats/internal/stats/domain"
	"github.com/haukened/rr-stats/internal/stats/repos/wildcard"
)

// Supported wildcard list formats.
const (
	FormatDnsmasq = "dnsmasq"
	FormatPlain   = "plain"
	FormatHosts   = "hosts"
)

// ParseFunc is the shared signature of the list parsers.
type ParseFunc func(r io.Reader, source string, logger log.Logger, now time.Time) ([]domain.BlockRule, error)

// ForFormat returns the parser for a format name.
func ForFormat(format string) (ParseFunc, error) {
	switch format {
	case FormatDnsmasq:
		return ParseDnsmasqConf, nil
	case FormatPlain:
		return ParsePlainList, nil
	case FormatHosts:
		return ParseHostsFile, nil
	default:
		return nil, fmt.Errorf("unsupported wildcard list format %q", format)
	}
}

// FileLoader returns a wildcard.Loader that parses path on every call. A
// missing file yields an empty rule set.
func FileLoader(path, format string, logger log.Logger, clk clock.Clock) (wildcard.Loader, error) {
	parse, err := ForFormat(format)
	if err != nil {
		return nil, err
	}
	return func() ([]domain.BlockRule, error) {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn(map[string]any{"path": path}, "wildcard_list_missing")
				return nil, nil
			}
			return nil, err
		}
		defer f.Close()
		return parse(f, path, logger, clk.Now())
	}, nil
}
