package parsers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-stats/internal/stats/common/clock"
	"github.com/haukened/rr-stats/internal/stats/common/log"
	"github.com/haukened/rr-stats/internal/stats/domain"
)

var testNow = time.Unix(1723550000, 0)

func names(rules []domain.BlockRule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.Name + "/" + r.Kind.String()
	}
	return out
}

func TestParsePlainList_Basics(t *testing.T) {
	input := "\uFEFF# comment at top\n" +
		"Example.COM   \n" +
		"example.com.#inline comment\n" +
		"\n" +
		"\tsub.Example.com.\n" +
		"*.wild.example.com\n" +
		".root.example.org\n" +
		"localhost\n" +
		"example.com   # duplicate\n" +
		"*.example.com\n"

	got, err := ParsePlainList(strings.NewReader(input), "test-source", log.NewNoopLogger(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"example.com/exact",
		"sub.example.com/exact",
		"wild.example.com/suffix",
		"root.example.org/suffix",
		"example.com/suffix",
	}, names(got))
	for _, r := range got {
		assert.Equal(t, "test-source", r.Source)
		assert.True(t, r.AddedAt.Equal(testNow))
	}
}

func TestParsePlainList_EmptyAndCommentsOnly(t *testing.T) {
	got, err := ParsePlainList(strings.NewReader("\n# a\n   # b\n"), "s", log.NewNoopLogger(), testNow)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseHostsFile(t *testing.T) {
	input := `# hosts
0.0.0.0 ads.example.com Tracker.Example.NET.
::1 localhost
0.0.0.0 *.wild.example .dot.example good.example # inline
0.0.0.0
0.0.0.0 ads.example.com
`
	got, err := ParseHostsFile(strings.NewReader(input), "/etc/pihole/gravity.list", log.NewNoopLogger(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ads.example.com/exact",
		"tracker.example.net/exact",
		"good.example/exact",
	}, names(got))
}

func TestCountHostsEntries(t *testing.T) {
	input := "# c\n0.0.0.0 a.example b.example\n\n0.0.0.0 c.example # x\n0.0.0.0\n"
	n, err := CountHostsEntries(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestParseDnsmasqConf(t *testing.T) {
	input := `# wildcard blocking
address=/Doubleclick.NET/0.0.0.0
address=/doubleclick.net/::
address=/a.example/b.example/0.0.0.0
server=/corp.example/10.0.0.1
local=/lan.example/
cache-size=10000
address=malformed
address=//0.0.0.0
`
	got, err := ParseDnsmasqConf(strings.NewReader(input), "03-pihole-wildcard.conf", log.NewNoopLogger(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"doubleclick.net/suffix",
		"a.example/suffix",
		"b.example/suffix",
		"corp.example/suffix",
		"lan.example/suffix",
	}, names(got))
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestParsers_PropagateReadErrors(t *testing.T) {
	for _, format := range []string{FormatDnsmasq, FormatPlain, FormatHosts} {
		parse, err := ForFormat(format)
		require.NoError(t, err)
		_, err = parse(errReader{}, "s", log.NewNoopLogger(), testNow)
		assert.Error(t, err, format)
	}
	_, err := ForFormat("yaml")
	assert.Error(t, err)
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "03-wildcard.conf")
	require.NoError(t, os.WriteFile(path, []byte("address=/ads.example/0.0.0.0\n"), 0o600))

	clk := &clock.MockClock{CurrentTime: testNow}
	load, err := FileLoader(path, FormatDnsmasq, log.NewNoopLogger(), clk)
	require.NoError(t, err)

	rules, err := load()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, path, rules[0].Source)
	assert.True(t, rules[0].AddedAt.Equal(testNow))

	missing, err := FileLoader(filepath.Join(dir, "nope"), FormatPlain, log.NewNoopLogger(), clk)
	require.NoError(t, err)
	rules, err = missing()
	require.NoError(t, err)
	assert.Empty(t, rules)

	_, err = FileLoader(path, "bogus", log.NewNoopLogger(), clk)
	assert.Error(t, err)
}
