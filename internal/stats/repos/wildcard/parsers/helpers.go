package parsers

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/haukened/rr-stats/internal/stats/common/utils"
	"github.com/haukened/rr-stats/internal/stats/domain"
)

// eachLine calls fn for every line that is neither blank nor a comment,
// with the BOM and any inline comment removed. n is 1-based.
func eachLine(r io.Reader, fn func(n int, line string)) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := stripLineBOM(sc.Text())
		if isEmpty, isComment := classifyLine(line); isEmpty || isComment {
			continue
		}
		fn(n, strings.TrimSpace(stripInlineComment(line)))
	}
	return sc.Err()
}

// stripLineBOM removes a UTF-8 byte order mark at the start of a line.
func stripLineBOM(line string) string {
	return strings.TrimPrefix(line, "\uFEFF")
}

// classifyLine reports whether the line is blank or a whole-line comment.
func classifyLine(line string) (isEmpty, isComment bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true, false
	}
	return false, strings.HasPrefix(trimmed, "#")
}

// stripInlineComment drops everything from the first '#'.
func stripInlineComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// ruleKindFromRaw returns BlockRuleSuffix if the raw name begins with "*." or ".".
func ruleKindFromRaw(raw string) domain.BlockRuleKind {
	if strings.HasPrefix(raw, "*.") || strings.HasPrefix(raw, ".") {
		return domain.BlockRuleSuffix
	}
	return domain.BlockRuleExact
}

// isValidFQDN checks length limits, requires at least two non-empty labels,
// and requires the first label to start with a letter, digit or '*'.
func isValidFQDN(name string) bool {
	if len(name) > 255 {
		return false
	}
	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if len(label) > 63 || len(label) == 0 {
			return false
		}
	}
	first := []rune(labels[0])[0]
	return isAlphaNumeric(first) || isWildcard(first)
}

// normalizeDomainName trims whitespace and any leading "*." or "." marker,
// then canonicalizes.
func normalizeDomainName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "*.")
	name = strings.TrimPrefix(name, ".")
	return utils.CanonicalDNSName(name)
}

func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWildcard(r rune) bool {
	return r == '*'
}

// ruleSet collects rules in first-seen order, deduplicated by name and kind.
type ruleSet struct {
	seen map[string]struct{}
	out  []domain.BlockRule
}

func newRuleSet() *ruleSet {
	return &ruleSet{seen: make(map[string]struct{}), out: make([]domain.BlockRule, 0, 256)}
}

// add reports false when the rule was already present.
func (s *ruleSet) add(r domain.BlockRule) bool {
	key := r.Name + "|" + r.Kind.String()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.out = append(s.out, r)
	return true
}
