package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BlockRuleKind selects how a wildcard list entry matches names.
type BlockRuleKind uint8

const (
	// BlockRuleExact matches the listed name only.
	BlockRuleExact BlockRuleKind = iota
	// BlockRuleSuffix matches the listed name and every name below it.
	BlockRuleSuffix
)

var (
	ErrRuleName   = errors.New("wildcard rule without a name")
	ErrRuleSource = errors.New("wildcard rule without a source")
	ErrRuleTime   = errors.New("wildcard rule without a load time")
	ErrRuleKind   = errors.New("unsupported wildcard rule kind")
)

func (k BlockRuleKind) String() string {
	switch k {
	case BlockRuleExact:
		return "exact"
	case BlockRuleSuffix:
		return "suffix"
	}
	return fmt.Sprintf("BlockRuleKind(%d)", k)
}

// BlockRule is one wildcard list entry.
type BlockRule struct {
	Name    string // lowercase, no trailing dot
	Kind    BlockRuleKind
	Source  string // list file the entry came from
	AddedAt time.Time
}

// NewBlockRule lowercases name, drops a trailing dot and checks the result.
func NewBlockRule(name string, kind BlockRuleKind, source string, addedAt time.Time) (BlockRule, error) {
	r := BlockRule{
		Name:    strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "."),
		Kind:    kind,
		Source:  strings.TrimSpace(source),
		AddedAt: addedAt,
	}
	switch {
	case r.Name == "":
		return BlockRule{}, ErrRuleName
	case r.Source == "":
		return BlockRule{}, ErrRuleSource
	case r.AddedAt.IsZero():
		return BlockRule{}, ErrRuleTime
	case kind != BlockRuleExact && kind != BlockRuleSuffix:
		return BlockRule{}, fmt.Errorf("%w: %d", ErrRuleKind, kind)
	}
	return r, nil
}

func NewExactBlockRule(name, source string, addedAt time.Time) (BlockRule, error) {
	return NewBlockRule(name, BlockRuleExact, source, addedAt)
}

func NewSuffixBlockRule(name, source string, addedAt time.Time) (BlockRule, error) {
	return NewBlockRule(name, BlockRuleSuffix, source, addedAt)
}

// Matches reports whether the canonical name cn falls under the rule.
// Suffix rules match on label boundaries only.
func (r BlockRule) Matches(cn string) bool {
	if cn == r.Name {
		return true
	}
	return r.Kind == BlockRuleSuffix && strings.HasSuffix(cn, "."+r.Name)
}
