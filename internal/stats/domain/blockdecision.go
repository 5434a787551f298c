package domain

// BlockDecision is the wildcard verdict for one name. MatchedRule holds the
// exact name or the suffix anchor that matched.
type BlockDecision struct {
	Blocked     bool
	MatchedRule string
	Source      string
	Kind        BlockRuleKind
}

// EmptyDecision is the not-blocked verdict.
func EmptyDecision() BlockDecision { return BlockDecision{} }
