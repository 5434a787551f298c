package wildcard

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/haukened/rr-stats/internal/stats/common/clock"
	"github.com/haukened/rr-stats/internal/stats/common/log"
	"github.com/haukened/rr-stats/internal/stats/common/utils"
	"github.com/haukened/rr-stats/internal/stats/domain"
)

// ErrNoLoader is returned by Update when the repository was built without a Loader.
var ErrNoLoader = errors.New("wildcard repository has no loader")

// Options configures a repository.
type Options struct {
	Store   Store
	Cache   DecisionCache
	Factory BloomFactory
	FPRate  float64
	Loader  Loader
	Clock   clock.Clock
	Logger  log.Logger
}

// repository implements Repository by composing a Store, a Bloom filter
// (via factory) and a DecisionCache.
type repository struct {
	mu      sync.RWMutex
	store   Store
	cache   DecisionCache
	bloom   BloomFilter
	factory BloomFactory
	fpRate  float64
	loader  Loader
	clock   clock.Clock
	logger  log.Logger
	version uint64
	rules   int
	// swaps counts UpdateAll calls; lookups started under an older value
	// must not populate the cache.
	swaps uint64
}

// NewRepository constructs a Repository. Store, Cache and Factory are required.
func NewRepository(opts Options) (Repository, error) {
	if opts.Store == nil || opts.Cache == nil || opts.Factory == nil {
		return nil, fmt.Errorf("wildcard repository requires store, cache and bloom factory")
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &repository{
		store:   opts.Store,
		cache:   opts.Cache,
		factory: opts.Factory,
		fpRate:  opts.FPRate,
		loader:  opts.Loader,
		clock:   opts.Clock,
		logger:  opts.Logger,
		version: opts.Store.Stats().Version,
	}, nil
}

// Decide returns a BlockDecision for the provided domain name.
// On internal errors the name is treated as not blocked.
func (r *repository) Decide(name string) domain.BlockDecision {
	cn := utils.CanonicalDNSName(name)
	if cn == "" {
		return domain.EmptyDecision()
	}
	gen := r.generation()
	if !r.checkBloom(cn) {
		return domain.EmptyDecision()
	}
	if d, ok := r.checkCache(cn); ok {
		return d
	}
	dec := r.checkStore(cn)
	r.updateCache(cn, dec, gen)
	return dec
}

// Update reloads the rule set through the Loader and swaps it in.
func (r *repository) Update() error {
	if r.loader == nil {
		return ErrNoLoader
	}
	rules, err := r.loader()
	if err != nil {
		return fmt.Errorf("loading wildcard rules: %w", err)
	}
	r.mu.RLock()
	next := r.version + 1
	r.mu.RUnlock()
	if err := r.UpdateAll(rules, next, r.clock.Now().Unix()); err != nil {
		return err
	}
	r.logger.Info(map[string]any{"rules": len(rules), "version": next}, "wildcard_list_loaded")
	return nil
}

// UpdateAll performs an atomic snapshot update across store, bloom, and cache.
func (r *repository) UpdateAll(rules []domain.BlockRule, version uint64, updatedUnix int64) error {
	if err := r.store.RebuildAll(rules, version, updatedUnix); err != nil {
		return fmt.Errorf("rebuilding wildcard store: %w", err)
	}

	var n uint64
	for _, ru := range rules {
		if ru.Kind == domain.BlockRuleExact || ru.Kind == domain.BlockRuleSuffix {
			n++
		}
	}
	bf := r.factory.New(n, r.fpRate)
	for _, ru := range rules {
		switch ru.Kind {
		case domain.BlockRuleExact:
			bf.Add([]byte(ru.Name))
		case domain.BlockRuleSuffix:
			bf.Add([]byte(reverseString(ru.Name)))
		}
	}

	r.mu.Lock()
	r.bloom = bf
	r.cache.Purge()
	r.version = version
	r.rules = int(n)
	r.swaps++
	r.mu.Unlock()
	return nil
}

// RepoStats returns cache and store metrics.
func (r *repository) RepoStats() RepoStats {
	r.mu.RLock()
	rules := r.rules
	cs := r.cache.Stats()
	r.mu.RUnlock()
	return RepoStats{Cache: cs, Store: r.store.Stats(), Rules: rules}
}

func (r *repository) Close() error {
	return r.store.Close()
}

// reverseString reverses the string runes. Must match the store's reversal
// used for suffix keys so Bloom keys line up with Bolt keys.
func reverseString(s string) string {
	rs := []rune(s)
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return string(rs)
}

// checkBloom returns true if the store must be consulted (maybe-positive)
// and false for a definite negative. Without a filter every name is a maybe.
func (r *repository) checkBloom(cn string) bool {
	r.mu.RLock()
	bf := r.bloom
	r.mu.RUnlock()
	if bf == nil {
		return true
	}
	if bf.MightContain([]byte(cn)) {
		return true
	}
	// reversed anchors, most-specific → apex
	a := cn
	for a != "" {
		if bf.MightContain([]byte(reverseString(a))) {
			return true
		}
		i := strings.IndexByte(a, '.')
		if i < 0 {
			break
		}
		a = a[i+1:]
	}
	return false
}

func (r *repository) checkCache(cn string) (domain.BlockDecision, bool) {
	r.mu.RLock()
	d, ok := r.cache.Get(cn)
	r.mu.RUnlock()
	return d, ok
}

func (r *repository) checkStore(cn string) domain.BlockDecision {
	rule, ok, err := r.store.GetFirstMatch(cn)
	if err != nil {
		r.logger.Warn(map[string]any{"name": cn, "error": err.Error()}, "wildcard_store_lookup_failed")
		return domain.EmptyDecision()
	}
	if !ok || !rule.Matches(cn) {
		return domain.EmptyDecision()
	}
	return domain.BlockDecision{Blocked: true, MatchedRule: rule.Name, Source: rule.Source, Kind: rule.Kind}
}

func (r *repository) generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.swaps
}

// updateCache stores dec unless a rule swap happened after the lookup began.
func (r *repository) updateCache(cn string, dec domain.BlockDecision, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.swaps != gen {
		r.logger.Debug(map[string]any{"name": cn}, "wildcard_stale_decision_dropped")
		return
	}
	r.cache.Put(cn, dec)
}
