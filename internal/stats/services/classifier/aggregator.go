// Package classifier is the event entry point of the statistics core. The
// Aggregator consumes the facts reported by the resolution engine, drives the
// per-query state machine and keeps every counter consistent with the
// query, domain and time-bucket records it owns.
package classifier

import (
	"fmt"
	"sync"
	"time"

	"github.com/haukened/rr-stats/internal/stats/common/clock"
	"github.com/haukened/rr-stats/internal/stats/common/log"
	"github.com/haukened/rr-stats/internal/stats/common/utils"
	"github.com/haukened/rr-stats/internal/stats/domain"
	"github.com/haukened/rr-stats/internal/stats/repos/entities"
	"github.com/haukened/rr-stats/internal/stats/repos/ledger"
	"github.com/haukened/rr-stats/internal/stats/repos/overtime"
	"github.com/haukened/rr-stats/internal/stats/services/privacy"
)

// DefaultSelfName is the name the monitor answers for itself. Queries for it
// are never recorded.
const DefaultSelfName = "rr-stats.local"

// DefaultBucketWidth is used when Options.BucketWidth is zero.
const DefaultBucketWidth = 10 * time.Minute

// Matcher decides whether a name is covered by the wildcard list.
type Matcher interface {
	Decide(name string) domain.BlockDecision
}

// Reloader re-reads the wildcard list.
type Reloader interface {
	Update() error
}

// Options configures an Aggregator. Zero values select defaults.
type Options struct {
	Logger  log.Logger
	Clock   clock.Clock
	Privacy privacy.LevelSource
	// Matcher detects wildcard blocks on locally answered queries. Without
	// one every locally answered query counts as cached.
	Matcher  Matcher
	Reloader Reloader
	// BucketWidth is the time-bucket width; Epoch is the start of bucket 0
	// and defaults to the current time truncated to BucketWidth.
	BucketWidth time.Duration
	Epoch       time.Time
	IgnoreAAAA  bool
	SelfName    string
	// Reserve is the growth step of the query ledger and entity tables.
	Reserve int
}

// Aggregator owns every store and counter. All methods are safe for
// concurrent use; each holds one lock for its full duration.
type Aggregator struct {
	mu sync.Mutex

	logger   log.Logger
	clock    clock.Clock
	privacy  *privacy.Filter
	matcher  Matcher
	reloader Reloader

	ignoreAAAA bool
	selfName   string

	counters domain.Counters
	domains  *entities.Table[domain.Domain]
	clients  *entities.Table[domain.Client]
	forwards *entities.Table[domain.ForwardDestination]
	overTime *overtime.Store
	queries  *ledger.Ledger
}

// New builds an Aggregator.
func New(opts Options) (*Aggregator, error) {
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.BucketWidth == 0 {
		opts.BucketWidth = DefaultBucketWidth
	}
	if opts.BucketWidth < 0 {
		return nil, fmt.Errorf("bucket width must be positive, got %s", opts.BucketWidth)
	}
	if opts.Epoch.IsZero() {
		opts.Epoch = opts.Clock.Now().Truncate(opts.BucketWidth)
	}
	if opts.SelfName == "" {
		opts.SelfName = DefaultSelfName
	}
	ot, err := overtime.New(opts.Epoch, opts.BucketWidth, 0)
	if err != nil {
		return nil, err
	}
	return &Aggregator{
		logger:     opts.Logger,
		clock:      opts.Clock,
		privacy:    privacy.NewFilter(opts.Privacy),
		matcher:    opts.Matcher,
		reloader:   opts.Reloader,
		ignoreAAAA: opts.IgnoreAAAA,
		selfName:   utils.CanonicalDNSName(opts.SelfName),
		domains:    entities.New(opts.Reserve, domain.NewDomain),
		clients:    entities.New(opts.Reserve, domain.NewClient),
		forwards:   entities.New(opts.Reserve, domain.NewForwardDestination),
		overTime:   ot,
		queries:    ledger.New(opts.Reserve),
	}, nil
}

// Reload resets the block list entry count and re-reads the wildcard list.
// A failed re-read is logged; the previous list stays active. The lock is
// held across the re-read so no reply is classified against a half swapped
// list.
func (a *Aggregator) Reload() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counters.GravityDomains = 0

	if a.reloader == nil {
		return
	}
	if err := a.reloader.Update(); err != nil {
		a.logger.Error(map[string]any{"error": err.Error()}, "wildcard_reload_failed")
		return
	}
	a.logger.Debug(nil, "reload")
}

// ReadHosts records that the engine read count entries from a hosts-format
// file. Only block lists contribute to the gravity domain count.
func (a *Aggregator) ReadHosts(filename string, count int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !utils.ContainsAny(filename, domain.GravityListMarker, domain.BlacklistListMarker) {
		return
	}
	a.counters.GravityDomains += count
	a.logger.Debug(map[string]any{"file": filename, "count": count}, "read_hosts")
}
