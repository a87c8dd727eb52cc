// Package txfeed is the transaction feed pipeline: it fetches raw transfer
// records for an (address, chain) pair from the external indexer, classifies
// each record by the viewer's role, derives human-relative time buckets, and
// produces a stable, refreshable, sectioned view model.
//
// Refreshes are stale-while-revalidate: the previously displayed sections
// stay visible while a fetch is in flight, are replaced atomically on
// success, and are left untouched on failure with the error surfaced
// alongside. Responses that arrive for a target the viewer has already
// switched away from are discarded, never rendered.
package txfeed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/donutlabs/walletcore/internal/chains"
	"github.com/donutlabs/walletcore/internal/pkg/logger"
	"github.com/donutlabs/walletcore/internal/pkg/units"
	"github.com/donutlabs/walletcore/internal/pkg/validator"
)

// ErrNoTarget is returned by Refresh and Balances before SetTarget was
// called with a wallet to watch.
var ErrNoTarget = errors.New("no feed target configured")

// defaultFetchTimeout bounds a single fetch attempt when no explicit
// timeout option is given.
const defaultFetchTimeout = 10 * time.Second

// Snapshot is the presentation-ready view model: what to render, whether a
// fetch is in flight, and the last fetch error if any. Err and Sections can
// be set at the same time (stale data plus a failed refresh).
type Snapshot struct {
	Address  string
	ChainID  int
	Loading  bool
	Err      error
	Sections []Section
}

// FormattedBalance is one asset position with its display string attached.
type FormattedBalance struct {
	Symbol  string
	Name    string
	Balance string // raw smallest-unit integer string
	Native  string // fixed-point display value
}

// Service is the transaction feed entrypoint.
type Service interface {
	// SetTarget points the feed at a wallet and chain. Switching targets
	// clears the displayed sections (they belong to the previous target)
	// and causes any in-flight response for the old target to be dropped
	// on arrival.
	SetTarget(address string, chainID int) error

	// Refresh triggers a fetch for the current target. It returns
	// immediately; completion is observable via Snapshot and Updates. At
	// most one fetch per target is in flight: redundant calls while one is
	// outstanding are no-ops.
	Refresh(ctx context.Context) error

	// Snapshot returns the current view model.
	Snapshot() Snapshot

	// Updates delivers a Snapshot after every settled fetch. The channel
	// holds only the latest value; slow consumers never block the
	// pipeline.
	Updates() <-chan Snapshot

	// Balances fetches and formats the current asset balances for the
	// target. Unlike the transfer feed it is synchronous; callers own the
	// ctx deadline.
	Balances(ctx context.Context) ([]FormattedBalance, error)
}

// target identifies one (address, chain) fetch parameterization.
type target struct {
	Address string `validate:"required"`
	ChainID int    `validate:"required,gt=0"`
}

// service is the concrete implementation of the Service interface.
type service struct {
	mu sync.Mutex

	indexer Indexer
	timeout time.Duration
	now     func() time.Time // injected clock keeps bucketing testable

	target   target
	loading  bool
	inflight target // parameters of the outstanding fetch, if loading

	err      error
	sections []Section

	updates chan Snapshot
}

// Compile-time check that *service satisfies the Service interface.
var _ Service = (*service)(nil)

// config holds optional settings applied by New.
type config struct {
	timeout time.Duration
	now     func() time.Time
}

// Option configures the service during construction.
type Option func(*config)

// WithFetchTimeout bounds each fetch attempt. Default: 10 seconds.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithClock overrides the wall clock used for time bucketing. Intended for
// tests running against a fixed instant.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// New creates the feed service reading from the given indexer.
func New(indexer Indexer, opts ...Option) *service {
	cfg := config{
		timeout: defaultFetchTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		indexer: indexer,
		timeout: cfg.timeout,
		now:     cfg.now,
		updates: make(chan Snapshot, 1),
	}
}

// SetTarget points the feed at a new (address, chain) pair.
func (s *service) SetTarget(address string, chainID int) error {
	t := target{Address: address, ChainID: chainID}
	if err := validator.Validate(t); err != nil {
		return err
	}
	if _, ok := chains.ByID(chainID); !ok {
		return errors.New("unsupported chain id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.target == t {
		return nil
	}

	s.target = t
	s.sections = nil
	s.err = nil
	s.loading = false
	return nil
}

// Refresh triggers a fetch for the current target. Previously displayed
// sections remain visible until the fetch settles.
func (s *service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.target == (target{}) {
		return ErrNoTarget
	}

	if s.loading && s.inflight == s.target {
		return nil
	}

	s.loading = true
	s.inflight = s.target

	go s.fetch(ctx, s.target)
	return nil
}

// fetch performs one bounded fetch for the given target and applies the
// outcome unless the target changed while the request was outstanding.
func (s *service) fetch(ctx context.Context, tgt target) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	transfers, err := s.indexer.AccountTransactions(ctx, tgt.Address, tgt.ChainID)
	if err != nil && ctx.Err() == context.DeadlineExceeded && !errors.Is(err, ErrNetworkTimeout) {
		err = errors.Join(ErrNetworkTimeout, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.target != tgt {
		// The viewer switched away; rendering this response would show
		// data for the wrong parameters.
		logger.Debug(ctx, "discarding stale feed response",
			"feed.address", tgt.Address,
			"feed.chain_id", tgt.ChainID,
		)
		return
	}

	s.loading = false

	if err != nil {
		// Stale-while-revalidate: keep whatever was displayed, surface the
		// error alongside.
		s.err = err
		s.publishLocked()
		return
	}

	classified := classifyAll(transfers, tgt.Address, s.now())
	for _, item := range classified {
		if item.State == StateUnhandled {
			logger.Warn(ctx, "transfer does not involve the viewer in a recognized role",
				"transfer.hash", item.Hash,
				"feed.address", tgt.Address,
			)
		}
	}

	s.err = nil
	s.sections = buildSections(classified)
	s.publishLocked()
}

// publishLocked pushes the current snapshot into the updates mailbox,
// replacing any unconsumed previous value. Callers must hold s.mu.
func (s *service) publishLocked() {
	snap := s.snapshotLocked()

	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- snap:
	default:
	}
}

// Snapshot returns the current view model.
func (s *service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *service) snapshotLocked() Snapshot {
	sections := make([]Section, len(s.sections))
	copy(sections, s.sections)

	return Snapshot{
		Address:  s.target.Address,
		ChainID:  s.target.ChainID,
		Loading:  s.loading,
		Err:      s.err,
		Sections: sections,
	}
}

// Updates exposes the latest-value snapshot mailbox.
func (s *service) Updates() <-chan Snapshot {
	return s.updates
}

// Balances fetches the target's asset positions and attaches fixed-point
// display strings using exact decimal arithmetic.
func (s *service) Balances(ctx context.Context) ([]FormattedBalance, error) {
	s.mu.Lock()
	tgt := s.target
	s.mu.Unlock()

	if tgt == (target{}) {
		return nil, ErrNoTarget
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	assets, err := s.indexer.AccountAssets(ctx, tgt.Address, tgt.ChainID)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded && !errors.Is(err, ErrNetworkTimeout) {
			err = errors.Join(ErrNetworkTimeout, err)
		}
		return nil, err
	}

	out := make([]FormattedBalance, len(assets))
	for i, asset := range assets {
		native, err := units.Format(asset.Balance, asset.Decimals, units.BalancePlaces)
		if err != nil {
			return nil, errors.Join(ErrMalformedResponse, err)
		}

		out[i] = FormattedBalance{
			Symbol:  asset.Symbol,
			Name:    asset.Name,
			Balance: asset.Balance,
			Native:  native,
		}
	}

	return out, nil
}
