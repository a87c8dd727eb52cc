package txfeed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/donutlabs/walletcore/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// indexerFake serves canned responses per address and can hold requests
// open until released, which makes in-flight interleavings controllable.
type indexerFake struct {
	mu        sync.Mutex
	transfers map[string][]Transfer
	assets    map[string][]AssetBalance
	err       error

	gate  chan struct{} // when non-nil, AccountTransactions blocks until closed
	calls int
}

func newIndexerFake() *indexerFake {
	return &indexerFake{
		transfers: make(map[string][]Transfer),
		assets:    make(map[string][]AssetBalance),
	}
}

func (f *indexerFake) AccountTransactions(ctx context.Context, address string, _ int) ([]Transfer, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.transfers[address], nil
}

func (f *indexerFake) AccountAssets(_ context.Context, address string, _ int) ([]AssetBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.assets[address], nil
}

// waitSettled blocks until the feed publishes a settled snapshot.
func waitSettled(t *testing.T, s *service) Snapshot {
	t.Helper()
	select {
	case snap := <-s.Updates():
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("feed never settled")
		return Snapshot{}
	}
}

func TestService_SetTarget(t *testing.T) {
	t.Run("should accept a valid target", func(t *testing.T) {
		s := New(newIndexerFake())
		require.NoError(t, s.SetTarget(viewer, 1))

		snap := s.Snapshot()
		assert.Equal(t, viewer, snap.Address)
		assert.Equal(t, 1, snap.ChainID)
	})

	t.Run("should reject an empty address", func(t *testing.T) {
		s := New(newIndexerFake())
		require.Error(t, s.SetTarget("", 1))
	})

	t.Run("should reject an unsupported chain id", func(t *testing.T) {
		s := New(newIndexerFake())
		require.Error(t, s.SetTarget(viewer, 1337))
	})

	t.Run("should clear displayed sections when the target changes", func(t *testing.T) {
		idx := newIndexerFake()
		idx.transfers[viewer] = []Transfer{{Hash: "0x1", To: viewer, Timestamp: time.Now().UnixMilli()}}

		s := New(idx)
		require.NoError(t, s.SetTarget(viewer, 1))
		require.NoError(t, s.Refresh(t.Context()))
		waitSettled(t, s)
		require.NotEmpty(t, s.Snapshot().Sections)

		require.NoError(t, s.SetTarget("0x000000000000000000000000000000000000dEaD", 3))
		assert.Empty(t, s.Snapshot().Sections)
	})
}

func TestService_Refresh(t *testing.T) {
	t.Run("should fail before a target is set", func(t *testing.T) {
		s := New(newIndexerFake())
		err := s.Refresh(t.Context())
		assert.ErrorIs(t, err, ErrNoTarget)
	})

	t.Run("should build sectioned view model from fetched transfers", func(t *testing.T) {
		now := time.Date(2025, time.June, 18, 15, 0, 0, 0, time.Local)
		idx := newIndexerFake()
		idx.transfers[viewer] = []Transfer{
			{Hash: "0x1", From: "0xa", To: viewer, Timestamp: now.UnixMilli()},
			{Hash: "0x2", From: viewer, To: "0xa", Timestamp: now.AddDate(0, 0, -1).UnixMilli()},
			{Hash: "0x3", From: viewer, To: "0xa", Timestamp: now.AddDate(0, 0, -40).UnixMilli()},
		}

		s := New(idx, WithClock(func() time.Time { return now }))
		require.NoError(t, s.SetTarget(viewer, 1))
		require.NoError(t, s.Refresh(t.Context()))

		snap := waitSettled(t, s)
		require.NoError(t, snap.Err)
		require.Len(t, snap.Sections, 3)

		assert.Equal(t, "Today", snap.Sections[0].Label)
		assert.Equal(t, StateReceived, snap.Sections[0].Items[0].State)

		assert.Equal(t, "Yesterday", snap.Sections[1].Label)
		assert.Equal(t, StateSent, snap.Sections[1].Items[0].State)

		assert.Equal(t, "May", snap.Sections[2].Label)
		assert.Equal(t, StateSent, snap.Sections[2].Items[0].State)

		for _, section := range snap.Sections {
			assert.Len(t, section.Items, 1)
		}
	})

	t.Run("should hold one in-flight fetch per target", func(t *testing.T) {
		idx := newIndexerFake()
		idx.gate = make(chan struct{})

		s := New(idx)
		require.NoError(t, s.SetTarget(viewer, 1))

		require.NoError(t, s.Refresh(t.Context()))
		require.NoError(t, s.Refresh(t.Context()))
		require.NoError(t, s.Refresh(t.Context()))

		close(idx.gate)
		waitSettled(t, s)

		assert.Equal(t, 1, idx.calls)
	})

	t.Run("should keep stale sections and surface the error on a failed refresh", func(t *testing.T) {
		idx := newIndexerFake()
		idx.transfers[viewer] = []Transfer{{Hash: "0x1", To: viewer, Timestamp: time.Now().UnixMilli()}}

		s := New(idx)
		require.NoError(t, s.SetTarget(viewer, 1))
		require.NoError(t, s.Refresh(t.Context()))
		waitSettled(t, s)

		idx.mu.Lock()
		idx.err = ErrIndexerError
		idx.mu.Unlock()

		require.NoError(t, s.Refresh(t.Context()))
		snap := waitSettled(t, s)

		assert.ErrorIs(t, snap.Err, ErrIndexerError)
		require.Len(t, snap.Sections, 1)
		assert.Equal(t, "0x1", snap.Sections[0].Items[0].Hash)
	})

	t.Run("should discard a response for a target the viewer switched away from", func(t *testing.T) {
		const other = "0x000000000000000000000000000000000000dEaD"

		idx := newIndexerFake()
		idx.transfers[viewer] = []Transfer{{Hash: "0xstale", To: viewer, Timestamp: time.Now().UnixMilli()}}
		idx.transfers[other] = []Transfer{{Hash: "0xfresh", To: other, Timestamp: time.Now().UnixMilli()}}
		idx.gate = make(chan struct{})

		s := New(idx)
		require.NoError(t, s.SetTarget(viewer, 1))
		require.NoError(t, s.Refresh(t.Context()))

		// Switch targets while the first fetch is still outstanding, then
		// let both responses land.
		require.NoError(t, s.SetTarget(other, 3))
		idx.mu.Lock()
		idx.gate = nil
		idx.mu.Unlock()
		require.NoError(t, s.Refresh(t.Context()))
		snap := waitSettled(t, s)

		require.Len(t, snap.Sections, 1)
		assert.Equal(t, "0xfresh", snap.Sections[0].Items[0].Hash)
	})

	t.Run("should report a timed out fetch as NetworkTimeout", func(t *testing.T) {
		idx := newIndexerFake()
		idx.gate = make(chan struct{}) // never released: fetch runs into the deadline

		s := New(idx, WithFetchTimeout(20*time.Millisecond))
		require.NoError(t, s.SetTarget(viewer, 1))
		require.NoError(t, s.Refresh(t.Context()))

		snap := waitSettled(t, s)
		assert.ErrorIs(t, snap.Err, ErrNetworkTimeout)
	})
}

func TestService_Balances(t *testing.T) {
	t.Run("should fail before a target is set", func(t *testing.T) {
		s := New(newIndexerFake())
		_, err := s.Balances(t.Context())
		assert.ErrorIs(t, err, ErrNoTarget)
	})

	t.Run("should format balances with four decimal places", func(t *testing.T) {
		idx := newIndexerFake()
		idx.assets[viewer] = []AssetBalance{
			{Symbol: "ETH", Name: "Ethereum", Decimals: 18, Balance: "1500000000000000000"},
			{Symbol: "USDC", Name: "USD Coin", Decimals: 6, Balance: "12345678"},
		}

		s := New(idx)
		require.NoError(t, s.SetTarget(viewer, 1))

		balances, err := s.Balances(t.Context())
		require.NoError(t, err)
		require.Len(t, balances, 2)

		assert.Equal(t, "1.5000", balances[0].Native)
		assert.Equal(t, "12.3457", balances[1].Native)
	})

	t.Run("should surface indexer failures", func(t *testing.T) {
		idx := newIndexerFake()
		idx.err = ErrIndexerError

		s := New(idx)
		require.NoError(t, s.SetTarget(viewer, 1))

		_, err := s.Balances(t.Context())
		assert.ErrorIs(t, err, ErrIndexerError)
	})

	t.Run("should treat a non-numeric balance as malformed", func(t *testing.T) {
		idx := newIndexerFake()
		idx.assets[viewer] = []AssetBalance{{Symbol: "BAD", Decimals: 18, Balance: "not-a-number"}}

		s := New(idx)
		require.NoError(t, s.SetTarget(viewer, 1))

		_, err := s.Balances(t.Context())
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}
