package cli

import (
	"bytes"
	"testing"

	"github.com/donutlabs/walletcore/internal/chains"
	"github.com/donutlabs/walletcore/internal/txfeed"
	"github.com/donutlabs/walletcore/internal/walletmgr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeWallet() *walletServiceFake {
	return &walletServiceFake{
		state:   walletmgr.StateActive,
		address: "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		network: chains.Default(),
	}
}

func TestListTransactionsCommand(t *testing.T) {
	t.Run("should render sections with human rows", func(t *testing.T) {
		var out bytes.Buffer
		wm := activeWallet()
		feed := newFeedServiceFake()
		feed.publishOnRefresh = true
		feed.settled = txfeed.Snapshot{
			Sections: []txfeed.Section{
				{
					Label: "Today",
					Items: []txfeed.ClassifiedTransfer{
						{
							Transfer: txfeed.Transfer{
								From:  wm.address,
								To:    "0x1234567890abcdef1234567890abcdef12345678",
								Value: "1500000000000000000",
								Asset: txfeed.Asset{Symbol: "ETH", Decimals: 18},
							},
							State: txfeed.StateSent,
						},
					},
				},
				{
					Label: "Yesterday",
					Items: []txfeed.ClassifiedTransfer{
						{
							Transfer: txfeed.Transfer{
								From:  "0xfeedfacefeedfacefeedfacefeedfacefeedface",
								To:    wm.address,
								Value: "250000000000000000",
								Asset: txfeed.Asset{Symbol: "ETH", Decimals: 18},
							},
							State: txfeed.StateReceived,
						},
					},
				},
			},
		}

		err := runCommand(t, listTransactionsCommand(wm, feed, &out), "transactions")
		require.NoError(t, err)

		assert.Equal(t, wm.address, feed.targetAddress)
		assert.Equal(t, 1, feed.targetChainID)
		assert.Contains(t, out.String(), "Today\n")
		assert.Contains(t, out.String(), "You sent 1.50 ETH to 0x12345678...5678")
		assert.Contains(t, out.String(), "Yesterday\n")
		assert.Contains(t, out.String(), "You received 0.25 ETH from 0xfeedface...face")
	})

	t.Run("should report an empty history", func(t *testing.T) {
		var out bytes.Buffer
		feed := newFeedServiceFake()
		feed.publishOnRefresh = true

		err := runCommand(t, listTransactionsCommand(activeWallet(), feed, &out), "transactions")
		require.NoError(t, err)

		assert.Equal(t, "No transactions yet\n", out.String())
	})

	t.Run("should require an active wallet", func(t *testing.T) {
		wm := &walletServiceFake{state: walletmgr.StateEmpty, network: chains.Default()}

		err := runCommand(t, listTransactionsCommand(wm, newFeedServiceFake(), &bytes.Buffer{}), "transactions")
		assert.ErrorIs(t, err, walletmgr.ErrNoActiveWallet)
	})

	t.Run("should surface a failed refresh", func(t *testing.T) {
		feed := newFeedServiceFake()
		feed.publishOnRefresh = true
		feed.settled = txfeed.Snapshot{Err: txfeed.ErrIndexerError}

		err := runCommand(t, listTransactionsCommand(activeWallet(), feed, &bytes.Buffer{}), "transactions")
		assert.ErrorIs(t, err, txfeed.ErrIndexerError)
	})
}

func TestListBalancesCommand(t *testing.T) {
	t.Run("should render formatted balances", func(t *testing.T) {
		var out bytes.Buffer
		feed := newFeedServiceFake()
		feed.balances = []txfeed.FormattedBalance{
			{Symbol: "ETH", Name: "Ethereum", Balance: "1500000000000000000", Native: "1.5000"},
			{Symbol: "DAI", Name: "Dai", Balance: "25000000000000000000", Native: "25.0000"},
		}

		err := runCommand(t, listBalancesCommand(activeWallet(), feed, &out), "balances")
		require.NoError(t, err)

		assert.Contains(t, out.String(), "1.5000 ETH (Ethereum)")
		assert.Contains(t, out.String(), "25.0000 DAI (Dai)")
	})

	t.Run("should report an empty portfolio", func(t *testing.T) {
		var out bytes.Buffer

		err := runCommand(t, listBalancesCommand(activeWallet(), newFeedServiceFake(), &out), "balances")
		require.NoError(t, err)

		assert.Equal(t, "No assets yet\n", out.String())
	})

	t.Run("should require an active wallet", func(t *testing.T) {
		wm := &walletServiceFake{state: walletmgr.StateEmpty, network: chains.Default()}

		err := runCommand(t, listBalancesCommand(wm, newFeedServiceFake(), &bytes.Buffer{}), "balances")
		assert.ErrorIs(t, err, walletmgr.ErrNoActiveWallet)
	})

	t.Run("should surface an indexer failure", func(t *testing.T) {
		feed := newFeedServiceFake()
		feed.balancesErr = txfeed.ErrIndexerError

		err := runCommand(t, listBalancesCommand(activeWallet(), feed, &bytes.Buffer{}), "balances")
		assert.ErrorIs(t, err, txfeed.ErrIndexerError)
	})
}

func TestTransferRow(t *testing.T) {
	t.Run("should describe a self transfer", func(t *testing.T) {
		row := transferRow(txfeed.ClassifiedTransfer{
			Transfer: txfeed.Transfer{Value: "1000000000000000000", Asset: txfeed.Asset{Symbol: "ETH", Decimals: 18}},
			State:    txfeed.StateSelf,
		})

		assert.Equal(t, "You sent 1.00 ETH to yourself", row)
	})

	t.Run("should describe a failed transfer", func(t *testing.T) {
		row := transferRow(txfeed.ClassifiedTransfer{
			Transfer: txfeed.Transfer{Value: "500000000000000000", Asset: txfeed.Asset{Symbol: "ETH", Decimals: 18}},
			State:    txfeed.StateError,
		})

		assert.Equal(t, "Failed transaction of 0.50 ETH", row)
	})

	t.Run("should fall back to the raw value when formatting fails", func(t *testing.T) {
		row := transferRow(txfeed.ClassifiedTransfer{
			Transfer: txfeed.Transfer{Value: "not-a-number", Asset: txfeed.Asset{Symbol: "ETH", Decimals: 18}},
			State:    txfeed.StateSent,
		})

		assert.Contains(t, row, "not-a-number")
	})
}

func TestTruncateAddress(t *testing.T) {
	t.Run("should shorten long addresses", func(t *testing.T) {
		got := truncateAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
		assert.Equal(t, "0xAb5801a7...eC9B", got)
	})

	t.Run("should keep short values intact", func(t *testing.T) {
		assert.Equal(t, "0xdeadbeef", truncateAddress("0xdeadbeef"))
	})
}
