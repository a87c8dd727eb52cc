package cli

import (
	"context"

	"github.com/donutlabs/walletcore/internal/chains"
	"github.com/donutlabs/walletcore/internal/txfeed"
	"github.com/donutlabs/walletcore/internal/walletmgr"
)

// walletServiceFake is a scriptable walletmgr.Service for handler tests.
type walletServiceFake struct {
	state   walletmgr.State
	address string
	network chains.Network

	createAddress string
	createErr     error

	importAddress string
	importErr     error
	importedWith  string

	replaceAddress string
	replaceErr     error
	replacedWith   string

	revealMnemonic string
	revealErr      error

	deleteErr error
	deleted   bool

	setNetworkErr error
	setNetworkTo  int
}

var _ walletmgr.Service = (*walletServiceFake)(nil)

func (f *walletServiceFake) Load(ctx context.Context) error { return nil }

func (f *walletServiceFake) Create(ctx context.Context) (string, error) {
	return f.createAddress, f.createErr
}

func (f *walletServiceFake) Import(ctx context.Context, mnemonic string) (string, error) {
	f.importedWith = mnemonic
	return f.importAddress, f.importErr
}

func (f *walletServiceFake) Replace(ctx context.Context, mnemonic string) (string, error) {
	f.replacedWith = mnemonic
	return f.replaceAddress, f.replaceErr
}

func (f *walletServiceFake) Reveal(ctx context.Context) (string, error) {
	return f.revealMnemonic, f.revealErr
}

func (f *walletServiceFake) Delete(ctx context.Context) error {
	f.deleted = true
	return f.deleteErr
}

func (f *walletServiceFake) State() walletmgr.State { return f.state }

func (f *walletServiceFake) Address() string { return f.address }

func (f *walletServiceFake) Network() chains.Network { return f.network }

func (f *walletServiceFake) SetNetwork(ctx context.Context, chainID int) error {
	if f.setNetworkErr != nil {
		return f.setNetworkErr
	}
	f.setNetworkTo = chainID
	if network, ok := chains.ByID(chainID); ok {
		f.network = network
	}
	return nil
}

// feedServiceFake is a scriptable txfeed.Service for handler tests.
type feedServiceFake struct {
	setTargetErr     error
	targetAddress    string
	targetChainID    int
	refreshErr       error
	settled          txfeed.Snapshot
	balances         []txfeed.FormattedBalance
	balancesErr      error
	updates          chan txfeed.Snapshot
	publishOnRefresh bool
}

var _ txfeed.Service = (*feedServiceFake)(nil)

func newFeedServiceFake() *feedServiceFake {
	return &feedServiceFake{updates: make(chan txfeed.Snapshot, 1)}
}

func (f *feedServiceFake) SetTarget(address string, chainID int) error {
	if f.setTargetErr != nil {
		return f.setTargetErr
	}
	f.targetAddress = address
	f.targetChainID = chainID
	return nil
}

func (f *feedServiceFake) Refresh(ctx context.Context) error {
	if f.refreshErr != nil {
		return f.refreshErr
	}
	if f.publishOnRefresh {
		f.updates <- f.settled
	}
	return nil
}

func (f *feedServiceFake) Snapshot() txfeed.Snapshot { return f.settled }

func (f *feedServiceFake) Updates() <-chan txfeed.Snapshot { return f.updates }

func (f *feedServiceFake) Balances(ctx context.Context) ([]txfeed.FormattedBalance, error) {
	return f.balances, f.balancesErr
}
