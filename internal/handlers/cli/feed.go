package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/donutlabs/walletcore/internal/pkg/units"
	"github.com/donutlabs/walletcore/internal/pkg/x/chflow"
	"github.com/donutlabs/walletcore/internal/txfeed"
	"github.com/donutlabs/walletcore/internal/walletmgr"

	"github.com/urfave/cli/v3"
)

// listTransactionsCommand returns a CLI command that fetches and renders the
// transfer history of the active wallet, grouped by time bucket.
//
// Usage example:
//
//	walletcore transactions
func listTransactionsCommand(wm walletmgr.Service, feed txfeed.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "transactions",
		Description: "Fetch and render the active wallet's transfer history, grouped by time.",
		Usage:       "Lists the wallet's transactions.",
		Action: func(ctx context.Context, c *cli.Command) error {
			snap, err := settledSnapshot(ctx, wm, feed)
			if err != nil {
				return err
			}

			if len(snap.Sections) == 0 {
				fmt.Fprintln(out, "No transactions yet")
				return nil
			}

			for _, section := range snap.Sections {
				fmt.Fprintf(out, "%s\n", section.Label)
				for _, item := range section.Items {
					fmt.Fprintf(out, "  %s\n", transferRow(item))
				}
			}
			return nil
		},
	}
}

// listBalancesCommand returns a CLI command that fetches and renders the
// active wallet's asset balances.
//
// Usage example:
//
//	walletcore balances
func listBalancesCommand(wm walletmgr.Service, feed txfeed.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "balances",
		Description: "Fetch and render the active wallet's asset balances.",
		Usage:       "Lists the wallet's asset balances.",
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := pointFeedAtWallet(wm, feed); err != nil {
				return err
			}

			balances, err := feed.Balances(ctx)
			if err != nil {
				return err
			}

			if len(balances) == 0 {
				fmt.Fprintln(out, "No assets yet")
				return nil
			}

			for _, balance := range balances {
				fmt.Fprintf(out, "%s %s (%s)\n", balance.Native, balance.Symbol, balance.Name)
			}
			return nil
		},
	}
}

// pointFeedAtWallet targets the feed at the active wallet on its selected
// network.
func pointFeedAtWallet(wm walletmgr.Service, feed txfeed.Service) error {
	if wm.State() != walletmgr.StateActive {
		return walletmgr.ErrNoActiveWallet
	}

	return feed.SetTarget(wm.Address(), wm.Network().ID)
}

// settledSnapshot triggers a refresh and waits for the fetch to settle,
// skipping snapshots that still have a fetch outstanding.
func settledSnapshot(ctx context.Context, wm walletmgr.Service, feed txfeed.Service) (txfeed.Snapshot, error) {
	if err := pointFeedAtWallet(wm, feed); err != nil {
		return txfeed.Snapshot{}, err
	}

	if err := feed.Refresh(ctx); err != nil {
		return txfeed.Snapshot{}, err
	}

	for {
		snap, ok := chflow.Receive(ctx, feed.Updates())
		if !ok {
			return txfeed.Snapshot{}, ctx.Err()
		}
		if snap.Loading {
			continue
		}
		if snap.Err != nil {
			return txfeed.Snapshot{}, snap.Err
		}
		return snap, nil
	}
}

// transferRow renders one classified transfer as a single human sentence.
func transferRow(item txfeed.ClassifiedTransfer) string {
	amount, err := units.Format(item.Value, item.Asset.Decimals, units.AmountPlaces)
	if err != nil {
		amount = item.Value
	}

	switch item.State {
	case txfeed.StateSent:
		return fmt.Sprintf("You sent %s %s to %s", amount, item.Asset.Symbol, truncateAddress(item.To))
	case txfeed.StateReceived:
		return fmt.Sprintf("You received %s %s from %s", amount, item.Asset.Symbol, truncateAddress(item.From))
	case txfeed.StateSelf:
		return fmt.Sprintf("You sent %s %s to yourself", amount, item.Asset.Symbol)
	case txfeed.StateError:
		return fmt.Sprintf("Failed transaction of %s %s", amount, item.Asset.Symbol)
	default:
		return fmt.Sprintf("Transfer of %s %s", amount, item.Asset.Symbol)
	}
}

// truncateAddress shortens an address for display: the first 10 characters,
// an ellipsis, and the last 4.
func truncateAddress(address string) string {
	if len(address) <= 14 {
		return address
	}
	return address[:10] + "..." + address[len(address)-4:]
}
