// Package cli exposes the wallet lifecycle and the transaction feed as a
// command-line application.
package cli

import (
	"context"
	"os"

	"github.com/donutlabs/walletcore/internal/txfeed"
	"github.com/donutlabs/walletcore/internal/walletmgr"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the walletcore CLI application.
//
// It registers all available commands, including:
//
//   - `create`: Generates a fresh wallet on this device.
//   - `import`: Restores a wallet from a recovery phrase.
//   - `replace`: Overwrites the active wallet with a new recovery phrase.
//   - `reveal`: Prints the recovery phrase after authentication.
//   - `delete`: Destroys the active wallet.
//   - `status`: Shows the wallet state, address and selected network.
//   - `network`: Lists the supported networks or switches the selection.
//   - `transactions`: Fetches and renders the transfer history.
//   - `balances`: Fetches and renders the asset balances.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - wm: The walletmgr service implementation used by lifecycle commands.
//   - feed: The txfeed service implementation used by feed commands.
func Run(ctx context.Context, wm walletmgr.Service, feed txfeed.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "walletcore",
		Description:           "Command-line interface for the walletcore self-custody wallet.",
		Usage:                 "walletcore [command] [flags]",
		Commands: []*cli.Command{
			createWalletCommand(wm, os.Stdout),
			importWalletCommand(wm, os.Stdout),
			replaceWalletCommand(wm, os.Stdout),
			revealMnemonicCommand(wm, os.Stdout),
			deleteWalletCommand(wm, os.Stdout),
			walletStatusCommand(wm, os.Stdout),
			selectNetworkCommand(wm, os.Stdout),
			listTransactionsCommand(wm, feed, os.Stdout),
			listBalancesCommand(wm, feed, os.Stdout),
		},
	}

	return app.Run(ctx, os.Args)
}
