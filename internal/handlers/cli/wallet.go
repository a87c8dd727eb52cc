package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/donutlabs/walletcore/internal/chains"
	"github.com/donutlabs/walletcore/internal/walletmgr"

	"github.com/urfave/cli/v3"
)

// createWalletCommand returns a CLI command that generates a fresh wallet on
// this device. It fails if a wallet is already active.
//
// Usage example:
//
//	walletcore create
func createWalletCommand(wm walletmgr.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "create",
		Description: "Generate a fresh wallet on this device. Fails if a wallet is already active.",
		Usage:       "Creates a new wallet and prints its address.",
		Action: func(ctx context.Context, c *cli.Command) error {
			address, err := wm.Create(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Wallet created: %s\n", address)
			return nil
		},
	}
}

// importWalletCommand returns a CLI command that restores a wallet from a
// recovery phrase. It fails if a wallet is already active.
//
// Usage example:
//
//	walletcore import --mnemonic "abandon ability able ..."
func importWalletCommand(wm walletmgr.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "import",
		Description: "Restore a wallet from its recovery phrase. Fails if a wallet is already active.",
		Usage:       "Imports a wallet from a mnemonic and prints its address.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "mnemonic",
				Usage:    "BIP-39 recovery phrase",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			address, err := wm.Import(ctx, c.String("mnemonic"))
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Wallet imported: %s\n", address)
			return nil
		},
	}
}

// replaceWalletCommand returns a CLI command that overwrites the active
// wallet with one restored from the supplied recovery phrase.
//
// Usage example:
//
//	walletcore replace --mnemonic "abandon ability able ..."
func replaceWalletCommand(wm walletmgr.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "replace",
		Description: "Overwrite any existing wallet with one restored from the supplied recovery phrase.",
		Usage:       "Replaces the active wallet and prints the new address.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "mnemonic",
				Usage:    "BIP-39 recovery phrase",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			address, err := wm.Replace(ctx, c.String("mnemonic"))
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Wallet replaced: %s\n", address)
			return nil
		},
	}
}

// revealMnemonicCommand returns a CLI command that prints the recovery
// phrase after a fresh successful authentication.
//
// Usage example:
//
//	walletcore reveal
func revealMnemonicCommand(wm walletmgr.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "reveal",
		Description: "Print the recovery phrase. Requires a fresh successful authentication.",
		Usage:       "Reveals the active wallet's mnemonic.",
		Action: func(ctx context.Context, c *cli.Command) error {
			mnemonic, err := wm.Reveal(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, mnemonic)
			return nil
		},
	}
}

// deleteWalletCommand returns a CLI command that destroys the active wallet.
//
// Usage example:
//
//	walletcore delete
func deleteWalletCommand(wm walletmgr.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Description: "Destroy the active wallet: the secret first, then the address record.",
		Usage:       "Deletes the active wallet.",
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := wm.Delete(ctx); err != nil {
				return err
			}

			fmt.Fprintln(out, "Wallet deleted")
			return nil
		},
	}
}

// walletStatusCommand returns a CLI command that shows the wallet state,
// address and selected network.
//
// Usage example:
//
//	walletcore status
func walletStatusCommand(wm walletmgr.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "status",
		Description: "Show the wallet state, address and selected network.",
		Usage:       "Prints the current wallet status.",
		Action: func(ctx context.Context, c *cli.Command) error {
			network := wm.Network()

			fmt.Fprintf(out, "State:   %s\n", wm.State())
			if address := wm.Address(); address != "" {
				fmt.Fprintf(out, "Address: %s\n", address)
			}
			fmt.Fprintf(out, "Network: %s (%d)\n", network.Name, network.ID)
			return nil
		},
	}
}

// selectNetworkCommand returns a CLI command that lists the supported
// networks or, with --chain-id, switches the selection.
//
// Usage example:
//
//	walletcore network
//	walletcore network --chain-id 5
func selectNetworkCommand(wm walletmgr.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "network",
		Description: "List the supported networks, or switch the selection with --chain-id.",
		Usage:       "Shows or changes the selected network.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "chain-id",
				Usage: "Chain id to select (e.g. 1 for Mainnet, 5 for Goerli)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if chainID := c.Int("chain-id"); chainID != 0 {
				if err := wm.SetNetwork(ctx, int(chainID)); err != nil {
					return err
				}
			}

			selected := wm.Network()
			for _, network := range chains.All() {
				marker := " "
				if network.ID == selected.ID {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s (%d)\n", marker, network.Name, network.ID)
			}
			return nil
		},
	}
}
