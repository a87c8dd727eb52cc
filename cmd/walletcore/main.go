package main

import (
	"context"
	"fmt"
	"os"

	"github.com/donutlabs/walletcore/internal/handlers/cli"
	"github.com/donutlabs/walletcore/internal/infra/auth/passcode"
	"github.com/donutlabs/walletcore/internal/infra/indexer/ethereumapi"
	"github.com/donutlabs/walletcore/internal/infra/keyring/ethereum"
	"github.com/donutlabs/walletcore/internal/infra/storage/keychain"
	redisstorage "github.com/donutlabs/walletcore/internal/infra/storage/redis"
	"github.com/donutlabs/walletcore/internal/pkg/config"
	"github.com/donutlabs/walletcore/internal/pkg/logger"
	"github.com/donutlabs/walletcore/internal/pkg/resilience/retry"
	"github.com/donutlabs/walletcore/internal/pkg/telemetry"
	transporthttp "github.com/donutlabs/walletcore/internal/pkg/transport/http"
	"github.com/donutlabs/walletcore/internal/txfeed"
	"github.com/donutlabs/walletcore/internal/walletmgr"
)

const serviceName = "walletcore"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize telemetry: %v\n", err)
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	records, err := redisstorage.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to redis", "error", err)
	}
	defer records.Close()

	if err := keychain.EnsureDir(cfg.KeystorePath); err != nil {
		logger.Fatal(ctx, "failed to prepare keystore directory", "error", err)
	}
	secrets := keychain.New(cfg.KeystorePath, []byte(cfg.Passcode))

	deriver := ethereum.NewDeriver()
	gate := passcode.New([]byte(cfg.Passcode))

	wallet := walletmgr.New(secrets, records, deriver, gate,
		walletmgr.WithLoadRetry(retry.New(retry.WithLastErrorOnly(true))),
	)
	if err := wallet.Load(ctx); err != nil {
		logger.Fatal(ctx, "failed to load wallet state", "error", err)
	}

	indexer := ethereumapi.NewClient(cfg.IndexerBaseURL, transporthttp.NewClient(
		transporthttp.WithTimeout(cfg.FetchTimeout),
	))
	feed := txfeed.New(indexer, txfeed.WithFetchTimeout(cfg.FetchTimeout))

	if err := cli.Run(ctx, wallet, feed); err != nil {
		logger.Fatal(ctx, "execution failed", "error", err)
	}
}
