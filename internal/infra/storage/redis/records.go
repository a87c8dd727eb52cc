package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/donutlabs/walletcore/internal/walletmgr"

	redis "github.com/redis/go-redis/v9"
)

// recordKeyPrefix defines the base key prefix for wallet records.
const recordKeyPrefix = "wallet"

// Record keys are fixed: the device holds at most one wallet, so there is
// nothing to parameterize them by.
const (
	addressKey = recordKeyPrefix + ":record:address"
	networkKey = recordKeyPrefix + ":record:network"
)

// SaveAddress implements the walletmgr.RecordStorage interface using a plain
// Redis string key.
//
// Parameters:
//   - ctx: context used for cancellation and timeout control.
//   - address: checksummed account address derived from the wallet secret.
//
// Returns:
//   - An error tagged with walletmgr.ErrStorageUnavailable if the write fails.
func (c *client) SaveAddress(ctx context.Context, address string) error {
	if err := c.conn.Set(ctx, addressKey, address, 0).Err(); err != nil {
		return recordFailure(err)
	}

	return nil
}

// LoadAddress returns the persisted address. A missing key reports absence,
// not failure.
func (c *client) LoadAddress(ctx context.Context) (string, bool, error) {
	address, err := c.conn.Get(ctx, addressKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, recordFailure(err)
	}

	return address, true, nil
}

// DeleteAddress removes the persisted address. Deleting an absent key is not
// an error.
func (c *client) DeleteAddress(ctx context.Context) error {
	if err := c.conn.Del(ctx, addressKey).Err(); err != nil {
		return recordFailure(err)
	}

	return nil
}

// SaveNetwork persists the selected chain id.
func (c *client) SaveNetwork(ctx context.Context, chainID int) error {
	if err := c.conn.Set(ctx, networkKey, strconv.Itoa(chainID), 0).Err(); err != nil {
		return recordFailure(err)
	}

	return nil
}

// LoadNetwork returns the persisted chain id. A missing key means no
// selection was ever saved.
func (c *client) LoadNetwork(ctx context.Context) (int, bool, error) {
	raw, err := c.conn.Get(ctx, networkKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, recordFailure(err)
	}

	chainID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, recordFailure(err)
	}

	return chainID, true, nil
}

// recordFailure tags Redis errors with the storage sentinel expected by the
// wallet service.
func recordFailure(err error) error {
	if errors.Is(err, walletmgr.ErrStorageUnavailable) {
		return err
	}
	return errors.Join(walletmgr.ErrStorageUnavailable, err)
}

// Compile-time assertion to ensure *client satisfies the walletmgr.RecordStorage interface
var _ walletmgr.RecordStorage = new(client)
