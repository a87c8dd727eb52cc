// Package redis implements walletmgr.RecordStorage on Redis. Only the
// plaintext wallet records live here (derived address, selected network);
// the mnemonic itself never reaches this store.
package redis

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

// client wraps the Redis connection shared by every record operation.
type client struct {
	conn *redis.Client
}

// Close releases the underlying connection pool.
func (c *client) Close() error {
	return c.conn.Close()
}

// NewClient connects to Redis and verifies the connection with a ping
// before handing the client out.
func NewClient(ctx context.Context, addr, username, password string, db int) (*client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &client{
		conn: conn,
	}, nil
}
