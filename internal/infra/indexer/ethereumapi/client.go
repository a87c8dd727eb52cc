// Package ethereumapi implements the txfeed.Indexer interface against the
// ethereum-api.xyz REST service. Responses arrive in a success/result
// envelope; transport, status and schema failures are mapped onto the
// txfeed sentinels so the feed pipeline never sees raw HTTP errors.
package ethereumapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/donutlabs/walletcore/internal/txfeed"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	accountTransactionsPath = "/account-transactions"
	accountAssetsPath       = "/account-assets"

	// requestIDHeader correlates client requests with indexer-side logs.
	requestIDHeader = "X-Request-Id"
)

// envelope is the indexer's uniform response wrapper. The result payload is
// decoded in a second pass so both endpoints can share the transport code.
type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
}

// client implements txfeed.Indexer.
type client struct {
	baseURL string
	conn    *retryablehttp.Client
}

// Ensure compile-time compliance with the txfeed.Indexer interface.
var _ txfeed.Indexer = (*client)(nil)

// NewClient creates an indexer client rooted at baseURL, e.g.
// "https://ethereum-api.xyz".
func NewClient(baseURL string, conn *retryablehttp.Client) *client {
	return &client{
		baseURL: baseURL,
		conn:    conn,
	}
}

// AccountTransactions fetches the full transfer history for the address on
// the given chain, newest first as the indexer reports it.
func (c *client) AccountTransactions(ctx context.Context, address string, chainID int) ([]txfeed.Transfer, error) {
	var transfers []txfeed.Transfer
	if err := c.get(ctx, accountTransactionsPath, address, chainID, &transfers); err != nil {
		return nil, err
	}

	return transfers, nil
}

// AccountAssets fetches the current asset balances for the address on the
// given chain.
func (c *client) AccountAssets(ctx context.Context, address string, chainID int) ([]txfeed.AssetBalance, error) {
	var balances []txfeed.AssetBalance
	if err := c.get(ctx, accountAssetsPath, address, chainID, &balances); err != nil {
		return nil, err
	}

	return balances, nil
}

// get performs one indexer call and decodes the envelope's result into out.
func (c *client) get(ctx context.Context, path, address string, chainID int, out any) error {
	endpoint := c.baseURL + path + "?" + url.Values{
		"address": []string{address},
		"chainId": []string{strconv.Itoa(chainID)},
	}.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build indexer request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	res, err := c.conn.Do(req)
	if err != nil {
		return transportFailure(ctx, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return transportFailure(ctx, err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return errors.Join(txfeed.ErrIndexerError, fmt.Errorf("indexer answered with status %d", res.StatusCode))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.Join(txfeed.ErrMalformedResponse, err)
	}

	if !env.Success {
		return errors.Join(txfeed.ErrIndexerError, errors.New("indexer reported failure"))
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return errors.Join(txfeed.ErrMalformedResponse, err)
	}

	return nil
}

// transportFailure distinguishes deadline expiry from other transport
// errors so the feed can surface timeouts distinctly.
func transportFailure(ctx context.Context, err error) error {
	var urlErr *url.Error
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &urlErr) && urlErr.Timeout())

	if timedOut {
		return errors.Join(txfeed.ErrNetworkTimeout, err)
	}

	return errors.Join(txfeed.ErrIndexerError, err)
}
