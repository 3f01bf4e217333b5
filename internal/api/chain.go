package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kunnuv/niftyflow/internal/model"
)

// OptionChain fetches the current option-chain snapshot for the configured
// symbol. A response without a refresh timestamp is treated as malformed.
func (c *Client) OptionChain(ctx context.Context) (*model.OptionChain, error) {
	query := url.Values{}
	query.Set("symbol", c.symbol)

	var resp optionChainResponse
	if err := c.get(ctx, "/api/option-chain-indices", query, &resp); err != nil {
		return nil, fmt.Errorf("fetch option chain for %s: %w", c.symbol, err)
	}

	if resp.Records.Timestamp == "" {
		return nil, fmt.Errorf("option chain for %s: response missing records.timestamp", c.symbol)
	}

	chain := resp.toOptionChain()

	c.logger.Debug("option chain fetched",
		"symbol", c.symbol,
		"timestamp", chain.Timestamp,
		"strikes", len(chain.Strikes),
	)

	return chain, nil
}
