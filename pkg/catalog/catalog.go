// Package catalog holds the list of swappable assets for a session. The list
// is loaded once from the aggregator and immutable afterwards; when the
// aggregator is unreachable a small built-in list keeps the UI usable.
package catalog

import (
	"context"

	"intents-swap/pkg/logger"
	"intents-swap/pkg/oneclick"
)

// TokenLister is the part of the aggregator client the catalog needs
type TokenLister interface {
	Tokens(ctx context.Context) ([]oneclick.Token, error)
}

// Catalog is an immutable token list with per-chain projections
type Catalog struct {
	tokens []oneclick.Token
}

// fallbackTokens covers one asset per chain of the demo pair so quoting
// still works offline from the aggregator.
var fallbackTokens = []oneclick.Token{
	{
		Blockchain: "near",
		Address:    "wrap.near",
		AssetID:    "nep141:wrap.near",
		Symbol:     "NEAR",
		Name:       "Wrapped NEAR",
		Decimals:   24,
	},
	{
		Blockchain: "eth",
		Address:    "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		AssetID:    "nep141:eth-0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48.omft.near",
		Symbol:     "USDC",
		Name:       "USD Coin",
		Decimals:   6,
	},
}

// New creates a catalog from an explicit token list
func New(tokens []oneclick.Token) *Catalog {
	return &Catalog{tokens: tokens}
}

// Default returns the built-in fallback catalog
func Default() *Catalog {
	return New(fallbackTokens)
}

// Load fetches the token list from the aggregator. Any failure falls back to
// the built-in list; the catalog never fails to load.
func Load(ctx context.Context, lister TokenLister, log *logger.Logger) *Catalog {
	tokens, err := lister.Tokens(ctx)
	if err != nil {
		log.Warnw("failed to fetch tokens, using built-in list", "error", err)
		return Default()
	}
	return New(tokens)
}

// Tokens returns the full catalog in load order
func (c *Catalog) Tokens() []oneclick.Token {
	return c.tokens
}

// TokensFor returns the subset of the catalog on the given chain,
// preserving catalog order
func (c *Catalog) TokensFor(chain string) []oneclick.Token {
	var subset []oneclick.Token
	for _, t := range c.tokens {
		if t.Blockchain == chain {
			subset = append(subset, t)
		}
	}
	return subset
}

// Chains returns the distinct blockchains present in the catalog, in order
// of first appearance
func (c *Catalog) Chains() []string {
	seen := make(map[string]bool)
	var chains []string
	for _, t := range c.tokens {
		if !seen[t.Blockchain] {
			seen[t.Blockchain] = true
			chains = append(chains, t.Blockchain)
		}
	}
	return chains
}

// Find looks a token up by chain and identity key
func (c *Catalog) Find(chain, key string) (oneclick.Token, bool) {
	for _, t := range c.tokens {
		if t.Blockchain == chain && t.Key() == key {
			return t, true
		}
	}
	return oneclick.Token{}, false
}
