// Package swap implements the quote/swap/status lifecycle: selection state,
// dry and live quote requests against the aggregator, and the deposit-status
// poll that follows a live swap.
package swap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"intents-swap/pkg/amount"
	"intents-swap/pkg/catalog"
	"intents-swap/pkg/logger"
	"intents-swap/pkg/oneclick"
)

// API is the part of the aggregator client the controller drives
type API interface {
	Quote(ctx context.Context, req *oneclick.QuoteRequest) (*oneclick.Quote, error)
	Status(ctx context.Context, depositAddress, memo string) (*oneclick.StatusResponse, error)
}

// Wallet supplies the active wallet address, "" when no session exists
type Wallet interface {
	Address() string
}

// DepositSender attempts the automatic on-chain transfer to a deposit
// address. When no sender covers the origin chain the controller instructs
// the user to transfer manually instead.
type DepositSender interface {
	CanSend(chain string) bool
	Send(ctx context.Context, chain, address, humanAmount string) (string, error)
}

// Selection is the user's current swap input
type Selection struct {
	FromChain string `json:"fromChain"`
	ToChain   string `json:"toChain"`
	FromToken string `json:"fromToken"`
	ToToken   string `json:"toToken"`
	Amount    string `json:"amount"`
}

// Options configures the controller. Zero values fall back to the
// aggregator-compatible defaults.
type Options struct {
	SlippageBps     int           // default 100 (1%)
	DeadlineWindow  time.Duration // default 30 minutes
	PollInterval    time.Duration // default 5 seconds
	FallbackAddress string        // used when no wallet session exists
}

func (o *Options) withDefaults() {
	if o.SlippageBps == 0 {
		o.SlippageBps = 100
	}
	if o.DeadlineWindow == 0 {
		o.DeadlineWindow = 30 * time.Minute
	}
	if o.PollInterval == 0 {
		o.PollInterval = 5 * time.Second
	}
}

// Controller owns the lifecycle state. All mutating entry points invalidate
// or advance state under one lock, so a selection edit can never race a
// stored quote.
type Controller struct {
	client   API
	wallet   Wallet
	deposits DepositSender
	log      *logger.Logger
	opts     Options

	now       func() time.Time
	newTicker func(d time.Duration) (<-chan time.Time, func())

	mu      sync.Mutex
	catalog *catalog.Catalog
	sel     Selection
	// user-made token choices per chain; defaults are not recorded here
	fromChoices map[string]string
	toChoices   map[string]string
	quote       *oneclick.Quote
	status      Status
	state       State
	poll        *poll
}

// NewController creates a controller over a loaded catalog. The initial
// chains are the first two of the catalog, with default tokens applied.
func NewController(client API, wlt Wallet, cat *catalog.Catalog, deposits DepositSender, log *logger.Logger, opts Options) *Controller {
	opts.withDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	c := &Controller{
		client:      client,
		wallet:      wlt,
		deposits:    deposits,
		log:         log,
		opts:        opts,
		now:         time.Now,
		newTicker:   defaultTicker,
		catalog:     cat,
		fromChoices: make(map[string]string),
		toChoices:   make(map[string]string),
	}

	chains := cat.Chains()
	if len(chains) > 0 {
		c.sel.FromChain = chains[0]
		c.sel.ToChain = chains[0]
		if len(chains) > 1 {
			c.sel.ToChain = chains[1]
		}
	}
	c.applyDefaultTokensLocked()

	return c
}

// SetCatalog replaces the catalog once it finishes loading and re-applies
// default token selections against the new subsets.
func (c *Controller) SetCatalog(cat *catalog.Catalog) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.catalog = cat
	if c.sel.FromChain == "" {
		if chains := cat.Chains(); len(chains) > 0 {
			c.sel.FromChain = chains[0]
			c.sel.ToChain = chains[0]
			if len(chains) > 1 {
				c.sel.ToChain = chains[1]
			}
		}
	}
	c.applyDefaultTokensLocked()
}

// Catalog returns the catalog currently in use
func (c *Controller) Catalog() *catalog.Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog
}

// SetFromChain switches the origin chain. The origin token selection is
// recomputed: a previously recorded user choice for that chain wins,
// otherwise the first token of the chain's subset.
func (c *Controller) SetFromChain(chain string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sel.FromChain = chain
	c.sel.FromToken = c.fromChoices[chain]
	c.invalidateLocked()
	c.applyDefaultTokensLocked()
}

// SetToChain switches the destination chain, recomputing the destination
// token selection the same way as SetFromChain.
func (c *Controller) SetToChain(chain string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sel.ToChain = chain
	c.sel.ToToken = c.toChoices[chain]
	c.invalidateLocked()
	c.applyDefaultTokensLocked()
}

// SetFromToken records the user's origin token choice for the current chain
func (c *Controller) SetFromToken(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sel.FromToken = key
	c.fromChoices[c.sel.FromChain] = key
	c.invalidateLocked()
}

// SetToToken records the user's destination token choice for the current chain
func (c *Controller) SetToToken(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sel.ToToken = key
	c.toChoices[c.sel.ToChain] = key
	c.invalidateLocked()
}

// SetAmount updates the human-entered amount
func (c *Controller) SetAmount(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sel.Amount = value
	c.invalidateLocked()
}

// Selection returns the current selection state
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// Quote returns the stored quote, if one is valid for the current selection
func (c *Controller) Quote() (oneclick.Quote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.quote == nil {
		return oneclick.Quote{}, false
	}
	return *c.quote, true
}

// Status returns the current user-facing status line
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// invalidateLocked clears any stored quote; it no longer matches the inputs
func (c *Controller) invalidateLocked() {
	c.quote = nil
	if c.state == StateQuoting || c.state == StateQuoted {
		c.state = StateIdle
	}
}

// applyDefaultTokensLocked fills empty token selections with the first token
// of the chain's subset. Empty subsets leave the selection unset.
func (c *Controller) applyDefaultTokensLocked() {
	if c.sel.FromToken == "" {
		if subset := c.catalog.TokensFor(c.sel.FromChain); len(subset) > 0 {
			c.sel.FromToken = subset[0].Key()
		}
	}
	if c.sel.ToToken == "" {
		if subset := c.catalog.TokensFor(c.sel.ToChain); len(subset) > 0 {
			c.sel.ToToken = subset[0].Key()
		}
	}
}

func (c *Controller) setStatusLocked(message string, class Class) {
	c.status = Status{Message: message, Class: class}
}

// RequestQuote requests a quote for the current selection. With dry set the
// aggregator only prices the swap; otherwise the quote carries a deposit
// address. Failures surface as an error-classified status; no quote is
// stored. The quote is returned so ExecuteSwap can chain on it.
func (c *Controller) RequestQuote(ctx context.Context, dry bool) (*oneclick.Quote, error) {
	c.mu.Lock()

	addr := c.wallet.Address()
	if addr == "" {
		addr = c.opts.FallbackAddress
	}
	if addr == "" {
		c.setStatusLocked("Please connect wallet first", ClassError)
		c.mu.Unlock()
		return nil, fmt.Errorf("no wallet connected and no fallback address configured")
	}

	sel := c.sel
	origin, ok := c.catalog.Find(sel.FromChain, sel.FromToken)
	if !ok {
		c.setStatusLocked("Select an origin token first", ClassError)
		c.mu.Unlock()
		return nil, fmt.Errorf("no origin token selected on chain %q", sel.FromChain)
	}
	if _, ok := c.catalog.Find(sel.ToChain, sel.ToToken); !ok {
		c.setStatusLocked("Select a destination token first", ClassError)
		c.mu.Unlock()
		return nil, fmt.Errorf("no destination token selected on chain %q", sel.ToChain)
	}

	base, err := amount.ParseToBase(sel.Amount, origin.Decimals)
	if err != nil {
		c.setStatusLocked(fmt.Sprintf("Error: invalid amount %q", sel.Amount), ClassError)
		c.mu.Unlock()
		return nil, err
	}

	req := &oneclick.QuoteRequest{
		Dry:                dry,
		SwapType:           "EXACT_INPUT",
		SlippageTolerance:  c.opts.SlippageBps,
		OriginAsset:        sel.FromToken,
		DestinationAsset:   sel.ToToken,
		Amount:             base,
		DepositType:        "ORIGIN_CHAIN",
		RefundTo:           addr,
		RefundType:         "ORIGIN_CHAIN",
		Recipient:          addr,
		RecipientType:      "INTENTS",
		Deadline:           c.now().Add(c.opts.DeadlineWindow).UTC().Format(time.RFC3339),
		QuoteWaitingTimeMs: 0,
	}

	c.state = StateQuoting
	c.setStatusLocked("Getting quote...", ClassInfo)
	c.mu.Unlock()

	quote, err := c.client.Quote(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if c.state == StateQuoting {
			c.state = StateIdle
		}
		c.setStatusLocked("Error: "+err.Error(), ClassError)
		return nil, err
	}

	// If the selection changed while the request was in flight the result
	// no longer matches the inputs; return it to the caller but do not
	// store it.
	if c.sel == sel {
		c.quote = quote
		c.state = StateQuoted
		c.setStatusLocked("Quote received", ClassSuccess)
	}

	return quote, nil
}

// ExecuteSwap requests a live quote and begins deposit-status polling. When
// a deposit sender covers the origin chain and the quote has no memo, the
// transfer is attempted automatically; in every other case the user is
// instructed to send the funds manually.
func (c *Controller) ExecuteSwap(ctx context.Context) error {
	quote, err := c.RequestQuote(ctx, false)
	if err != nil {
		return err
	}
	if quote.DepositAddress == "" {
		c.mu.Lock()
		c.setStatusLocked("Error: quote carries no deposit address", ClassError)
		c.mu.Unlock()
		return fmt.Errorf("live quote missing deposit address")
	}

	c.StartPolling(quote.DepositAddress, quote.Memo)

	c.mu.Lock()
	sel := c.sel
	c.mu.Unlock()

	// Memo-based deposits always go through the user's own wallet; the
	// senders cannot attach memos.
	if quote.Memo == "" && c.deposits != nil && c.deposits.CanSend(sel.FromChain) {
		txHash, err := c.deposits.Send(ctx, sel.FromChain, quote.DepositAddress, sel.Amount)
		c.mu.Lock()
		if err != nil {
			c.log.Warnw("auto-deposit failed", "chain", sel.FromChain, "error", err)
			c.setStatusLocked("Send funds to the deposit address to complete the swap", ClassWarning)
		} else {
			c.setStatusLocked("Deposit sent: "+txHash, ClassSuccess)
		}
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	c.setStatusLocked("Send funds to the deposit address to complete the swap", ClassWarning)
	c.mu.Unlock()
	return nil
}

// Close stops any active poll. The controller issues no further requests
// afterwards.
func (c *Controller) Close() {
	c.StopPolling()
}
