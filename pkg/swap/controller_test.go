package swap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intents-swap/pkg/amount"
	"intents-swap/pkg/catalog"
	"intents-swap/pkg/logger"
	"intents-swap/pkg/oneclick"
)

const (
	nearKey = "nep141:wrap.near"
	usdtKey = "nep141:usdt.tether-token.near"
	usdcKey = "nep141:usdc.omft.near"
	solKey  = "So11111111111111111111111111111111111111112"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]oneclick.Token{
		{Blockchain: "near", AssetID: nearKey, Symbol: "NEAR", Decimals: 24},
		{Blockchain: "near", AssetID: usdtKey, Symbol: "USDT", Decimals: 6},
		{Blockchain: "eth", AssetID: usdcKey, Symbol: "USDC", Decimals: 6},
		{Blockchain: "sol", Address: solKey, Symbol: "SOL", Decimals: 9},
	})
}

type stubWallet string

func (w stubWallet) Address() string { return string(w) }

type stubDeposits struct {
	canSend bool
	sendErr error

	mu    sync.Mutex
	calls []string
}

func (d *stubDeposits) CanSend(chain string) bool { return d.canSend }

func (d *stubDeposits) Send(ctx context.Context, chain, address, humanAmount string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, fmt.Sprintf("%s|%s|%s", chain, address, humanAmount))
	if d.sendErr != nil {
		return "", d.sendErr
	}
	return "0xsent", nil
}

func (d *stubDeposits) sendCalls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func newTestController(t *testing.T, handler http.Handler, wlt Wallet, deposits DepositSender, opts Options) *Controller {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewController(oneclick.New(server.URL, ""), wlt, testCatalog(), deposits, logger.NewNop(), opts)
	t.Cleanup(c.Close)
	return c
}

// injectTicker replaces the controller's poll ticker with a manual channel
func injectTicker(c *Controller) chan time.Time {
	ticks := make(chan time.Time, 16)
	c.newTicker = func(d time.Duration) (<-chan time.Time, func()) {
		return ticks, func() {}
	}
	return ticks
}

func currentPoll(c *Controller) *poll {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.poll
}

func seedQuote(c *Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quote = &oneclick.Quote{AmountOut: "1"}
	c.state = StateQuoted
}

func quoteResponse(t *testing.T, w http.ResponseWriter, quote oneclick.Quote) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(quote))
}

func statusResponse(t *testing.T, w http.ResponseWriter, code string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(oneclick.StatusResponse{Status: code}))
}

func TestDefaultSelection(t *testing.T) {
	c := newTestController(t, http.NotFoundHandler(), stubWallet("alice.near"), nil, Options{})

	sel := c.Selection()
	assert.Equal(t, "near", sel.FromChain)
	assert.Equal(t, "eth", sel.ToChain)
	assert.Equal(t, nearKey, sel.FromToken)
	assert.Equal(t, usdcKey, sel.ToToken)
}

func TestEveryEditClearsQuote(t *testing.T) {
	c := newTestController(t, http.NotFoundHandler(), stubWallet("alice.near"), nil, Options{})

	edits := map[string]func(){
		"from chain": func() { c.SetFromChain("sol") },
		"to chain":   func() { c.SetToChain("near") },
		"from token": func() { c.SetFromToken(usdtKey) },
		"to token":   func() { c.SetToToken(usdcKey) },
		"amount":     func() { c.SetAmount("3") },
	}

	for name, edit := range edits {
		t.Run(name, func(t *testing.T) {
			seedQuote(c)
			_, ok := c.Quote()
			require.True(t, ok)

			edit()

			_, ok = c.Quote()
			assert.False(t, ok)
			assert.Equal(t, StateIdle, c.State())
		})
	}
}

func TestChainSwitchRestoresUserChoice(t *testing.T) {
	c := newTestController(t, http.NotFoundHandler(), stubWallet("alice.near"), nil, Options{})

	c.SetFromToken(usdtKey)
	require.Equal(t, usdtKey, c.Selection().FromToken)

	// Leaving the chain and returning brings the explicit choice back
	c.SetFromChain("sol")
	assert.Equal(t, solKey, c.Selection().FromToken)

	c.SetFromChain("near")
	assert.Equal(t, usdtKey, c.Selection().FromToken)
}

func TestSetCatalogAppliesDefaults(t *testing.T) {
	c := newTestController(t, http.NotFoundHandler(), stubWallet("alice.near"), nil, Options{})

	// Start from an empty catalog, as if the fetch were still in flight
	c.SetCatalog(catalog.New(nil))
	c.SetFromChain("near")
	c.SetToChain("eth")
	require.Empty(t, c.Selection().FromToken)
	require.Empty(t, c.Selection().ToToken)

	c.SetCatalog(testCatalog())

	sel := c.Selection()
	assert.Equal(t, nearKey, sel.FromToken)
	assert.Equal(t, usdcKey, sel.ToToken)
}

func TestChainWithoutTokensLeavesSelectionUnset(t *testing.T) {
	c := newTestController(t, http.NotFoundHandler(), stubWallet("alice.near"), nil, Options{})

	c.SetFromChain("btc")

	sel := c.Selection()
	assert.Equal(t, "btc", sel.FromChain)
	assert.Empty(t, sel.FromToken)
}

func TestQuoteRequiresWalletOrFallback(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	})
	c := newTestController(t, handler, stubWallet(""), nil, Options{})
	c.SetAmount("1")

	quote, err := c.RequestQuote(context.Background(), true)

	require.Error(t, err)
	assert.Nil(t, quote)
	assert.Equal(t, Status{Message: "Please connect wallet first", Class: ClassError}, c.Status())
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests), "precondition failures must not hit the network")
}

func TestQuoteUsesFallbackAddress(t *testing.T) {
	var captured oneclick.QuoteRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		quoteResponse(t, w, oneclick.Quote{AmountOut: "1"})
	})
	c := newTestController(t, handler, stubWallet(""), nil, Options{FallbackAddress: "bob.near"})
	c.SetAmount("1")

	_, err := c.RequestQuote(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, "bob.near", captured.RefundTo)
	assert.Equal(t, "bob.near", captured.Recipient)
}

func TestDryQuoteRoundTrip(t *testing.T) {
	var captured oneclick.QuoteRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		quoteResponse(t, w, oneclick.Quote{AmountOut: "2500000", EstimatedTimeSeconds: 45})
	})
	c := newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
	c.now = func() time.Time {
		return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	c.SetAmount("2.5")

	quote, err := c.RequestQuote(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, captured.Dry)
	assert.Equal(t, "EXACT_INPUT", captured.SwapType)
	assert.Equal(t, 100, captured.SlippageTolerance)
	assert.Equal(t, nearKey, captured.OriginAsset)
	assert.Equal(t, usdcKey, captured.DestinationAsset)
	assert.Equal(t, "2500000000000000000000000", captured.Amount, "2.5 NEAR in base units")
	assert.Equal(t, "ORIGIN_CHAIN", captured.DepositType)
	assert.Equal(t, "ORIGIN_CHAIN", captured.RefundType)
	assert.Equal(t, "INTENTS", captured.RecipientType)
	assert.Equal(t, "alice.near", captured.RefundTo)
	assert.Equal(t, "alice.near", captured.Recipient)
	assert.Equal(t, "2026-01-01T12:30:00Z", captured.Deadline)
	assert.Equal(t, 0, captured.QuoteWaitingTimeMs)

	require.Equal(t, "2500000", quote.AmountOut)
	formatted, err := amount.FormatFromBase(quote.AmountOut, 6)
	require.NoError(t, err)
	assert.Equal(t, "2.5", formatted)

	stored, ok := c.Quote()
	require.True(t, ok)
	assert.Equal(t, *quote, stored)
	assert.Equal(t, StateQuoted, c.State())
	assert.Equal(t, Status{Message: "Quote received", Class: ClassSuccess}, c.Status())
}

func TestQuoteInvalidAmount(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	})
	c := newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
	c.SetAmount("not-a-number")

	_, err := c.RequestQuote(context.Background(), true)

	require.Error(t, err)
	assert.Equal(t, ClassError, c.Status().Class)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}

func TestQuoteErrorSurfacesAsStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"amount too low"}`))
	})
	c := newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
	c.SetAmount("2.5")

	quote, err := c.RequestQuote(context.Background(), true)

	require.Error(t, err)
	assert.Nil(t, quote)
	assert.Equal(t, StateIdle, c.State())

	status := c.Status()
	assert.Equal(t, ClassError, status.Class)
	assert.Contains(t, status.Message, "amount too low")

	_, ok := c.Quote()
	assert.False(t, ok)
}

func TestInFlightEditDiscardsQuote(t *testing.T) {
	var c *Controller
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The user edits the amount while the request is on the wire
		c.SetAmount("9")
		quoteResponse(t, w, oneclick.Quote{AmountOut: "2500000"})
	})
	c = newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
	c.SetAmount("2.5")

	quote, err := c.RequestQuote(context.Background(), true)
	require.NoError(t, err)
	require.NotNil(t, quote)

	// The response is returned to the caller but not stored
	_, ok := c.Quote()
	assert.False(t, ok)
	assert.Equal(t, StateIdle, c.State())
}

func swapHandler(t *testing.T, quote oneclick.Quote, statusCodes func() string, statusCount *int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			quoteResponse(t, w, quote)
		case "/status":
			if statusCount != nil {
				atomic.AddInt32(statusCount, 1)
			}
			statusResponse(t, w, statusCodes())
		default:
			http.NotFound(w, r)
		}
	})
}

func constantStatus(code string) func() string {
	return func() string { return code }
}

func TestExecuteSwapManualInstruction(t *testing.T) {
	handler := swapHandler(t, oneclick.Quote{AmountOut: "1", DepositAddress: "dep-addr"},
		constantStatus(oneclick.StatusPendingDeposit), nil)
	c := newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
	injectTicker(c)
	c.SetAmount("2.5")

	require.NoError(t, c.ExecuteSwap(context.Background()))

	assert.Equal(t, StatePolling, c.State())
	assert.Equal(t, Status{
		Message: "Send funds to the deposit address to complete the swap",
		Class:   ClassWarning,
	}, c.Status())

	stored, ok := c.Quote()
	require.True(t, ok)
	assert.Equal(t, "dep-addr", stored.DepositAddress)
}

func TestExecuteSwapAutoDeposit(t *testing.T) {
	handler := swapHandler(t, oneclick.Quote{AmountOut: "1", DepositAddress: "dep-addr"},
		constantStatus(oneclick.StatusPendingDeposit), nil)
	deposits := &stubDeposits{canSend: true}
	c := newTestController(t, handler, stubWallet("alice.near"), deposits, Options{})
	injectTicker(c)
	c.SetAmount("2.5")

	require.NoError(t, c.ExecuteSwap(context.Background()))

	assert.Equal(t, []string{"near|dep-addr|2.5"}, deposits.sendCalls())
	assert.Equal(t, Status{Message: "Deposit sent: 0xsent", Class: ClassSuccess}, c.Status())
	assert.Equal(t, StatePolling, c.State())
}

func TestExecuteSwapMemoForcesManual(t *testing.T) {
	handler := swapHandler(t, oneclick.Quote{AmountOut: "1", DepositAddress: "dep-addr", Memo: "12345"},
		constantStatus(oneclick.StatusPendingDeposit), nil)
	deposits := &stubDeposits{canSend: true}
	c := newTestController(t, handler, stubWallet("alice.near"), deposits, Options{})
	injectTicker(c)
	c.SetAmount("2.5")

	require.NoError(t, c.ExecuteSwap(context.Background()))

	assert.Empty(t, deposits.sendCalls(), "memo deposits must never be sent automatically")
	assert.Equal(t, ClassWarning, c.Status().Class)
}

func TestExecuteSwapAutoDepositFailureFallsBack(t *testing.T) {
	handler := swapHandler(t, oneclick.Quote{AmountOut: "1", DepositAddress: "dep-addr"},
		constantStatus(oneclick.StatusPendingDeposit), nil)
	deposits := &stubDeposits{canSend: true, sendErr: fmt.Errorf("rpc unreachable")}
	c := newTestController(t, handler, stubWallet("alice.near"), deposits, Options{})
	injectTicker(c)
	c.SetAmount("2.5")

	require.NoError(t, c.ExecuteSwap(context.Background()))

	assert.Equal(t, Status{
		Message: "Send funds to the deposit address to complete the swap",
		Class:   ClassWarning,
	}, c.Status())
	// The poll keeps running; the user can still deposit manually
	assert.Equal(t, StatePolling, c.State())
}

func TestExecuteSwapMissingDepositAddress(t *testing.T) {
	handler := swapHandler(t, oneclick.Quote{AmountOut: "1"}, constantStatus(""), nil)
	c := newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
	c.SetAmount("2.5")

	err := c.ExecuteSwap(context.Background())

	require.Error(t, err)
	assert.Equal(t, ClassError, c.Status().Class)
	assert.Nil(t, currentPoll(c))
}

func TestPollingStopsOnTerminalStatus(t *testing.T) {
	var statusCount int32
	codes := []string{oneclick.StatusPendingDeposit, oneclick.StatusProcessing, oneclick.StatusSuccess}
	next := func() string {
		n := atomic.LoadInt32(&statusCount)
		if int(n) > len(codes) {
			n = int32(len(codes))
		}
		return codes[n-1]
	}
	handler := swapHandler(t, oneclick.Quote{}, next, &statusCount)
	c := newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
	ticks := injectTicker(c)

	c.StartPolling("dep-addr", "")
	require.Equal(t, StatePolling, c.State())

	ticks <- time.Now()
	require.Eventually(t, func() bool {
		return c.Status().Message == "Waiting for deposit"
	}, time.Second, 5*time.Millisecond)

	ticks <- time.Now()
	require.Eventually(t, func() bool {
		return c.Status().Message == "Processing swap"
	}, time.Second, 5*time.Millisecond)

	ticks <- time.Now()
	require.Eventually(t, func() bool {
		return c.State() == StateSuccess
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, Status{Message: "Swap complete", Class: ClassSuccess}, c.Status())
	assert.Nil(t, currentPoll(c))

	// Terminal status ends the run; further ticks trigger no requests
	ticks <- time.Now()
	assert.Never(t, func() bool {
		return atomic.LoadInt32(&statusCount) > 3
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestPollingMapsRefundedAndFailed(t *testing.T) {
	for code, want := range map[string]State{
		oneclick.StatusRefunded: StateRefunded,
		oneclick.StatusFailed:   StateFailed,
	} {
		handler := swapHandler(t, oneclick.Quote{}, constantStatus(code), nil)
		c := newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
		ticks := injectTicker(c)

		c.StartPolling("dep-addr", "")
		ticks <- time.Now()

		require.Eventually(t, func() bool {
			return c.State() == want
		}, time.Second, 5*time.Millisecond, "status code %s", code)
	}
}

func TestPollingPassesUnknownCodeVerbatim(t *testing.T) {
	handler := swapHandler(t, oneclick.Quote{}, constantStatus("KYC_REQUIRED"), nil)
	c := newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
	ticks := injectTicker(c)

	c.StartPolling("dep-addr", "")
	ticks <- time.Now()

	require.Eventually(t, func() bool {
		return c.Status() == Status{Message: "KYC_REQUIRED", Class: ClassInfo}
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, StatePolling, c.State(), "unknown codes must not end the poll")
}

func TestPollingSwallowsTickErrors(t *testing.T) {
	var statusCount int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&statusCount, 1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		statusResponse(t, w, oneclick.StatusProcessing)
	})
	c := newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
	ticks := injectTicker(c)

	c.StartPolling("dep-addr", "")

	ticks <- time.Now()
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&statusCount) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, StatePolling, c.State())

	ticks <- time.Now()
	require.Eventually(t, func() bool {
		return c.Status().Message == "Processing swap"
	}, time.Second, 5*time.Millisecond)
}

func TestNewPollSupersedesOld(t *testing.T) {
	var first, second int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("depositAddress") {
		case "addr-1":
			atomic.AddInt32(&first, 1)
		case "addr-2":
			atomic.AddInt32(&second, 1)
		}
		statusResponse(t, w, oneclick.StatusPendingDeposit)
	})
	c := newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
	ticks := injectTicker(c)

	c.StartPolling("addr-1", "")
	firstPoll := currentPoll(c)
	require.NotNil(t, firstPoll)

	ticks <- time.Now()
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&first) == 1
	}, time.Second, 5*time.Millisecond)

	c.StartPolling("addr-2", "")
	select {
	case <-firstPoll.done:
	case <-time.After(time.Second):
		t.Fatal("superseded poll never wound down")
	}

	ticks <- time.Now()
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&second) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&first), "old poll must not keep requesting")
}

func TestStopPollingEndsRun(t *testing.T) {
	var statusCount int32
	handler := swapHandler(t, oneclick.Quote{}, constantStatus(oneclick.StatusPendingDeposit), &statusCount)
	c := newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
	ticks := injectTicker(c)

	c.StartPolling("dep-addr", "")
	p := currentPoll(c)
	require.NotNil(t, p)

	ticks <- time.Now()
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&statusCount) == 1
	}, time.Second, 5*time.Millisecond)

	c.StopPolling()
	select {
	case <-p.done:
	case <-time.After(time.Second):
		t.Fatal("stopped poll never wound down")
	}

	ticks <- time.Now()
	assert.Never(t, func() bool {
		return atomic.LoadInt32(&statusCount) > 1
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestStatusMemoThreadedThroughPoll(t *testing.T) {
	var memo atomic.Value
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		memo.Store(r.URL.Query().Get("depositMemo"))
		statusResponse(t, w, oneclick.StatusPendingDeposit)
	})
	c := newTestController(t, handler, stubWallet("alice.near"), nil, Options{})
	ticks := injectTicker(c)

	c.StartPolling("dep-addr", "12345")
	ticks <- time.Now()

	require.Eventually(t, func() bool {
		v, _ := memo.Load().(string)
		return v == "12345"
	}, time.Second, 5*time.Millisecond)
}
