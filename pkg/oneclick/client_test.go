package oneclick

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteRequestBody(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/quote", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"amountOut":"2500000","estimatedTimeSeconds":60}`))
	}))
	defer server.Close()

	client := New(server.URL, "")
	quote, err := client.Quote(context.Background(), &QuoteRequest{
		Dry:                true,
		SwapType:           "EXACT_INPUT",
		SlippageTolerance:  100,
		OriginAsset:        "nep141:wrap.near",
		DestinationAsset:   "nep141:usdc.omft.near",
		Amount:             "2500000000000000000000000",
		DepositType:        "ORIGIN_CHAIN",
		RefundTo:           "alice.near",
		RefundType:         "ORIGIN_CHAIN",
		Recipient:          "alice.near",
		RecipientType:      "INTENTS",
		Deadline:           "2026-01-01T00:00:00Z",
		QuoteWaitingTimeMs: 0,
	})
	require.NoError(t, err)

	assert.Equal(t, true, captured["dry"])
	assert.Equal(t, "EXACT_INPUT", captured["swapType"])
	assert.Equal(t, float64(100), captured["slippageTolerance"])
	assert.Equal(t, "nep141:wrap.near", captured["originAsset"])
	assert.Equal(t, "nep141:usdc.omft.near", captured["destinationAsset"])
	assert.Equal(t, "2500000000000000000000000", captured["amount"])
	assert.Equal(t, "ORIGIN_CHAIN", captured["depositType"])
	assert.Equal(t, "ORIGIN_CHAIN", captured["refundType"])
	assert.Equal(t, "INTENTS", captured["recipientType"])
	assert.Equal(t, "2026-01-01T00:00:00Z", captured["deadline"])
	// Zero must still be sent explicitly
	assert.Contains(t, captured, "quoteWaitingTimeMs")
	assert.Equal(t, float64(0), captured["quoteWaitingTimeMs"])

	assert.Equal(t, "2500000", quote.AmountOut)
	assert.True(t, quote.Dry)
}

func TestQuoteTagsDryFromRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"amountOut":"1","depositAddress":"0xdeadbeef","dry":true}`))
	}))
	defer server.Close()

	quote, err := New(server.URL, "").Quote(context.Background(), &QuoteRequest{Dry: false})
	require.NoError(t, err)
	assert.False(t, quote.Dry)
	assert.Equal(t, "0xdeadbeef", quote.DepositAddress)
}

func TestStatusMemoParam(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/status", r.URL.Path)
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"status":"PENDING_DEPOSIT"}`))
	}))
	defer server.Close()

	client := New(server.URL, "")

	status, err := client.Status(context.Background(), "0xabc", "")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingDeposit, status.Status)
	assert.Equal(t, []string{"0xabc"}, query["depositAddress"])
	assert.NotContains(t, query, "depositMemo")

	_, err = client.Status(context.Background(), "0xabc", "12345")
	require.NoError(t, err)
	assert.Equal(t, []string{"12345"}, query["depositMemo"])
}

func TestBearerTokenHeader(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := New(server.URL, "secret-jwt").Tokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-jwt", auth)

	_, err = New(server.URL, "").Tokens(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestAPIErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		contains string
	}{
		{"message field", 400, `{"message":"amount too low"}`, "amount too low"},
		{"errors field", 422, `{"errors":["originAsset is unknown"]}`, "originAsset is unknown"},
		{"raw body", 500, `upstream exploded`, "upstream exploded"},
		{"empty body", 503, ``, "503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := New(server.URL, "").Quote(context.Background(), &QuoteRequest{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestTokenKey(t *testing.T) {
	withAsset := Token{AssetID: "nep141:wrap.near", Address: "wrap.near"}
	assert.Equal(t, "nep141:wrap.near", withAsset.Key())

	addressOnly := Token{Address: "0xA0b8"}
	assert.Equal(t, "0xA0b8", addressOnly.Key())
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(StatusSuccess))
	assert.True(t, IsTerminalStatus(StatusRefunded))
	assert.True(t, IsTerminalStatus(StatusFailed))
	assert.False(t, IsTerminalStatus(StatusPendingDeposit))
	assert.False(t, IsTerminalStatus(StatusProcessing))
	assert.False(t, IsTerminalStatus("SOMETHING_NEW"))
}
