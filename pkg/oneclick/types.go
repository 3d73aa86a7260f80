package oneclick

// Token describes one swappable asset as returned by the /tokens endpoint
type Token struct {
	Blockchain string `json:"blockchain"`
	Address    string `json:"address"`
	AssetID    string `json:"assetId"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Decimals   int    `json:"decimals"`
}

// Key returns the identity used for a token throughout the app: the asset id
// when present, the contract address otherwise.
func (t Token) Key() string {
	if t.AssetID != "" {
		return t.AssetID
	}
	return t.Address
}

// QuoteRequest is the body sent to POST /quote
type QuoteRequest struct {
	Dry                bool   `json:"dry"`
	SwapType           string `json:"swapType"`
	SlippageTolerance  int    `json:"slippageTolerance"`
	OriginAsset        string `json:"originAsset"`
	DestinationAsset   string `json:"destinationAsset"`
	Amount             string `json:"amount"`
	DepositType        string `json:"depositType"`
	RefundTo           string `json:"refundTo"`
	RefundType         string `json:"refundType"`
	Recipient          string `json:"recipient"`
	RecipientType      string `json:"recipientType"`
	Deadline           string `json:"deadline"`
	QuoteWaitingTimeMs int    `json:"quoteWaitingTimeMs"`
}

// Quote is a successful /quote response. A dry quote carries no deposit
// address; a live one does, plus an optional memo that must accompany the
// deposit on memo-based chains.
type Quote struct {
	AmountOut            string  `json:"amountOut"`
	EstimatedTimeSeconds float64 `json:"estimatedTimeSeconds"`
	Deadline             string  `json:"deadline"`
	DepositAddress       string  `json:"depositAddress,omitempty"`
	Memo                 string  `json:"memo,omitempty"`
	Dry                  bool    `json:"dry"`
}

// StatusResponse is the body of GET /status
type StatusResponse struct {
	Status string `json:"status"`
}

// Swap execution status codes reported by /status
const (
	StatusPendingDeposit = "PENDING_DEPOSIT"
	StatusProcessing     = "PROCESSING"
	StatusSuccess        = "SUCCESS"
	StatusRefunded       = "REFUNDED"
	StatusFailed         = "FAILED"
)

// IsTerminalStatus reports whether a status code ends a swap's lifecycle
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusSuccess, StatusRefunded, StatusFailed:
		return true
	}
	return false
}
