package oneclick

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to the 1Click aggregator REST API
type Client struct {
	baseURL    string
	jwtToken   string
	httpClient *http.Client
}

// New creates a client for the given base URL (including the API version
// path, e.g. "https://1click.chaindefuser.com/v0"). The JWT token is
// optional; when set it is sent as a bearer token.
func New(baseURL, jwtToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		jwtToken:   jwtToken,
		httpClient: http.DefaultClient,
	}
}

// SetHTTPClient overrides the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// Tokens retrieves all supported tokens
func (c *Client) Tokens(ctx context.Context) ([]Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tokens", nil)
	if err != nil {
		return nil, err
	}

	var tokens []Token
	if err := c.do(req, &tokens); err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}

	return tokens, nil
}

// Quote requests a swap quote. With req.Dry set the aggregator only prices
// the swap; otherwise the response carries an actionable deposit address.
func (c *Client) Quote(ctx context.Context, quoteReq *QuoteRequest) (*Quote, error) {
	body, err := json.Marshal(quoteReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/quote", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var quote Quote
	if err := c.do(req, &quote); err != nil {
		return nil, err
	}
	// The dry flag on the response is not authoritative across API
	// versions; tag the quote with what was actually requested.
	quote.Dry = quoteReq.Dry

	return &quote, nil
}

// Status checks the execution status of a swap by its deposit address. The
// memo parameter is omitted from the query when empty.
func (c *Client) Status(ctx context.Context, depositAddress, memo string) (*StatusResponse, error) {
	params := url.Values{}
	params.Set("depositAddress", depositAddress)
	if memo != "" {
		params.Set("depositMemo", memo)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var status StatusResponse
	if err := c.do(req, &status); err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	return &status, nil
}

// do executes a request, decoding a 2xx body into out and turning anything
// else into an error carrying the best message the body offers.
func (c *Client) do(req *http.Request, out interface{}) error {
	if c.jwtToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwtToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed response body: %w", err)
	}

	return nil
}

// apiError extracts the actual error message from a failed response
func (c *Client) apiError(resp *http.Response) error {
	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr == nil && len(bodyBytes) > 0 {
		var errorResp map[string]interface{}
		if jsonErr := json.Unmarshal(bodyBytes, &errorResp); jsonErr == nil {
			if message, ok := errorResp["message"].(string); ok && message != "" {
				return fmt.Errorf("API error (status %d): %s", resp.StatusCode, message)
			}
			if errors, ok := errorResp["errors"]; ok {
				return fmt.Errorf("API error (status %d): %v", resp.StatusCode, errors)
			}
		}
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}
	return fmt.Errorf("API returned status code %d", resp.StatusCode)
}
