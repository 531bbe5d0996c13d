package ledger

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bilalafzal6349/ssc-system/internal/contracts"
	"github.com/bilalafzal6349/ssc-system/internal/domain"
)

// Client talks to the external trust ledger over HTTP. Actions are wrapped
// in a family/version envelope with the JSON payload base64 encoded and
// signed with HMAC-SHA256 under the shared signing key.
type Client struct {
	baseURL    string
	signingKey []byte
	httpClient *http.Client
}

type Config struct {
	BaseURL    string
	SigningKey string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("ledger base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 8 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		signingKey: []byte(cfg.SigningKey),
		httpClient: httpClient,
	}, nil
}

func (c *Client) Submit(ctx context.Context, action contracts.LedgerAction) (contracts.LedgerReceipt, error) {
	raw, err := json.Marshal(action)
	if err != nil {
		return contracts.LedgerReceipt{}, fmt.Errorf("encode ledger action: %w", err)
	}
	payload := base64.StdEncoding.EncodeToString(raw)
	envelope := contracts.TransactionEnvelope{
		Payload: payload,
		Family:  domain.LedgerFamily,
		Version: domain.LedgerVersion,
	}
	if len(c.signingKey) > 0 {
		envelope.Signature = c.sign(payload)
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return contracts.LedgerReceipt{}, fmt.Errorf("encode ledger envelope: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return contracts.LedgerReceipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contracts.LedgerReceipt{}, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return contracts.LedgerReceipt{}, fmt.Errorf("%w: submit returned %d: %s",
			domain.ErrLedgerUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var receipt contracts.LedgerReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return contracts.LedgerReceipt{}, fmt.Errorf("%w: decode receipt: %v", domain.ErrLedgerUnavailable, err)
	}
	return receipt, nil
}

func (c *Client) FetchLog(ctx context.Context) ([]contracts.LedgerReceipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactions", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: log fetch returned %d", domain.ErrLedgerUnavailable, resp.StatusCode)
	}
	var out contracts.LedgerLogResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode log: %v", domain.ErrLedgerUnavailable, err)
	}
	return out.Transactions, nil
}

func (c *Client) sign(payload string) string {
	mac := hmac.New(sha256.New, c.signingKey)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
