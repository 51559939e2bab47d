// Package payments covers the purchase path: the Blockonomics gateway client,
// the per-session payment intent lifecycle, and delivery of paid assets.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

// Gateway creates receiving addresses and reports confirmed balances.
type Gateway interface {
	NewAddress(ctx context.Context) (string, error)
	Balance(ctx context.Context, address string) (float64, error)
}

const defaultBaseURL = "https://www.blockonomics.co"

// satoshisPerBTC converts the gateway's smallest unit to whole BTC.
const satoshisPerBTC = 1e8

// Blockonomics implements Gateway against the Blockonomics HTTP API.
// Calls are bounded by the configured timeout and are never retried; the
// user re-triggers the action after a GATEWAY_UNAVAILABLE failure.
type Blockonomics struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewBlockonomics builds a gateway client from configuration.
func NewBlockonomics(cfg coreconfig.PaymentsConfig) *Blockonomics {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Blockonomics{
		apiKey:  cfg.APIKey,
		baseURL: base,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          10,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: timeout,
			},
		},
	}
}

// NewAddress requests a fresh receiving address.
func (b *Blockonomics) NewAddress(ctx context.Context) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	if err := b.post(ctx, "/api/new_address", nil, &out); err != nil {
		return "", err
	}
	if out.Address == "" {
		return "", shoperr.New(shoperr.GatewayUnavailable, "gateway returned empty address")
	}
	return out.Address, nil
}

// Balance returns the confirmed balance of address in whole BTC.
// A missing record counts as zero.
func (b *Blockonomics) Balance(ctx context.Context, address string) (float64, error) {
	body := map[string][]string{"addr": {address}}
	var out struct {
		Data []struct {
			Addr      string `json:"addr"`
			Confirmed int64  `json:"confirmed"`
		} `json:"data"`
	}
	if err := b.post(ctx, "/api/balance", body, &out); err != nil {
		return 0, err
	}
	if len(out.Data) == 0 {
		return 0, nil
	}
	return float64(out.Data[0].Confirmed) / satoshisPerBTC, nil
}

func (b *Blockonomics) post(ctx context.Context, path string, body, out any) error {
	if strings.TrimSpace(b.apiKey) == "" {
		return shoperr.New(shoperr.GatewayUnavailable, "payments api key is not configured")
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("payments: encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	reqCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, b.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("payments: build request: %w", err)
	}
	req.Header.Set("Authorization", b.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return shoperr.Wrap(shoperr.GatewayUnavailable, err, "gateway request %s failed", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return shoperr.New(shoperr.GatewayUnavailable, "gateway request %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return shoperr.Wrap(shoperr.GatewayUnavailable, err, "gateway response %s malformed", path)
	}
	return nil
}
