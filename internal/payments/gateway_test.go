package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

func newGatewayServer(t *testing.T, handler http.HandlerFunc) *Blockonomics {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBlockonomics(coreconfig.PaymentsConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})
}

func TestNewAddress(t *testing.T) {
	gw := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/new_address", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"address": "bc1qexample"})
	})

	addr, err := gw.NewAddress(context.Background())
	require.NoError(t, err)
	require.Equal(t, "bc1qexample", addr)
}

func TestNewAddressEmptyResponse(t *testing.T) {
	gw := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})

	_, err := gw.NewAddress(context.Background())
	require.True(t, shoperr.IsCode(err, shoperr.GatewayUnavailable))
}

func TestBalanceConvertsSatoshis(t *testing.T) {
	gw := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/balance", r.URL.Path)

		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, []string{"bc1qexample"}, body["addr"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"addr": "bc1qexample", "confirmed": 50000},
			},
		})
	})

	got, err := gw.Balance(context.Background(), "bc1qexample")
	require.NoError(t, err)
	require.Equal(t, 0.0005, got)
}

func TestBalanceUnknownAddressIsZero(t *testing.T) {
	gw := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})

	got, err := gw.Balance(context.Background(), "bc1qunknown")
	require.NoError(t, err)
	require.Zero(t, got)
}

func TestGatewayErrorStatus(t *testing.T) {
	gw := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	})

	_, err := gw.NewAddress(context.Background())
	require.True(t, shoperr.IsCode(err, shoperr.GatewayUnavailable))
	_, err = gw.Balance(context.Background(), "bc1qexample")
	require.True(t, shoperr.IsCode(err, shoperr.GatewayUnavailable))
}

func TestGatewayRequiresAPIKey(t *testing.T) {
	gw := NewBlockonomics(coreconfig.PaymentsConfig{})

	_, err := gw.NewAddress(context.Background())
	require.True(t, shoperr.IsCode(err, shoperr.GatewayUnavailable))
}
