package payments

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

type fakeGateway struct {
	address    string
	addressErr error
	balance    float64
	balanceErr error
	calls      int
}

func (g *fakeGateway) NewAddress(context.Context) (string, error) {
	g.calls++
	return g.address, g.addressErr
}

func (g *fakeGateway) Balance(context.Context, string) (float64, error) {
	return g.balance, g.balanceErr
}

type fakeItems map[string]catalog.Item

func (f fakeItems) Item(key string) (catalog.Item, error) {
	item, ok := f[key]
	if !ok {
		return catalog.Item{}, shoperr.New(shoperr.NotFound, "item %q not found", key)
	}
	return item, nil
}

type fakeSlot struct {
	intent *Intent
}

func (s *fakeSlot) Intent() *Intent          { return s.intent }
func (s *fakeSlot) SetIntent(intent *Intent) { s.intent = intent }

func writeAsset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestManager(t *testing.T, gw *fakeGateway, price float64) (*Manager, fakeItems) {
	t.Helper()
	dir := t.TempDir()
	asset := writeAsset(t, dir, "guide.pdf", "asset-bytes")
	items := fakeItems{
		"bk1": {Name: "Guide", PriceBTC: price, FilePath: asset},
	}
	return NewManager(items, gw, NewAssets("")), items
}

func TestCreateReplacesPriorIntent(t *testing.T) {
	gw := &fakeGateway{address: "bc1-first"}
	m, _ := newTestManager(t, gw, 0.001)
	slot := &fakeSlot{}

	first, err := m.Create(context.Background(), slot, "bk1")
	require.NoError(t, err)
	require.Equal(t, "bc1-first", first.Address)
	require.Equal(t, 0.001, first.AmountBTC)
	require.Same(t, first, slot.Intent())

	gw.address = "bc1-second"
	second, err := m.Create(context.Background(), slot, "bk1")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.Same(t, second, slot.Intent())
}

func TestCreateUnknownItem(t *testing.T) {
	gw := &fakeGateway{address: "bc1-addr"}
	m, _ := newTestManager(t, gw, 0.001)
	slot := &fakeSlot{}

	_, err := m.Create(context.Background(), slot, "missing")
	require.True(t, shoperr.IsCode(err, shoperr.NotFound))
	require.Nil(t, slot.Intent())
	require.Zero(t, gw.calls)
}

func TestCreateGatewayFailureLeavesNoIntent(t *testing.T) {
	gw := &fakeGateway{addressErr: shoperr.New(shoperr.GatewayUnavailable, "down")}
	m, _ := newTestManager(t, gw, 0.001)
	slot := &fakeSlot{}

	_, err := m.Create(context.Background(), slot, "bk1")
	require.True(t, shoperr.IsCode(err, shoperr.GatewayUnavailable))
	require.Nil(t, slot.Intent())

	// A confirm right after the failed create finds nothing pending.
	_, err = m.Confirm(context.Background(), slot, nil)
	require.True(t, shoperr.IsCode(err, shoperr.NoPendingIntent))
}

func TestConfirmWithoutIntent(t *testing.T) {
	m, _ := newTestManager(t, &fakeGateway{}, 0.001)

	_, err := m.Confirm(context.Background(), &fakeSlot{}, nil)
	require.True(t, shoperr.IsCode(err, shoperr.NoPendingIntent))
}

func TestConfirmExactAmountDelivers(t *testing.T) {
	gw := &fakeGateway{address: "bc1-addr", balance: 0.001}
	m, _ := newTestManager(t, gw, 0.001)
	slot := &fakeSlot{}

	_, err := m.Create(context.Background(), slot, "bk1")
	require.NoError(t, err)

	var delivered []byte
	res, err := m.Confirm(context.Background(), slot, func(item catalog.Item, asset io.ReadCloser) error {
		require.Equal(t, "Guide", item.Name)
		delivered, err = io.ReadAll(asset)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeFulfilled, res.Outcome)
	require.Equal(t, "asset-bytes", string(delivered))
	require.Nil(t, slot.Intent())
}

func TestConfirmToleratesRounding(t *testing.T) {
	gw := &fakeGateway{address: "bc1-addr", balance: 0.001 - 2e-13}
	m, _ := newTestManager(t, gw, 0.001)
	slot := &fakeSlot{}

	_, err := m.Create(context.Background(), slot, "bk1")
	require.NoError(t, err)

	res, err := m.Confirm(context.Background(), slot, func(catalog.Item, io.ReadCloser) error { return nil })
	require.NoError(t, err)
	require.Equal(t, OutcomeFulfilled, res.Outcome)
}

func TestConfirmInsufficientKeepsIntent(t *testing.T) {
	gw := &fakeGateway{address: "bc1-addr", balance: 0.0005}
	m, _ := newTestManager(t, gw, 0.001)
	slot := &fakeSlot{}

	intent, err := m.Create(context.Background(), slot, "bk1")
	require.NoError(t, err)

	res, err := m.Confirm(context.Background(), slot, nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeInsufficient, res.Outcome)
	require.Equal(t, 0.0005, res.ReceivedBTC)
	require.Equal(t, 0.001, res.AmountBTC)
	require.Same(t, intent, slot.Intent())
}

func TestConfirmGatewayFailureKeepsIntent(t *testing.T) {
	gw := &fakeGateway{address: "bc1-addr", balanceErr: shoperr.New(shoperr.GatewayUnavailable, "down")}
	m, _ := newTestManager(t, gw, 0.001)
	slot := &fakeSlot{}

	intent, err := m.Create(context.Background(), slot, "bk1")
	require.NoError(t, err)

	_, err = m.Confirm(context.Background(), slot, nil)
	require.True(t, shoperr.IsCode(err, shoperr.GatewayUnavailable))
	require.Same(t, intent, slot.Intent())
}

func TestConfirmMissingAssetKeepsIntent(t *testing.T) {
	gw := &fakeGateway{address: "bc1-addr", balance: 1}
	items := fakeItems{
		"bk1": {Name: "Guide", PriceBTC: 0.001, FilePath: filepath.Join(t.TempDir(), "gone.pdf")},
	}
	m := NewManager(items, gw, NewAssets(""))
	slot := &fakeSlot{}

	intent, err := m.Create(context.Background(), slot, "bk1")
	require.NoError(t, err)

	_, err = m.Confirm(context.Background(), slot, nil)
	require.True(t, shoperr.IsCode(err, shoperr.AssetMissing))
	require.Same(t, intent, slot.Intent())
}

func TestConfirmDeliveryFailureKeepsIntent(t *testing.T) {
	gw := &fakeGateway{address: "bc1-addr", balance: 1}
	m, _ := newTestManager(t, gw, 0.001)
	slot := &fakeSlot{}

	intent, err := m.Create(context.Background(), slot, "bk1")
	require.NoError(t, err)

	wantErr := shoperr.New(shoperr.GatewayUnavailable, "send failed")
	_, err = m.Confirm(context.Background(), slot, func(catalog.Item, io.ReadCloser) error { return wantErr })
	require.ErrorIs(t, err, wantErr)
	require.Same(t, intent, slot.Intent())

	// The retry after a failed delivery succeeds without paying again.
	res, err := m.Confirm(context.Background(), slot, func(catalog.Item, io.ReadCloser) error { return nil })
	require.NoError(t, err)
	require.Equal(t, OutcomeFulfilled, res.Outcome)
	require.Nil(t, slot.Intent())
}

func TestAssetsResolveRelativePaths(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "guide.pdf", "x")

	a := NewAssets(dir)
	f, err := a.Open("guide.pdf")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = a.Open("missing.pdf")
	require.True(t, shoperr.IsCode(err, shoperr.AssetMissing))
	_, err = a.Open("")
	require.True(t, shoperr.IsCode(err, shoperr.AssetMissing))
}
