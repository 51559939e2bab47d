package payments

import (
	"context"
	"io"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

// ConfirmTolerance absorbs floating rounding when comparing the confirmed
// balance against the amount due.
const ConfirmTolerance = 1e-12

// Intent is a pending request to pay for one item: one receiving address,
// one expected amount. It lives only in session memory.
type Intent struct {
	ID        string
	ItemKey   string
	Address   string
	AmountBTC float64
	CreatedAt time.Time
}

// Slot is the single pending-intent holder owned by one user session.
type Slot interface {
	Intent() *Intent
	SetIntent(*Intent)
}

// ItemSource resolves item keys to item records.
type ItemSource interface {
	Item(key string) (catalog.Item, error)
}

// Outcome classifies a successful confirmation check.
type Outcome int

const (
	// OutcomeFulfilled means the payment covered the amount due and the
	// asset was delivered.
	OutcomeFulfilled Outcome = iota
	// OutcomeInsufficient means the confirmed balance is still short; the
	// intent stays pending for a later retry.
	OutcomeInsufficient
)

// Result reports what a confirmation check found.
type Result struct {
	Outcome     Outcome
	Item        catalog.Item
	AmountBTC   float64
	ReceivedBTC float64
}

// DeliverFunc hands the opened asset to the transport layer. The stream is
// closed by the manager.
type DeliverFunc func(item catalog.Item, asset io.ReadCloser) error

// Manager drives the payment intent lifecycle for all sessions.
type Manager struct {
	items   ItemSource
	gateway Gateway
	assets  *Assets
}

// NewManager wires the intent manager.
func NewManager(items ItemSource, gateway Gateway, assets *Assets) *Manager {
	return &Manager{items: items, gateway: gateway, assets: assets}
}

// Create builds a new intent for itemKey and attaches it to the slot,
// replacing any prior intent. On gateway failure nothing is recorded: a
// half-created intent must never be observable.
func (m *Manager) Create(ctx context.Context, slot Slot, itemKey string) (*Intent, error) {
	item, err := m.items.Item(itemKey)
	if err != nil {
		return nil, err
	}

	address, err := m.gateway.NewAddress(ctx)
	if err != nil {
		logger.Error(ctx, "payments", "intent.create",
			slog.String("status", "fail"),
			slog.String("item_key", itemKey),
			slog.String("err", err.Error()),
		)
		return nil, err
	}

	intent := &Intent{
		ID:        uuid.NewString(),
		ItemKey:   itemKey,
		Address:   address,
		AmountBTC: item.PriceBTC,
		CreatedAt: time.Now(),
	}
	slot.SetIntent(intent)

	// Abandoned intents are volatile; this log line is the only trail an
	// operator has for re-querying the chain.
	logger.Info(ctx, "payments", "intent.create",
		slog.String("status", "ok"),
		slog.String("intent_id", intent.ID),
		slog.String("item_key", itemKey),
		slog.String("address", address),
		slog.Float64("amount_btc", item.PriceBTC),
	)
	return intent, nil
}

// Confirm checks the confirmed balance of the slot's pending intent and, when
// the amount due is covered, delivers the asset and clears the intent.
//
// The intent survives every failure after payment verification: once the
// chain shows the money, the user must never be asked to pay again, so an
// unreadable asset or a failed delivery keeps the intent for a retry.
func (m *Manager) Confirm(ctx context.Context, slot Slot, deliver DeliverFunc) (Result, error) {
	intent := slot.Intent()
	if intent == nil {
		return Result{}, shoperr.New(shoperr.NoPendingIntent, "no pending payment")
	}

	received, err := m.gateway.Balance(ctx, intent.Address)
	if err != nil {
		logger.Error(ctx, "payments", "intent.confirm",
			slog.String("status", "fail"),
			slog.String("intent_id", intent.ID),
			slog.String("err", err.Error()),
		)
		return Result{}, err
	}

	item, err := m.items.Item(intent.ItemKey)
	if err != nil {
		// The item was deleted while the payment was in flight.
		return Result{}, err
	}

	res := Result{
		Item:        item,
		AmountBTC:   intent.AmountBTC,
		ReceivedBTC: received,
	}

	if received < intent.AmountBTC-ConfirmTolerance {
		res.Outcome = OutcomeInsufficient
		logger.Info(ctx, "payments", "intent.confirm",
			slog.String("status", "ok"),
			slog.String("outcome", "fail"),
			slog.String("intent_id", intent.ID),
			slog.Float64("amount_btc", intent.AmountBTC),
			slog.Float64("received_btc", received),
		)
		return res, nil
	}

	asset, err := m.assets.Open(item.FilePath)
	if err != nil {
		return Result{}, err
	}
	defer asset.Close()

	if deliver != nil {
		if err := deliver(item, asset); err != nil {
			return Result{}, err
		}
	}

	slot.SetIntent(nil)
	res.Outcome = OutcomeFulfilled
	logger.Info(ctx, "payments", "intent.confirm",
		slog.String("status", "ok"),
		slog.String("outcome", "ok"),
		slog.String("intent_id", intent.ID),
		slog.String("item_key", intent.ItemKey),
		slog.Float64("amount_btc", intent.AmountBTC),
		slog.Float64("received_btc", received),
	)
	return res, nil
}
