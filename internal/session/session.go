// Package session holds per-user conversational state: which prompt the admin
// flow is waiting on, the partially collected item draft, and the user's
// pending payment intent. Everything here is in-memory and lost on restart.
package session

import (
	"sync"

	"github.com/m3rciful/shopbot/internal/payments"
)

// Step is the prompt a user's next text message is interpreted against.
type Step int

const (
	// Idle means free text is ignored.
	Idle Step = iota

	// Category flows.
	AwaitingCategoryKey
	AwaitingCategoryRenameKey
	AwaitingCategoryDeleteConfirm

	// Item creation flow, in prompt order.
	AwaitingItemKey
	AwaitingItemName
	AwaitingItemPrice
	AwaitingItemPath
	AwaitingItemCategoryChoice

	// Item editing flows.
	AwaitingItemFieldChoice
	AwaitingItemFieldValue
	AwaitingItemDeleteConfirm
)

// String names a step for logs.
func (s Step) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingCategoryKey:
		return "awaiting_category_key"
	case AwaitingCategoryRenameKey:
		return "awaiting_category_rename_key"
	case AwaitingCategoryDeleteConfirm:
		return "awaiting_category_delete_confirm"
	case AwaitingItemKey:
		return "awaiting_item_key"
	case AwaitingItemName:
		return "awaiting_item_name"
	case AwaitingItemPrice:
		return "awaiting_item_price"
	case AwaitingItemPath:
		return "awaiting_item_path"
	case AwaitingItemCategoryChoice:
		return "awaiting_item_category_choice"
	case AwaitingItemFieldChoice:
		return "awaiting_item_field_choice"
	case AwaitingItemFieldValue:
		return "awaiting_item_field_value"
	case AwaitingItemDeleteConfirm:
		return "awaiting_item_delete_confirm"
	}
	return "unknown"
}

// InFlow reports whether the session is in the middle of an admin dialog.
func (s Step) InFlow() bool { return s != Idle }

// Draft accumulates the fields of an item being created, one prompt at a time.
type Draft struct {
	Key      string
	Name     string
	PriceBTC float64
	FilePath string
}

// Session is the full conversational state of one user.
type Session struct {
	Step  Step
	Draft Draft

	// EditCategory and EditItem pin the target of a rename, delete or
	// field-edit dialog.
	EditCategory string
	EditItem     string
	// EditField is the item field selected in AwaitingItemFieldChoice.
	EditField string

	intent *payments.Intent
}

// Intent returns the pending payment intent, if any.
func (s *Session) Intent() *payments.Intent { return s.intent }

// SetIntent installs or clears the pending payment intent.
func (s *Session) SetIntent(intent *payments.Intent) { s.intent = intent }

// ResetFlow abandons the current dialog without touching the payment intent.
func (s *Session) ResetFlow() {
	s.Step = Idle
	s.Draft = Draft{}
	s.EditCategory = ""
	s.EditItem = ""
	s.EditField = ""
}

// Manager owns the session of every user the bot has talked to.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewManager builds an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*Session)}
}

// Get returns the session for userID, creating an idle one on first contact.
func (m *Manager) Get(userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{}
		m.sessions[userID] = s
	}
	return s
}

// Peek returns the session for userID without creating one.
func (m *Manager) Peek(userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID]
}

// Cancel abandons any in-progress dialog for userID. The payment intent
// survives: /cancel backs out of an admin flow, it does not forfeit a
// purchase.
func (m *Manager) Cancel(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok || !s.Step.InFlow() {
		return false
	}
	s.ResetFlow()
	return true
}
