package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/payments"
)

func TestGetCreatesIdleSession(t *testing.T) {
	m := NewManager()

	require.Nil(t, m.Peek(7))

	s := m.Get(7)
	require.NotNil(t, s)
	require.Equal(t, Idle, s.Step)
	require.False(t, s.Step.InFlow())
	require.Same(t, s, m.Get(7))
	require.Same(t, s, m.Peek(7))

	require.NotSame(t, s, m.Get(8))
}

func TestCancelResetsFlowOnly(t *testing.T) {
	m := NewManager()
	s := m.Get(7)

	intent := &payments.Intent{ID: "i1", ItemKey: "bk1"}
	s.SetIntent(intent)
	s.Step = AwaitingItemPrice
	s.Draft = Draft{Key: "bk2", Name: "Other"}
	s.EditCategory = "ebooks"
	s.EditItem = "bk1"
	s.EditField = "name"

	require.True(t, m.Cancel(7))

	require.Equal(t, Idle, s.Step)
	require.Equal(t, Draft{}, s.Draft)
	require.Empty(t, s.EditCategory)
	require.Empty(t, s.EditItem)
	require.Empty(t, s.EditField)
	require.Same(t, intent, s.Intent())
}

func TestCancelWithoutFlow(t *testing.T) {
	m := NewManager()

	require.False(t, m.Cancel(7))

	m.Get(7)
	require.False(t, m.Cancel(7))
}

func TestStepNames(t *testing.T) {
	steps := []Step{
		Idle,
		AwaitingCategoryKey,
		AwaitingCategoryRenameKey,
		AwaitingCategoryDeleteConfirm,
		AwaitingItemKey,
		AwaitingItemName,
		AwaitingItemPrice,
		AwaitingItemPath,
		AwaitingItemCategoryChoice,
		AwaitingItemFieldChoice,
		AwaitingItemFieldValue,
		AwaitingItemDeleteConfirm,
	}
	seen := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		name := step.String()
		require.NotEqual(t, "unknown", name)
		_, dup := seen[name]
		require.False(t, dup, "duplicate name %q", name)
		seen[name] = struct{}{}
	}
	require.Equal(t, "unknown", Step(99).String())
}
