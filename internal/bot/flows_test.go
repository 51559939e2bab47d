package bot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/session"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

const testAdminID int64 = 42

// fakeContext implements just enough of tele.Context for handler tests.
// Unimplemented methods panic through the embedded nil interface.
type fakeContext struct {
	tele.Context
	sender *tele.User
	text   string
	data   string
	sent   []string
	values map[string]any
}

func (f *fakeContext) Sender() *tele.User { return f.sender }
func (f *fakeContext) Text() string       { return f.text }
func (f *fakeContext) Update() tele.Update {
	return tele.Update{}
}
func (f *fakeContext) Chat() *tele.Chat {
	return &tele.Chat{ID: f.sender.ID}
}
func (f *fakeContext) Callback() *tele.Callback {
	if f.data == "" {
		return nil
	}
	return &tele.Callback{Data: f.data}
}
func (f *fakeContext) Get(key string) any { return f.values[key] }
func (f *fakeContext) Set(key string, v any) {
	if f.values == nil {
		f.values = make(map[string]any)
	}
	f.values[key] = v
}
func (f *fakeContext) Send(what any, _ ...any) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}
func (f *fakeContext) EditOrSend(what any, opts ...any) error { return f.Send(what, opts...) }
func (f *fakeContext) Respond(_ ...*tele.CallbackResponse) error {
	return nil
}

func adminText(text string) *fakeContext {
	return &fakeContext{sender: &tele.User{ID: testAdminID}, text: text}
}

func adminCallback(data string) *fakeContext {
	return &fakeContext{sender: &tele.User{ID: testAdminID}, data: data}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	store, err := catalog.Open(catalog.Options{Dir: t.TempDir()})
	require.NoError(t, err)
	cfg := &coreconfig.Config{}
	cfg.Telegram.AdminID = testAdminID
	return New(cfg, store)
}

func testAsset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guide.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func TestHandleTextRejectsNonAdmin(t *testing.T) {
	app := newTestApp(t)
	c := &fakeContext{sender: &tele.User{ID: 7}, text: "ebooks"}
	app.sessions.Get(7).Step = session.AwaitingCategoryKey

	err := app.HandleText(c)
	require.True(t, shoperr.IsCode(err, shoperr.Unauthorized))
	require.Empty(t, app.store.Categories())
	require.Equal(t, session.Idle, app.sessions.Get(7).Step)
}

func TestAdminCallbackRejectsNonAdmin(t *testing.T) {
	app := newTestApp(t)
	c := &fakeContext{sender: &tele.User{ID: 7}, data: "admin:cat:add"}

	err := app.cbAdmin(c)
	require.True(t, shoperr.IsCode(err, shoperr.Unauthorized))
	require.Equal(t, session.Idle, app.sessions.Get(7).Step)
}

func TestCategoryAddFlow(t *testing.T) {
	app := newTestApp(t)

	require.Error(t, app.cbAdmin(adminCallback("admin:cat:add:extra")))
	require.NoError(t, app.cbAdmin(adminCallback("admin:cat:add")))
	require.Equal(t, session.AwaitingCategoryKey, app.sessions.Get(testAdminID).Step)

	// A bad key re-prompts without leaving the step.
	err := app.HandleText(adminText("E-Books"))
	require.True(t, shoperr.IsCode(err, shoperr.InvalidKey))
	require.Equal(t, session.AwaitingCategoryKey, app.sessions.Get(testAdminID).Step)

	require.NoError(t, app.HandleText(adminText("ebooks")))
	require.True(t, app.store.HasCategory("ebooks"))
	require.Equal(t, session.Idle, app.sessions.Get(testAdminID).Step)
}

func TestCategoryRenameFlow(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.store.AddCategory("ebooks"))

	require.NoError(t, app.cbAdmin(adminCallback("admin:cat:edit")))

	err := app.HandleText(adminText("just one"))
	require.True(t, shoperr.IsCode(err, shoperr.MalformedRequest))
	require.Equal(t, session.Idle, app.sessions.Get(testAdminID).Step)

	require.NoError(t, app.cbAdmin(adminCallback("admin:cat:edit")))
	require.NoError(t, app.HandleText(adminText("ebooks guides")))
	require.False(t, app.store.HasCategory("ebooks"))
	require.True(t, app.store.HasCategory("guides"))
}

func TestCategoryDeleteFlow(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.store.AddCategory("ebooks"))

	require.NoError(t, app.cbAdmin(adminCallback("admin:cat:del")))
	require.NoError(t, app.HandleText(adminText("ebooks")))

	// Text during the confirm step is rejected; only the buttons work.
	require.NoError(t, app.HandleText(adminText("yes")))
	require.True(t, app.store.HasCategory("ebooks"))

	require.NoError(t, app.cbAdmin(adminCallback("admin:cat:confirm_del")))
	require.False(t, app.store.HasCategory("ebooks"))
}

func TestItemAddFlow(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.store.AddCategory("ebooks"))
	asset := testAsset(t)

	require.NoError(t, app.cbAdmin(adminCallback("admin:item:add")))
	require.NoError(t, app.HandleText(adminText("bk1")))
	require.NoError(t, app.HandleText(adminText("Guide")))

	err := app.HandleText(adminText("free"))
	require.True(t, shoperr.IsCode(err, shoperr.InvalidPrice))
	require.Equal(t, session.AwaitingItemPrice, app.sessions.Get(testAdminID).Step)

	require.NoError(t, app.HandleText(adminText("0.0001")))
	require.NoError(t, app.HandleText(adminText(asset)))
	require.Equal(t, session.AwaitingItemCategoryChoice, app.sessions.Get(testAdminID).Step)

	require.NoError(t, app.cbAdmin(adminCallback("admin:assign_cat:ebooks")))

	item, err := app.store.Item("bk1")
	require.NoError(t, err)
	require.Equal(t, "Guide", item.Name)
	require.Equal(t, 0.0001, item.PriceBTC)
	keys, err := app.store.ItemsIn("ebooks")
	require.NoError(t, err)
	require.Equal(t, []string{"bk1"}, keys)
}

func TestItemEditFlow(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.store.AddCategory("ebooks"))
	asset := testAsset(t)
	require.NoError(t, app.store.AddItem("bk1", "Guide", 0.0001, asset, "ebooks"))

	require.NoError(t, app.cbAdmin(adminCallback("admin:item:edit")))
	require.NoError(t, app.HandleText(adminText("bk1")))
	require.NoError(t, app.cbAdmin(adminCallback("admin:item:field:name")))
	require.NoError(t, app.HandleText(adminText("Better Guide")))

	item, err := app.store.Item("bk1")
	require.NoError(t, err)
	require.Equal(t, "Better Guide", item.Name)
	require.Equal(t, session.Idle, app.sessions.Get(testAdminID).Step)
}

func TestStaleFieldButtonAborts(t *testing.T) {
	app := newTestApp(t)

	err := app.cbAdmin(adminCallback("admin:item:field:name"))
	require.True(t, shoperr.IsCode(err, shoperr.MalformedRequest))
	require.Equal(t, session.Idle, app.sessions.Get(testAdminID).Step)
}

func TestCancelMidFlow(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.cbAdmin(adminCallback("admin:item:add")))
	require.True(t, app.InProgress(testAdminID))

	c := adminText("")
	require.NoError(t, app.handleCancel(c))
	require.False(t, app.InProgress(testAdminID))
	require.Equal(t, []string{"Cancelled."}, c.sent)
}
