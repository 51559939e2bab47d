package bot

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/m3rciful/shopbot/core/telegram/format"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/session"
	"github.com/m3rciful/shopbot/internal/shoperr"

	tele "gopkg.in/telebot.v4"
)

// HandleText advances the admin dialog with the user's message. A failed step
// keeps the session where it was so the admin can simply try again; only
// unauthorized or unintelligible input abandons the dialog.
func (a *App) HandleText(c tele.Context) error {
	sess := a.sessions.Get(c.Sender().ID)
	if !a.isAdmin(c) {
		err := shoperr.New(shoperr.Unauthorized, "user %d is not the shop admin", c.Sender().ID)
		sess.ResetFlow()
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}

	text := strings.TrimSpace(c.Text())

	switch sess.Step {
	case session.AwaitingCategoryKey:
		return a.stepCategoryKey(c, sess, text)
	case session.AwaitingCategoryRenameKey:
		return a.stepCategoryRename(c, sess, text)
	case session.AwaitingCategoryDeleteConfirm:
		return a.stepCategoryDeleteKey(c, sess, text)
	case session.AwaitingItemKey:
		return a.stepItemKey(c, sess, text)
	case session.AwaitingItemName:
		sess.Draft.Name = text
		sess.Step = session.AwaitingItemPrice
		return tghelpers.SendText(c, "Send the price in BTC, e.g. 0.0005.")
	case session.AwaitingItemPrice:
		return a.stepItemPrice(c, sess, text)
	case session.AwaitingItemPath:
		return a.stepItemPath(c, sess, text)
	case session.AwaitingItemCategoryChoice:
		return tghelpers.SendText(c, "Use the buttons above to pick a category.")
	case session.AwaitingItemFieldChoice:
		return a.stepItemEditKey(c, sess, text)
	case session.AwaitingItemFieldValue:
		return a.stepItemFieldValue(c, sess, text)
	case session.AwaitingItemDeleteConfirm:
		return a.stepItemDeleteKey(c, sess, text)
	}
	return nil
}

// stepCategoryKey creates a category. When an item draft is pending the new
// category immediately receives the drafted item as well.
func (a *App) stepCategoryKey(c tele.Context, sess *session.Session, key string) error {
	if err := a.store.AddCategory(key); err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}
	if sess.Draft.Key != "" {
		draft := sess.Draft
		if err := a.store.AddItem(draft.Key, draft.Name, draft.PriceBTC, draft.FilePath, key); err != nil {
			_ = tghelpers.SendText(c, userMessage(err))
			return err
		}
		sess.ResetFlow()
		return tghelpers.SendMD(c,
			fmt.Sprintf("Category *%s* created and item `%s` added to it.",
				format.EscapeMarkdown(key), draft.Key),
			adminItemsMarkup())
	}
	sess.ResetFlow()
	return tghelpers.SendMD(c,
		fmt.Sprintf("Category *%s* created.", format.EscapeMarkdown(key)),
		adminCategoriesMarkup())
}

func (a *App) stepCategoryRename(c tele.Context, sess *session.Session, text string) error {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		err := shoperr.New(shoperr.MalformedRequest, "rename expects two keys, got %q", text)
		sess.ResetFlow()
		_ = tghelpers.SendText(c, "Expected two keys separated by a space. Start over from the admin panel.")
		return err
	}
	oldKey, newKey := fields[0], fields[1]
	if err := a.store.RenameCategory(oldKey, newKey); err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}
	sess.ResetFlow()
	return tghelpers.SendMD(c,
		fmt.Sprintf("Category *%s* renamed to *%s*.",
			format.EscapeMarkdown(oldKey), format.EscapeMarkdown(newKey)),
		adminCategoriesMarkup())
}

func (a *App) stepCategoryDeleteKey(c tele.Context, sess *session.Session, key string) error {
	if sess.EditCategory != "" {
		return tghelpers.SendText(c, "Use the buttons above to confirm or cancel.")
	}
	if !a.store.HasCategory(key) {
		err := shoperr.New(shoperr.NotFound, "category %q not found", key)
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}
	sess.EditCategory = key
	return tghelpers.SendMD(c,
		fmt.Sprintf("Delete category *%s*? Its items are kept and become unlisted.",
			format.EscapeMarkdown(key)),
		confirmCategoryDeleteMarkup())
}

func (a *App) stepItemKey(c tele.Context, sess *session.Session, key string) error {
	if !catalog.ValidKey(key) {
		err := shoperr.New(shoperr.InvalidKey, "item key %q invalid", key)
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}
	if _, err := a.store.Item(key); err == nil {
		dup := shoperr.New(shoperr.DuplicateKey, "item %q already exists", key)
		_ = tghelpers.SendText(c, userMessage(dup))
		return dup
	}
	sess.Draft.Key = key
	sess.Step = session.AwaitingItemName
	return tghelpers.SendText(c, "Send the item name.")
}

func (a *App) stepItemPrice(c tele.Context, sess *session.Session, text string) error {
	price, err := strconv.ParseFloat(text, 64)
	if err != nil || price <= 0 {
		coded := shoperr.New(shoperr.InvalidPrice, "price must be a positive number, got %q", text)
		_ = tghelpers.SendText(c, userMessage(coded))
		return coded
	}
	sess.Draft.PriceBTC = price
	sess.Step = session.AwaitingItemPath
	return tghelpers.SendText(c, "Send the file path of the deliverable, e.g. items/guide.pdf.")
}

func (a *App) stepItemPath(c tele.Context, sess *session.Session, path string) error {
	// The store re-checks on commit; this early check fails before the
	// category prompt.
	if _, err := os.Stat(path); err != nil {
		coded := shoperr.Wrap(shoperr.AssetMissing, err, "asset %q not found", path)
		_ = tghelpers.SendText(c, userMessage(coded))
		return coded
	}
	sess.Draft.FilePath = path
	sess.Step = session.AwaitingItemCategoryChoice
	return tghelpers.SendMD(c, "Pick a category for the item:", assignCategoryMarkup(a.store.Categories()))
}

func (a *App) stepItemEditKey(c tele.Context, sess *session.Session, key string) error {
	if sess.EditItem != "" {
		return tghelpers.SendText(c, "Use the buttons above to pick what to change.")
	}
	if _, err := a.store.Item(key); err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}
	sess.EditItem = key
	return tghelpers.SendMD(c,
		fmt.Sprintf("What do you want to change on `%s`?", key),
		fieldChoiceMarkup(a.store.Categories()))
}

func (a *App) stepItemFieldValue(c tele.Context, sess *session.Session, value string) error {
	if err := a.store.EditItemField(sess.EditItem, sess.EditField, value); err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}
	edited := sess.EditItem
	sess.ResetFlow()
	return tghelpers.SendMD(c,
		fmt.Sprintf("Item `%s` updated.", edited),
		adminItemsMarkup())
}

func (a *App) stepItemDeleteKey(c tele.Context, sess *session.Session, key string) error {
	if sess.EditItem != "" {
		return tghelpers.SendText(c, "Use the buttons above to confirm or cancel.")
	}
	if _, err := a.store.Item(key); err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}
	sess.EditItem = key
	return tghelpers.SendMD(c,
		fmt.Sprintf("Delete item `%s`? This cannot be undone.", key),
		confirmItemDeleteMarkup())
}
