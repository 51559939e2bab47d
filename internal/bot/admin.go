package bot

import (
	"fmt"

	"log/slog"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/callbacks"
	"github.com/m3rciful/shopbot/core/telegram/format"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/internal/command"
	"github.com/m3rciful/shopbot/internal/session"
	"github.com/m3rciful/shopbot/internal/shoperr"

	tele "gopkg.in/telebot.v4"
)

func (a *App) handleAdmin(c tele.Context) error {
	return tghelpers.SendMD(c, adminMenuText, adminMenuMarkup())
}

// cbAdmin dispatches every "admin:" callback. All of them are gated on the
// configured admin user, no matter how the button got into the chat.
func (a *App) cbAdmin(c tele.Context) error {
	if !a.isAdmin(c) {
		err := shoperr.New(shoperr.Unauthorized, "user %d is not the shop admin", c.Sender().ID)
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}

	cmd, err := command.Decode(callbacks.Data(c))
	if err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}

	sess := a.sessions.Get(c.Sender().ID)

	switch cmd.Kind {
	case command.KindAdminMenu, command.KindAdminBack:
		sess.ResetFlow()
		return tghelpers.EditOrSendMD(c, adminMenuText, adminMenuMarkup())

	case command.KindAdminCategories:
		sess.ResetFlow()
		return tghelpers.EditOrSendMD(c, adminCatsText, adminCategoriesMarkup())

	case command.KindAdminItems:
		sess.ResetFlow()
		return tghelpers.EditOrSendMD(c, adminItemsText, adminItemsMarkup())

	case command.KindCategoryAdd:
		sess.ResetFlow()
		sess.Step = session.AwaitingCategoryKey
		return tghelpers.SendText(c, "Send a key for the new category (lowercase letters and digits only).")

	case command.KindCategoryEdit:
		sess.ResetFlow()
		sess.Step = session.AwaitingCategoryRenameKey
		return tghelpers.SendText(c, "Send the current key and the new key, separated by a space.")

	case command.KindCategoryDelete:
		sess.ResetFlow()
		sess.Step = session.AwaitingCategoryDeleteConfirm
		return tghelpers.SendText(c, "Send the key of the category to delete.")

	case command.KindCategoryConfirm:
		return a.confirmCategoryDelete(c, sess)

	case command.KindItemAdd:
		sess.ResetFlow()
		sess.Step = session.AwaitingItemKey
		return tghelpers.SendText(c, "Send a key for the new item (lowercase letters and digits only).")

	case command.KindItemEdit:
		sess.ResetFlow()
		sess.Step = session.AwaitingItemFieldChoice
		return tghelpers.SendText(c, "Send the key of the item to edit.")

	case command.KindItemDelete:
		sess.ResetFlow()
		sess.Step = session.AwaitingItemDeleteConfirm
		return tghelpers.SendText(c, "Send the key of the item to delete.")

	case command.KindItemConfirm:
		return a.confirmItemDelete(c, sess)

	case command.KindItemField:
		if sess.Step != session.AwaitingItemFieldChoice || sess.EditItem == "" {
			return a.abortFlow(c, sess, "no item selected for editing")
		}
		sess.EditField = cmd.Arg
		sess.Step = session.AwaitingItemFieldValue
		return tghelpers.SendText(c, fieldPrompt(cmd.Arg))

	case command.KindItemMove:
		if sess.Step != session.AwaitingItemFieldChoice || sess.EditItem == "" {
			return a.abortFlow(c, sess, "no item selected for moving")
		}
		if err := a.store.MoveItem(sess.EditItem, cmd.Arg); err != nil {
			_ = tghelpers.SendText(c, userMessage(err))
			return err
		}
		moved := sess.EditItem
		sess.ResetFlow()
		return tghelpers.SendMD(c,
			fmt.Sprintf("Moved `%s` to *%s*.", moved, format.EscapeMarkdown(cmd.Arg)),
			adminItemsMarkup())

	case command.KindItemAssignCat:
		return a.assignItemCategory(c, sess, cmd.Arg)

	case command.KindItemNewCategory:
		if sess.Step != session.AwaitingItemCategoryChoice {
			return a.abortFlow(c, sess, "no item draft in progress")
		}
		sess.Step = session.AwaitingCategoryKey
		return tghelpers.SendText(c, "Send a key for the new category (lowercase letters and digits only).")
	}

	return nil
}

// abortFlow handles a callback that does not fit the current dialog state,
// usually a stale button from an earlier message.
func (a *App) abortFlow(c tele.Context, sess *session.Session, why string) error {
	err := shoperr.New(shoperr.MalformedRequest, "%s", why)
	sess.ResetFlow()
	_ = tghelpers.SendText(c, userMessage(err))
	return err
}

func (a *App) confirmCategoryDelete(c tele.Context, sess *session.Session) error {
	if sess.Step != session.AwaitingCategoryDeleteConfirm || sess.EditCategory == "" {
		return a.abortFlow(c, sess, "no category selected for deletion")
	}
	if err := a.store.DeleteCategory(sess.EditCategory); err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}
	deleted := sess.EditCategory
	sess.ResetFlow()
	logger.Info(tghelpers.BuildContext(c), "svc.admin", "category.deleted",
		slog.String("category", deleted),
	)
	return tghelpers.SendMD(c,
		fmt.Sprintf("Category *%s* deleted. Its items are kept and can be reassigned.",
			format.EscapeMarkdown(deleted)),
		adminCategoriesMarkup())
}

func (a *App) confirmItemDelete(c tele.Context, sess *session.Session) error {
	if sess.Step != session.AwaitingItemDeleteConfirm || sess.EditItem == "" {
		return a.abortFlow(c, sess, "no item selected for deletion")
	}
	if err := a.store.DeleteItem(sess.EditItem); err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}
	deleted := sess.EditItem
	sess.ResetFlow()
	logger.Info(tghelpers.BuildContext(c), "svc.admin", "item.deleted",
		slog.String("item_key", deleted),
	)
	return tghelpers.SendMD(c,
		fmt.Sprintf("Item `%s` deleted.", deleted),
		adminItemsMarkup())
}

func (a *App) assignItemCategory(c tele.Context, sess *session.Session, category string) error {
	if sess.Step != session.AwaitingItemCategoryChoice || sess.Draft.Key == "" {
		return a.abortFlow(c, sess, "no item draft in progress")
	}
	draft := sess.Draft
	if err := a.store.AddItem(draft.Key, draft.Name, draft.PriceBTC, draft.FilePath, category); err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		if shoperr.IsCode(err, shoperr.NotFound) {
			// The target category vanished mid-flow; offer the rest again.
			_ = tghelpers.SendMD(c, "Pick a category for the item:", assignCategoryMarkup(a.store.Categories()))
		}
		return err
	}
	sess.ResetFlow()
	return tghelpers.SendMD(c,
		fmt.Sprintf("Item `%s` added to *%s*.", draft.Key, format.EscapeMarkdown(category)),
		adminItemsMarkup())
}

func fieldPrompt(field string) string {
	switch field {
	case "name":
		return "Send the new name."
	case "price_btc":
		return "Send the new price in BTC, e.g. 0.0005."
	case "file_path":
		return "Send the new file path of the deliverable."
	}
	return "Send the new value."
}
