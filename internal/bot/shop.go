package bot

import (
	"fmt"
	"io"
	"path/filepath"

	"log/slog"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/callbacks"
	"github.com/m3rciful/shopbot/core/telegram/format"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/command"
	"github.com/m3rciful/shopbot/internal/payments"

	tele "gopkg.in/telebot.v4"
)

func (a *App) handleStart(c tele.Context) error {
	return a.showCategories(c, false)
}

func (a *App) showCategories(c tele.Context, edit bool) error {
	cats := a.store.Categories()
	markup := categoriesMarkup(cats, a.isAdmin(c))
	if len(cats) == 0 && !a.isAdmin(c) {
		if edit {
			return tghelpers.EditOrSendMD(c, emptyShopText)
		}
		return tghelpers.SendText(c, emptyShopText)
	}
	if edit {
		return tghelpers.EditOrSendMD(c, categoriesText, markup)
	}
	return tghelpers.SendMD(c, welcomeText, markup)
}

func (a *App) cbNav(c tele.Context) error {
	cmd, err := command.Decode(callbacks.Data(c))
	if err != nil {
		return err
	}
	if cmd.Kind != command.KindCategories {
		return nil
	}
	return a.showCategories(c, true)
}

func (a *App) cbCategory(c tele.Context) error {
	cmd, err := command.Decode(callbacks.Data(c))
	if err != nil {
		return err
	}
	keys, err := a.store.ItemsIn(cmd.Arg)
	if err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		_ = a.showCategories(c, false)
		return err
	}
	if len(keys) == 0 {
		return tghelpers.EditOrSendMD(c,
			fmt.Sprintf("*%s* has no items yet.", format.EscapeMarkdown(cmd.Arg)),
			itemsMarkup(a.store, nil))
	}
	return tghelpers.EditOrSendMD(c,
		fmt.Sprintf("Items in *%s*:", format.EscapeMarkdown(cmd.Arg)),
		itemsMarkup(a.store, keys))
}

func (a *App) cbItem(c tele.Context) error {
	cmd, err := command.Decode(callbacks.Data(c))
	if err != nil {
		return err
	}
	item, err := a.store.Item(cmd.Arg)
	if err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		_ = a.showCategories(c, false)
		return err
	}
	return tghelpers.EditOrSendMD(c, itemDetailText(cmd.Arg, item), itemDetailMarkup(cmd.Arg))
}

func (a *App) cbBuy(c tele.Context) error {
	cmd, err := command.Decode(callbacks.Data(c))
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	sess := a.sessions.Get(c.Sender().ID)

	intent, err := a.payments.Create(ctx, sess, cmd.Arg)
	if err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}

	item, _ := a.store.Item(cmd.Arg)
	text := fmt.Sprintf(
		"To buy *%s*, send exactly `%s` to this address:\n\n`%s`\n\nOnce you have paid, press /confirm to receive your file.",
		format.EscapeMarkdown(item.Name), formatBTC(intent.AmountBTC), intent.Address,
	)
	return tghelpers.SendMD(c, text)
}

func (a *App) handleConfirm(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sess := a.sessions.Get(c.Sender().ID)

	res, err := a.payments.Confirm(ctx, sess, func(item catalog.Item, asset io.ReadCloser) error {
		doc := &tele.Document{
			File:     tele.FromReader(asset),
			FileName: filepath.Base(item.FilePath),
			Caption:  fmt.Sprintf("Here is your %s. Thank you!", item.Name),
		}
		// Sent synchronously: Confirm clears the intent only after this
		// send returns without error.
		return c.Send(doc)
	})
	if err != nil {
		_ = tghelpers.SendText(c, userMessage(err))
		return err
	}

	if res.Outcome == payments.OutcomeInsufficient {
		logger.Info(ctx, "svc.shop", "purchase.pending",
			slog.String("item_key", sess.Intent().ItemKey),
			slog.Float64("amount_btc", res.AmountBTC),
			slog.Float64("received_btc", res.ReceivedBTC),
		)
		return tghelpers.SendMD(c, fmt.Sprintf(
			"Payment not complete yet: received `%s` of `%s`.\nSend the remainder and press /confirm again.",
			formatBTC(res.ReceivedBTC), formatBTC(res.AmountBTC),
		))
	}

	logger.Info(ctx, "svc.shop", "purchase.fulfilled",
		slog.Float64("amount_btc", res.AmountBTC),
		slog.Float64("received_btc", res.ReceivedBTC),
	)
	return tghelpers.SendText(c, "Payment received in full. Enjoy!")
}

func (a *App) handleCancel(c tele.Context) error {
	if a.sessions.Cancel(c.Sender().ID) {
		return tghelpers.SendText(c, "Cancelled.")
	}
	return tghelpers.SendText(c, "Nothing to cancel.")
}
