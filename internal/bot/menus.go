package bot

import (
	"fmt"
	"strings"

	"github.com/m3rciful/shopbot/core/telegram/format"
	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/command"

	tele "gopkg.in/telebot.v4"
)

const (
	welcomeText      = "Welcome to the shop! Pick a category:"
	emptyShopText    = "The shop is empty right now. Check back later."
	categoriesText   = "Categories:"
	adminMenuText    = "Admin panel. What do you want to manage?"
	adminCatsText    = "Category management:"
	adminItemsText   = "Item management:"
	unknownTextReply = "I did not get that. Use /start to browse the shop."
)

func categoriesMarkup(cats []string, admin bool) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(cats))
	for _, cat := range cats {
		buttons = append(buttons, keyboard.InlineBtn{Text: cat, Data: command.Category(cat)})
	}
	markup := keyboard.InlineButtonsNPerRow(buttons, 2)
	if admin {
		adminRow := keyboard.InlineButtons([]keyboard.InlineBtn{
			{Text: "⚙️ Admin panel", Data: command.AdminMenu},
		})
		markup.InlineKeyboard = append(markup.InlineKeyboard, adminRow.InlineKeyboard...)
	}
	return markup
}

func itemsMarkup(store *catalog.Store, keys []string) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(keys)+1)
	for _, key := range keys {
		label := key
		if item, err := store.Item(key); err == nil {
			label = fmt.Sprintf("%s — %s", item.Name, formatBTC(item.PriceBTC))
		}
		buttons = append(buttons, keyboard.InlineBtn{Text: label, Data: command.Item(key)})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "« Back", Data: command.NavCategories})
	return keyboard.InlineButtons(buttons)
}

func itemDetailText(key string, item catalog.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", format.EscapeMarkdown(item.Name))
	fmt.Fprintf(&b, "Key: `%s`\n", key)
	fmt.Fprintf(&b, "Price: %s", formatBTC(item.PriceBTC))
	return b.String()
}

func itemDetailMarkup(key string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "💰 Buy", Data: command.Buy(key)},
		{Text: "« Back", Data: command.NavCategories},
	})
}

func adminMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "📁 Categories", Data: command.AdminCategories},
		{Text: "📦 Items", Data: command.AdminItems},
	})
}

func adminCategoriesMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "➕ Add", Data: command.CategoryAdd},
			{Text: "✏️ Rename", Data: command.CategoryEdit},
			{Text: "🗑 Delete", Data: command.CategoryDelete},
		},
		[]keyboard.InlineBtn{
			{Text: "« Back", Data: command.AdminBack},
		},
	)
}

func adminItemsMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "➕ Add", Data: command.ItemAdd},
			{Text: "✏️ Edit", Data: command.ItemEdit},
			{Text: "🗑 Delete", Data: command.ItemDelete},
		},
		[]keyboard.InlineBtn{
			{Text: "« Back", Data: command.AdminBack},
		},
	)
}

// assignCategoryMarkup lists target categories for a freshly drafted item,
// plus the option to create a category on the spot.
func assignCategoryMarkup(cats []string) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(cats)+1)
	for _, cat := range cats {
		buttons = append(buttons, keyboard.InlineBtn{Text: cat, Data: command.AssignCategory(cat)})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "➕ New category", Data: command.ItemNewCategory})
	return keyboard.InlineButtons(buttons)
}

// fieldChoiceMarkup offers the editable fields of an item and move targets.
func fieldChoiceMarkup(cats []string) *tele.ReplyMarkup {
	rows := [][]keyboard.InlineBtn{
		{
			{Text: "Name", Data: command.EditField(catalog.FieldName)},
			{Text: "Price", Data: command.EditField(catalog.FieldPrice)},
			{Text: "File", Data: command.EditField(catalog.FieldPath)},
		},
	}
	for _, cat := range cats {
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "→ " + cat, Data: command.MoveTo(cat)},
		})
	}
	rows = append(rows, []keyboard.InlineBtn{
		{Text: "« Back", Data: command.AdminItems},
	})
	return keyboard.InlineButtonsRows(rows...)
}

func confirmCategoryDeleteMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "✅ Yes, delete", Data: command.CategoryConfirm},
		{Text: "« Cancel", Data: command.AdminCategories},
	})
}

func confirmItemDeleteMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "✅ Yes, delete", Data: command.ItemConfirm},
		{Text: "« Cancel", Data: command.AdminItems},
	})
}

func formatBTC(v float64) string {
	s := strings.TrimRight(fmt.Sprintf("%.8f", v), "0")
	s = strings.TrimRight(s, ".")
	return s + " BTC"
}
