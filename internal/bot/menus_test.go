package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/internal/command"
)

func payloadRows(m *tele.ReplyMarkup) [][]string {
	rows := make([][]string, 0, len(m.InlineKeyboard))
	for _, row := range m.InlineKeyboard {
		data := make([]string, 0, len(row))
		for _, btn := range row {
			data = append(data, btn.Data)
		}
		rows = append(rows, data)
	}
	return rows
}

// Every payload emitted by a menu must decode; a button that produces
// MALFORMED_REQUEST on press is a wiring bug.
func TestMenuPayloadsDecode(t *testing.T) {
	var checked int
	for _, m := range []struct {
		name string
		rows [][]string
	}{
		{"categories", payloadRows(categoriesMarkup([]string{"ebooks", "videos"}, true))},
		{"adminMenu", payloadRows(adminMenuMarkup())},
		{"adminCategories", payloadRows(adminCategoriesMarkup())},
		{"adminItems", payloadRows(adminItemsMarkup())},
		{"assign", payloadRows(assignCategoryMarkup([]string{"ebooks"}))},
		{"fields", payloadRows(fieldChoiceMarkup([]string{"ebooks"}))},
		{"confirmCat", payloadRows(confirmCategoryDeleteMarkup())},
		{"confirmItem", payloadRows(confirmItemDeleteMarkup())},
		{"detail", payloadRows(itemDetailMarkup("bk1"))},
	} {
		for _, row := range m.rows {
			for _, data := range row {
				checked++
				_, err := command.Decode(data)
				require.NoError(t, err, "markup %s payload %q", m.name, data)
			}
		}
	}
	require.NotZero(t, checked)
}

func TestFormatBTC(t *testing.T) {
	require.Equal(t, "0.0001 BTC", formatBTC(0.0001))
	require.Equal(t, "0.5 BTC", formatBTC(0.5))
	require.Equal(t, "1 BTC", formatBTC(1))
	require.Equal(t, "0.00000001 BTC", formatBTC(1e-8))
}
