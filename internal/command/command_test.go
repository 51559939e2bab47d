package command

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/shoperr"
)

func TestDecodeShopCommands(t *testing.T) {
	cases := []struct {
		payload string
		want    Command
	}{
		{NavCategories, Command{Kind: KindCategories}},
		{Category("ebooks"), Command{Kind: KindOpenCategory, Arg: "ebooks"}},
		{Item("bk1"), Command{Kind: KindShowItem, Arg: "bk1"}},
		{Buy("bk1"), Command{Kind: KindBuy, Arg: "bk1"}},
	}
	for _, tc := range cases {
		got, err := Decode(tc.payload)
		require.NoError(t, err, "payload %q", tc.payload)
		require.Equal(t, tc.want, got, "payload %q", tc.payload)
	}
}

func TestDecodeAdminCommands(t *testing.T) {
	cases := []struct {
		payload string
		want    Command
	}{
		{AdminMenu, Command{Kind: KindAdminMenu}},
		{AdminCategories, Command{Kind: KindAdminCategories}},
		{AdminItems, Command{Kind: KindAdminItems}},
		{AdminBack, Command{Kind: KindAdminBack}},
		{CategoryAdd, Command{Kind: KindCategoryAdd}},
		{CategoryEdit, Command{Kind: KindCategoryEdit}},
		{CategoryDelete, Command{Kind: KindCategoryDelete}},
		{CategoryConfirm, Command{Kind: KindCategoryConfirm}},
		{ItemAdd, Command{Kind: KindItemAdd}},
		{ItemEdit, Command{Kind: KindItemEdit}},
		{ItemDelete, Command{Kind: KindItemDelete}},
		{ItemConfirm, Command{Kind: KindItemConfirm}},
		{ItemNewCategory, Command{Kind: KindItemNewCategory}},
		{EditField("name"), Command{Kind: KindItemField, Arg: "name"}},
		{EditField("price_btc"), Command{Kind: KindItemField, Arg: "price_btc"}},
		{EditField("file_path"), Command{Kind: KindItemField, Arg: "file_path"}},
		{MoveTo("videos"), Command{Kind: KindItemMove, Arg: "videos"}},
		{AssignCategory("ebooks"), Command{Kind: KindItemAssignCat, Arg: "ebooks"}},
	}
	for _, tc := range cases {
		got, err := Decode(tc.payload)
		require.NoError(t, err, "payload %q", tc.payload)
		require.Equal(t, tc.want, got, "payload %q", tc.payload)
	}
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	bad := []string{
		"",
		"cat",
		"cat:",
		"cat:E Books",
		"cat:ebooks:extra",
		"item:BK1",
		"buy:",
		"nav:unknown",
		"admin",
		"admin:",
		"admin:cat",
		"admin:cat:unknown",
		"admin:item:field:owner",
		"admin:item:field:",
		"admin:item:move:",
		"admin:item:move:Bad Key",
		"admin:assign_cat:",
		"drop:table",
	}
	for _, payload := range bad {
		_, err := Decode(payload)
		require.True(t, shoperr.IsCode(err, shoperr.MalformedRequest), "payload %q", payload)
	}
}
