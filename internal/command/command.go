// Package command decodes callback payloads into typed commands. Payloads are
// colon-delimited tokens produced by the keyboards in internal/bot; anything
// that does not match the grammar is rejected before a handler runs.
package command

import (
	"strings"

	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

// Kind names a decoded command variant.
type Kind string

const (
	// Shop surface.
	KindCategories   Kind = "categories"
	KindOpenCategory Kind = "open_category"
	KindShowItem     Kind = "show_item"
	KindBuy          Kind = "buy"

	// Admin surface.
	KindAdminMenu       Kind = "admin_menu"
	KindAdminCategories Kind = "admin_categories"
	KindAdminItems      Kind = "admin_items"
	KindCategoryAdd     Kind = "category_add"
	KindCategoryEdit    Kind = "category_edit"
	KindCategoryDelete  Kind = "category_delete"
	KindCategoryConfirm Kind = "category_confirm_delete"
	KindItemAdd         Kind = "item_add"
	KindItemEdit        Kind = "item_edit"
	KindItemDelete      Kind = "item_delete"
	KindItemConfirm     Kind = "item_confirm_delete"
	KindItemField       Kind = "item_field"
	KindItemMove        Kind = "item_move"
	KindItemAssignCat   Kind = "item_assign_category"
	KindItemNewCategory Kind = "item_new_category"
	KindAdminBack       Kind = "admin_back"
)

// Command is one decoded callback action. Arg carries the single payload
// argument a variant needs: a category key, an item key, or a field name.
type Command struct {
	Kind Kind
	Arg  string
}

// Payload builders keep the encode side next to the decode side so the
// grammar lives in one file.

func Category(key string) string       { return "cat:" + key }
func Item(key string) string           { return "item:" + key }
func Buy(key string) string            { return "buy:" + key }
func AssignCategory(key string) string { return "admin:assign_cat:" + key }
func MoveTo(key string) string         { return "admin:item:move:" + key }
func EditField(field string) string    { return "admin:item:field:" + field }

const (
	NavCategories   = "nav:categories"
	AdminMenu       = "admin:menu"
	AdminCategories = "admin:categories"
	AdminItems      = "admin:items"
	AdminBack       = "admin:back"

	CategoryAdd     = "admin:cat:add"
	CategoryEdit    = "admin:cat:edit"
	CategoryDelete  = "admin:cat:del"
	CategoryConfirm = "admin:cat:confirm_del"

	ItemAdd         = "admin:item:add"
	ItemEdit        = "admin:item:edit"
	ItemDelete      = "admin:item:del"
	ItemConfirm     = "admin:item:confirm_del"
	ItemNewCategory = "admin:item:new_cat"
)

func malformed(payload string) error {
	return shoperr.New(shoperr.MalformedRequest, "unrecognized callback %q", payload)
}

// Decode parses a raw callback payload. Unknown verbs, wrong token counts and
// argument keys that fail key validation all come back as MALFORMED_REQUEST;
// whether the referenced entity still exists is the handler's concern.
func Decode(payload string) (Command, error) {
	switch payload {
	case NavCategories:
		return Command{Kind: KindCategories}, nil
	case AdminMenu:
		return Command{Kind: KindAdminMenu}, nil
	case AdminCategories:
		return Command{Kind: KindAdminCategories}, nil
	case AdminItems:
		return Command{Kind: KindAdminItems}, nil
	case AdminBack:
		return Command{Kind: KindAdminBack}, nil
	case CategoryAdd:
		return Command{Kind: KindCategoryAdd}, nil
	case CategoryEdit:
		return Command{Kind: KindCategoryEdit}, nil
	case CategoryDelete:
		return Command{Kind: KindCategoryDelete}, nil
	case CategoryConfirm:
		return Command{Kind: KindCategoryConfirm}, nil
	case ItemAdd:
		return Command{Kind: KindItemAdd}, nil
	case ItemEdit:
		return Command{Kind: KindItemEdit}, nil
	case ItemDelete:
		return Command{Kind: KindItemDelete}, nil
	case ItemConfirm:
		return Command{Kind: KindItemConfirm}, nil
	case ItemNewCategory:
		return Command{Kind: KindItemNewCategory}, nil
	}

	verb, arg, ok := strings.Cut(payload, ":")
	if !ok || arg == "" {
		return Command{}, malformed(payload)
	}

	switch verb {
	case "cat":
		return keyed(KindOpenCategory, arg, payload)
	case "item":
		return keyed(KindShowItem, arg, payload)
	case "buy":
		return keyed(KindBuy, arg, payload)
	case "admin":
		return decodeAdmin(arg, payload)
	}
	return Command{}, malformed(payload)
}

func decodeAdmin(rest, payload string) (Command, error) {
	verb, arg, ok := strings.Cut(rest, ":")
	if !ok || arg == "" {
		return Command{}, malformed(payload)
	}
	switch verb {
	case "assign_cat":
		return keyed(KindItemAssignCat, arg, payload)
	case "item":
		sub, val, ok := strings.Cut(arg, ":")
		if !ok || val == "" {
			return Command{}, malformed(payload)
		}
		switch sub {
		case "field":
			switch val {
			case catalog.FieldName, catalog.FieldPrice, catalog.FieldPath:
				return Command{Kind: KindItemField, Arg: val}, nil
			}
			return Command{}, malformed(payload)
		case "move":
			return keyed(KindItemMove, val, payload)
		}
	}
	return Command{}, malformed(payload)
}

func keyed(kind Kind, key, payload string) (Command, error) {
	if !catalog.ValidKey(key) {
		return Command{}, malformed(payload)
	}
	return Command{Kind: kind, Arg: key}, nil
}
