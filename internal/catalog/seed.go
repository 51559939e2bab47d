package catalog

// DefaultCategories and DefaultItems describe the starter catalog written on
// first run so the shop renders something before the admin adds real goods.

// DefaultCategories maps starter category keys to their item keys.
func DefaultCategories() map[string][]string {
	return map[string][]string{
		"ebooks":   {"guide", "recipes"},
		"software": {"toolkit"},
	}
}

// DefaultItems returns the starter item table.
func DefaultItems() map[string]Item {
	return map[string]Item{
		"guide": {
			Name:     "Getting Started Guide",
			PriceBTC: 0.0001,
			FilePath: "items/guide.pdf",
		},
		"recipes": {
			Name:     "Recipe Collection",
			PriceBTC: 0.0002,
			FilePath: "items/recipes.pdf",
		},
		"toolkit": {
			Name:     "Utility Toolkit",
			PriceBTC: 0.0005,
			FilePath: "items/toolkit.zip",
		},
	}
}
