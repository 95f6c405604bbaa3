package store

// Category is one of the fixed storefront categories. Key is the stable
// identifier stored on products; Label is the menu button text; Picker is
// the label offered during catalog administration.
type Category struct {
	Key    string
	Label  string
	Picker string
}

// Categories is the closed set of storefront categories, in menu order.
var Categories = []Category{
	{Key: "main", Label: "🏎 Mainline", Picker: "Mainline (main)"},
	{Key: "special", Label: "🚗 Special Series", Picker: "Special Series (special)"},
	{Key: "premium", Label: "🏁 Premium", Picker: "Premium (premium)"},
	{Key: "zamak", Label: "🔮 Zamac", Picker: "Zamac (zamak)"},
	{Key: "team_transport", Label: "🚚 Team Transport", Picker: "Team Transport (team_transport)"},
}

// CategoryByLabel resolves a menu button label to a category.
func CategoryByLabel(label string) (Category, bool) {
	for _, c := range Categories {
		if c.Label == label {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryByKey resolves a stable category key.
func CategoryByKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryByPicker resolves an admin picker label. The bare key is also
// accepted so typed input still matches.
func CategoryByPicker(input string) (Category, bool) {
	for _, c := range Categories {
		if c.Picker == input || c.Key == input {
			return c, true
		}
	}
	return Category{}, false
}
