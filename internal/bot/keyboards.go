package bot

import (
	"strconv"

	"github.com/Lukazavrr/hotwheels-bot/internal/flow"
	"github.com/Lukazavrr/hotwheels-bot/internal/render"
	"github.com/Lukazavrr/hotwheels-bot/internal/store"
)

// itemButtonsPerRow is the width of the numbered selection grid.
const itemButtonsPerRow = 3

func mainMenu() *Markup {
	rows := make([][]string, 0, len(store.Categories)+1)
	for _, c := range store.Categories {
		rows = append(rows, []string{c.Label})
	}
	rows = append(rows, []string{btnCart, btnHelp})
	return &Markup{Reply: rows}
}

func contactMarkup() *Markup {
	return &Markup{
		Reply: [][]string{
			{"📱 Share contact"},
			{flow.CancelOrderText},
		},
		RequestContact: true,
	}
}

func categoriesMarkup() *Markup {
	rows := make([][]string, 0, len(store.Categories))
	for _, c := range store.Categories {
		rows = append(rows, []string{c.Picker})
	}
	return &Markup{Reply: rows}
}

// itemGrid builds the numbered selection buttons for a rendered category,
// three per row, with a menu row at the bottom.
func itemGrid(index []render.IndexEntry) *Markup {
	var rows [][]Button
	var row []Button
	for _, e := range index {
		row = append(row, Button{
			Text:   strconv.Itoa(e.Display),
			Action: actionItem,
			Data:   strconv.Itoa(e.Display),
		})
		if len(row) == itemButtonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []Button{{Text: "⬅️ Menu", Action: actionMenu}})
	return &Markup{Inline: rows}
}

func itemDetailMarkup(productID int64) *Markup {
	return &Markup{Inline: [][]Button{
		{{Text: "🛒 Add to cart", Action: actionAdd, Data: itoa64(productID)}},
		{
			{Text: "⬅️ Back to list", Action: actionList},
			{Text: "🏠 Menu", Action: actionMenu},
		},
	}}
}

func cartMarkup(entries []cartLine) *Markup {
	var rows [][]Button
	for _, e := range entries {
		rows = append(rows, []Button{{
			Text:   "❌ " + e.name,
			Action: actionRemove,
			Data:   itoa64(e.entryID),
		}})
	}
	rows = append(rows,
		[]Button{{Text: "🗑 Clear cart", Action: actionClear}},
		[]Button{{Text: "✅ Checkout", Action: actionCheckout}},
		[]Button{{Text: "🏠 Menu", Action: actionMenu}},
	)
	return &Markup{Inline: rows}
}

// markupFor translates a flow keyboard hint into concrete markup. Keep
// maps to nil so the transport leaves the current keyboard alone.
func markupFor(kb flow.Keyboard) *Markup {
	switch kb {
	case flow.KeyboardMain:
		return mainMenu()
	case flow.KeyboardContact:
		return contactMarkup()
	case flow.KeyboardCategories:
		return categoriesMarkup()
	case flow.KeyboardHidden:
		return &Markup{RemoveReply: true}
	default:
		return nil
	}
}
