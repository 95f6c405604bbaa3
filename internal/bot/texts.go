package bot

import "strconv"

// Callback actions carried in inline button payloads.
const (
	actionItem     = "item"
	actionAdd      = "add"
	actionMenu     = "menu"
	actionList     = "list"
	actionRemove   = "rm"
	actionClear    = "clear"
	actionCheckout = "checkout"
)

// Main menu reply buttons that are not category labels.
const (
	btnCart = "🛒 Cart"
	btnHelp = "ℹ️ Help"
)

const (
	msgGreeting = "Welcome to the Hot Wheels shop! 🏎\n" +
		"Pick a category below to browse the catalog."
	msgMenu          = "Main menu:"
	msgUnknown       = "I did not get that. Use the menu buttons below 👇"
	msgInternal      = "Something went wrong 😢 Please try again later."
	msgEmptyCategory = "Nothing in this category yet, check back soon!"
	msgCartEmpty     = "Your cart is empty 🛒"
	msgNotOperator   = "This command is for the shop operator only."
	msgStaleMenu     = "That menu is out of date, open the category again."
	msgAddedToCart   = "Added to cart ✅"
	msgAlreadyIn     = "Already in your cart"
	msgRemoved       = "Removed"
	msgCartCleared   = "Cart cleared"
)

func itoa64(v int64) string {
	return strconv.FormatInt(v, 10)
}
