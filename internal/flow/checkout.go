package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CancelOrderText is the reply-keyboard button that aborts a checkout.
const CancelOrderText = "Cancel order"

const (
	msgAskContact = "To place the order we need your contact details.\n" +
		"Please send your handle (@username) or phone number:"
	msgAskPayment   = "Now tell us your preferred payment method (card, cash, ...):"
	msgCartEmpty    = "Your cart is empty 🛒"
	msgOrderCancel  = "Checkout cancelled"
	msgStoreRetry   = "Something went wrong 😢 Please try again later."
	msgContactAgain = "Please send a contact or type your handle/phone:"
)

// StartCheckout enters the checkout flow. The cart is checked up front so
// an empty cart never starts a flow.
func (e *Engine) StartCheckout(ctx context.Context, userID int64) Outcome {
	entries, err := e.store.ListCart(userID)
	if err != nil {
		e.obs.Log().Error().Int("user", int(userID)).Err(err).Msg("failed to read cart at checkout start")
		return Outcome{Replies: []Reply{reply(msgStoreRetry, KeyboardMain)}}
	}
	if len(entries) == 0 {
		return Outcome{Replies: []Reply{reply(msgCartEmpty, KeyboardMain)}}
	}
	return Outcome{
		Next:    &Checkout{Stage: StageContact},
		Replies: []Reply{reply(msgAskContact, KeyboardContact)},
	}
}

// AdvanceCheckout handles one input while a checkout is active. userTag is
// the sender's public handle, used in the operator notification.
func (e *Engine) AdvanceCheckout(ctx context.Context, userID int64, userTag string, c *Checkout, in Input) Outcome {
	if in.Text == CancelOrderText {
		return Outcome{Replies: []Reply{reply(msgOrderCancel, KeyboardMain)}}
	}

	switch c.Stage {
	case StageContact:
		contact := in.Contact
		if contact == "" {
			contact = strings.TrimSpace(in.Text)
		}
		if contact == "" {
			// Validation failure: re-prompt, no state advance.
			return Outcome{Next: c, Replies: []Reply{reply(msgContactAgain, KeyboardContact)}}
		}
		return Outcome{
			Next:    &Checkout{Stage: StagePayment, Contact: contact},
			Replies: []Reply{reply(msgAskPayment, KeyboardHidden)},
		}

	case StagePayment:
		payment := strings.TrimSpace(in.Text)
		if payment == "" {
			return Outcome{Next: c, Replies: []Reply{reply(msgAskPayment, KeyboardKeep)}}
		}
		return e.completeCheckout(ctx, userID, userTag, c.Contact, payment)
	}

	return Outcome{Next: c}
}

// completeCheckout re-reads the cart (never a stale snapshot: time has
// passed since the flow started), totals it, clears it and produces the
// confirmation plus the operator notification.
func (e *Engine) completeCheckout(ctx context.Context, userID int64, userTag, contact, payment string) Outcome {
	_, span := e.obs.StartSpan(ctx, "CompleteCheckout")
	defer span.End()

	entries, err := e.store.ListCart(userID)
	if err != nil {
		// The flow context survives a read failure; the user can retry
		// the payment step.
		e.obs.Log().Error().Int("user", int(userID)).Err(err).Msg("failed to read cart at completion")
		return Outcome{
			Next:    &Checkout{Stage: StagePayment, Contact: contact},
			Replies: []Reply{reply(msgStoreRetry, KeyboardKeep)},
		}
	}
	if len(entries) == 0 {
		// Cart emptied between checkout start and completion.
		return Outcome{Replies: []Reply{reply("Your cart is empty! Nothing to order.", KeyboardMain)}}
	}

	var (
		total int64
		items strings.Builder
	)
	for _, entry := range entries {
		product, err := e.store.GetProduct(entry.ProductID)
		if err != nil {
			// Item deleted since it was added; drop it from the order.
			e.obs.Log().Warn().Int("product", int(entry.ProductID)).Err(err).Msg("cart entry no longer resolvable")
			continue
		}
		fmt.Fprintf(&items, "• %s — %d rub.\n", product.Name, product.Price)
		total += product.Price
	}
	if total == 0 {
		return Outcome{Replies: []Reply{reply("Your cart is empty! Nothing to order.", KeyboardMain)}}
	}

	orderRef := uuid.New().String()[:8]

	if _, err := e.store.ClearCart(userID); err != nil {
		// The persistence step itself failed; clear the context so the
		// user cannot loop into double submission.
		e.obs.Log().Error().Int("user", int(userID)).Err(err).Msg("failed to clear cart after order")
		return Outcome{Replies: []Reply{reply(msgStoreRetry, KeyboardMain)}}
	}

	confirmation := fmt.Sprintf(
		"✅ Your order %s is placed!\n\n"+
			"📞 Your contact: %s\n"+
			"💳 Payment method: %s\n\n"+
			"🛒 Order contents:\n%s\n"+
			"💸 Total due: %d rub.\n\n"+
			"Thank you! We will get in touch shortly.",
		orderRef, contact, payment, items.String(), total)

	operator := fmt.Sprintf(
		"🆕 NEW ORDER %s\n\n"+
			"👤 Customer: %s\n"+
			"📞 Contact: %s\n"+
			"💳 Payment method: %s\n\n"+
			"📦 Items:\n%s\n"+
			"💰 Total: %d rub.\n\n"+
			"✉️ The customer is waiting for your reply!",
		orderRef, userTag, contact, payment, items.String(), total)

	return Outcome{
		Replies:  []Reply{reply(confirmation, KeyboardMain)},
		Operator: operator,
	}
}
