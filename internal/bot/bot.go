package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Lukazavrr/hotwheels-bot/internal/flow"
	"github.com/Lukazavrr/hotwheels-bot/internal/observe"
	"github.com/Lukazavrr/hotwheels-bot/internal/render"
	"github.com/Lukazavrr/hotwheels-bot/internal/session"
	"github.com/Lukazavrr/hotwheels-bot/internal/store"
)

// Deps carries everything the handler layer needs.
type Deps struct {
	Store      store.Storage
	Sessions   *session.Manager
	Pipeline   *render.Pipeline
	Flows      *flow.Engine
	Transport  Transport
	Observer   *observe.Observer
	OperatorID int64
	ContactTag string
}

// Bot routes inbound chat events to the render pipeline, the cart and the
// conversation flows. It is transport-agnostic; the telegram gateway feeds
// it decoded events.
type Bot struct {
	store      store.Storage
	sessions   *session.Manager
	pipeline   *render.Pipeline
	flows      *flow.Engine
	transport  Transport
	lifecycle  *Lifecycle
	obs        *observe.Observer
	operatorID int64
	contactTag string
}

func New(d Deps) *Bot {
	return &Bot{
		store:      d.Store,
		sessions:   d.Sessions,
		pipeline:   d.Pipeline,
		flows:      d.Flows,
		transport:  d.Transport,
		lifecycle:  NewLifecycle(d.Transport, d.Sessions, d.Observer),
		obs:        d.Observer,
		operatorID: d.OperatorID,
		contactTag: d.ContactTag,
	}
}

// guard recovers handler panics so one bad update cannot take the bot
// down. The user gets a generic failure message.
func (b *Bot) guard(ctx context.Context, u User, handler string) func() {
	return func() {
		if r := recover(); r != nil {
			b.obs.Log().Error().
				Str("handler", handler).
				Str("panic", fmt.Sprint(r)).
				Msg("recovered handler panic")
			b.transport.SendText(ctx, u.ChatID, msgInternal, nil)
		}
	}
}

func (b *Bot) isOperator(userID int64) bool {
	return b.operatorID != 0 && userID == b.operatorID
}

// HandleStart greets the user and resets any half-finished conversation.
func (b *Bot) HandleStart(ctx context.Context, u User) error {
	defer b.guard(ctx, u, "start")()

	b.sessions.ClearFlow(u.ID)
	_, err := b.transport.SendText(ctx, u.ChatID, msgGreeting, mainMenu())
	return err
}

// HandleMyID reports the user's numeric id, used to configure the
// operator account.
func (b *Bot) HandleMyID(ctx context.Context, u User) error {
	defer b.guard(ctx, u, "myid")()

	text := fmt.Sprintf("Your ID: %d\nHandle: %s", u.ID, u.Tag())
	_, err := b.transport.SendText(ctx, u.ChatID, text, nil)
	return err
}

// HandleAdminAdd starts the catalog-add flow. The operator check happens
// here, once, and is not repeated on later steps.
func (b *Bot) HandleAdminAdd(ctx context.Context, u User) error {
	defer b.guard(ctx, u, "admin_add")()

	if !b.isOperator(u.ID) {
		_, err := b.transport.SendText(ctx, u.ChatID, msgNotOperator, nil)
		return err
	}
	return b.applyOutcome(ctx, u, b.flows.StartAdminAdd())
}

// HandleAdminDelete starts the bulk-delete flow.
func (b *Bot) HandleAdminDelete(ctx context.Context, u User) error {
	defer b.guard(ctx, u, "admin_delete")()

	if !b.isOperator(u.ID) {
		_, err := b.transport.SendText(ctx, u.ChatID, msgNotOperator, nil)
		return err
	}
	return b.applyOutcome(ctx, u, b.flows.StartAdminDelete(ctx))
}

// HandleText routes free text: an active conversation gets it first,
// otherwise it is matched against the menu buttons.
func (b *Bot) HandleText(ctx context.Context, u User, text string) error {
	defer b.guard(ctx, u, "text")()

	if c := b.sessions.Flow(u.ID); c != nil {
		return b.advanceFlow(ctx, u, c, flow.Input{Text: text})
	}

	switch text {
	case btnCart:
		return b.showCart(ctx, u)
	case btnHelp:
		return b.sendHelp(ctx, u)
	}
	if cat, ok := store.CategoryByLabel(text); ok {
		return b.showCategory(ctx, u, cat)
	}

	_, err := b.transport.SendText(ctx, u.ChatID, msgUnknown, mainMenu())
	return err
}

// HandlePhoto feeds an uploaded photo into the active conversation.
// Photos outside a flow are ignored.
func (b *Bot) HandlePhoto(ctx context.Context, u User, photoID string) error {
	defer b.guard(ctx, u, "photo")()

	c := b.sessions.Flow(u.ID)
	if c == nil {
		return nil
	}
	return b.advanceFlow(ctx, u, c, flow.Input{PhotoID: photoID})
}

// HandleContact feeds a shared contact into the active conversation.
func (b *Bot) HandleContact(ctx context.Context, u User, phone string) error {
	defer b.guard(ctx, u, "contact")()

	c := b.sessions.Flow(u.ID)
	if c == nil {
		return nil
	}
	return b.advanceFlow(ctx, u, c, flow.Input{Contact: phone})
}

// HandleCallback dispatches an inline button press. The returned string
// is shown to the user as a short callback notice.
func (b *Bot) HandleCallback(ctx context.Context, u User, action, data string) (string, error) {
	defer b.guard(ctx, u, "callback")()

	switch action {
	case actionItem:
		return b.selectItem(ctx, u, data)
	case actionAdd:
		return b.addToCart(ctx, u, data)
	case actionList:
		cat, ok := b.sessions.Category(u.ID)
		if !ok {
			return msgStaleMenu, nil
		}
		c, ok := store.CategoryByKey(cat)
		if !ok {
			return msgStaleMenu, nil
		}
		return "", b.showCategory(ctx, u, c)
	case actionMenu:
		err := b.lifecycle.Replace(ctx, u.ID, func(ctx context.Context) ([]session.MessageRef, error) {
			ref, err := b.transport.SendText(ctx, u.ChatID, msgMenu, mainMenu())
			if err != nil {
				return nil, err
			}
			return []session.MessageRef{ref}, nil
		})
		return "", err
	case actionRemove:
		return b.removeFromCart(ctx, u, data)
	case actionClear:
		if _, err := b.store.ClearCart(u.ID); err != nil {
			b.obs.Log().Error().Err(err).Msg("failed to clear cart")
			return msgInternal, nil
		}
		return msgCartCleared, b.showCart(ctx, u)
	case actionCheckout:
		return "", b.applyOutcome(ctx, u, b.flows.StartCheckout(ctx, u.ID))
	default:
		b.obs.Log().Warn().Str("action", action).Msg("unknown callback action")
		return "", nil
	}
}

func (b *Bot) advanceFlow(ctx context.Context, u User, c flow.Context, in flow.Input) error {
	var out flow.Outcome
	switch c := c.(type) {
	case *flow.Checkout:
		out = b.flows.AdvanceCheckout(ctx, u.ID, u.Tag(), c, in)
	case *flow.AdminAdd:
		out = b.flows.AdvanceAdminAdd(ctx, c, in)
	case *flow.AdminDelete:
		out = b.flows.AdvanceAdminDelete(ctx, in)
	default:
		b.sessions.ClearFlow(u.ID)
		return nil
	}
	return b.applyOutcome(ctx, u, out)
}

// applyOutcome stores the next conversation context and delivers the
// outcome's replies. The operator notification is best-effort.
func (b *Bot) applyOutcome(ctx context.Context, u User, out flow.Outcome) error {
	if out.Next != nil {
		b.sessions.SetFlow(u.ID, out.Next)
	} else {
		b.sessions.ClearFlow(u.ID)
	}

	for _, r := range out.Replies {
		if _, err := b.transport.SendText(ctx, u.ChatID, r.Text, markupFor(r.Keyboard)); err != nil {
			return err
		}
	}
	if out.Operator != "" && b.operatorID != 0 {
		if _, err := b.transport.SendText(ctx, b.operatorID, out.Operator, nil); err != nil {
			b.obs.Log().Error().Err(err).Msg("operator notification failed")
		}
	}
	return nil
}

// showCategory renders one category screen and replaces whatever the user
// was looking at. The selection index snapshot is taken here, so buttons
// resolve against exactly what was shown.
func (b *Bot) showCategory(ctx context.Context, u User, cat store.Category) error {
	products, err := b.store.ListProducts(cat.Key)
	if err != nil {
		b.obs.Log().Error().Str("category", cat.Key).Err(err).Msg("failed to list products")
		_, serr := b.transport.SendText(ctx, u.ChatID, msgInternal, nil)
		return serr
	}
	if len(products) == 0 {
		_, err := b.transport.SendText(ctx, u.ChatID, msgEmptyCategory, mainMenu())
		return err
	}

	unit, err := b.pipeline.RenderCategory(ctx, cat.Label, products)
	if errors.Is(err, render.ErrNoImages) {
		// Degraded mode: same listing and buttons, no collage.
		caption, index := render.BuildListing(cat.Label, products)
		unit = &render.Unit{Caption: caption, Index: index}
	} else if err != nil {
		b.obs.Log().Error().Str("category", cat.Key).Err(err).Msg("category render failed")
		_, serr := b.transport.SendText(ctx, u.ChatID, msgInternal, nil)
		return serr
	}

	index := make(map[int]int64, len(unit.Index))
	for _, e := range unit.Index {
		index[e.Display] = e.ProductID
	}
	b.sessions.BeginCategory(u.ID, cat.Key, index)

	return b.lifecycle.Replace(ctx, u.ID, func(ctx context.Context) ([]session.MessageRef, error) {
		markup := itemGrid(unit.Index)
		var (
			ref session.MessageRef
			err error
		)
		if len(unit.Image) > 0 {
			ref, err = b.transport.SendPhoto(ctx, u.ChatID, PhotoSource{Bytes: unit.Image}, unit.Caption, markup)
		} else {
			ref, err = b.transport.SendText(ctx, u.ChatID, unit.Caption, markup)
		}
		if err != nil {
			return nil, err
		}
		return []session.MessageRef{ref}, nil
	})
}

// selectItem shows the detail screen for a numbered button press.
func (b *Bot) selectItem(ctx context.Context, u User, data string) (string, error) {
	display, err := strconv.Atoi(data)
	if err != nil {
		return msgStaleMenu, nil
	}
	id, err := b.sessions.Resolve(u.ID, display)
	if err != nil {
		return msgStaleMenu, nil
	}
	p, err := b.store.GetProduct(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return msgStaleMenu, nil
		}
		b.obs.Log().Error().Int("product_id", int(id)).Err(err).Msg("failed to load product")
		return msgInternal, nil
	}

	caption := fmt.Sprintf("🏎 %s\n\nPrice: %d rub.\n\n%s", p.Name, p.Price, p.Description)
	return "", b.lifecycle.Replace(ctx, u.ID, func(ctx context.Context) ([]session.MessageRef, error) {
		ref, err := b.transport.SendPhoto(ctx, u.ChatID, PhotoSource{FileID: p.PhotoID}, caption, itemDetailMarkup(p.ID))
		if err != nil {
			return nil, err
		}
		return []session.MessageRef{ref}, nil
	})
}

func (b *Bot) addToCart(ctx context.Context, u User, data string) (string, error) {
	id, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		return msgStaleMenu, nil
	}
	added, err := b.store.AddToCart(u.ID, id)
	if err != nil {
		b.obs.Log().Error().Err(err).Msg("failed to add to cart")
		return msgInternal, nil
	}
	if !added {
		return msgAlreadyIn, nil
	}
	return msgAddedToCart, nil
}

func (b *Bot) removeFromCart(ctx context.Context, u User, data string) (string, error) {
	entryID, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		return msgStaleMenu, nil
	}
	if _, err := b.store.RemoveFromCart(entryID, u.ID); err != nil {
		b.obs.Log().Error().Err(err).Msg("failed to remove cart entry")
		return msgInternal, nil
	}
	return msgRemoved, b.showCart(ctx, u)
}

type cartLine struct {
	entryID int64
	name    string
	price   int64
}

// showCart renders the cart screen. Entries whose product vanished from
// the catalog are skipped rather than breaking the whole screen.
func (b *Bot) showCart(ctx context.Context, u User) error {
	entries, err := b.store.ListCart(u.ID)
	if err != nil {
		b.obs.Log().Error().Err(err).Msg("failed to list cart")
		_, serr := b.transport.SendText(ctx, u.ChatID, msgInternal, nil)
		return serr
	}

	var lines []cartLine
	for _, e := range entries {
		p, err := b.store.GetProduct(e.ProductID)
		if err != nil {
			continue
		}
		lines = append(lines, cartLine{entryID: e.ID, name: p.Name, price: p.Price})
	}
	if len(lines) == 0 {
		return b.lifecycle.Replace(ctx, u.ID, func(ctx context.Context) ([]session.MessageRef, error) {
			ref, err := b.transport.SendText(ctx, u.ChatID, msgCartEmpty, mainMenu())
			if err != nil {
				return nil, err
			}
			return []session.MessageRef{ref}, nil
		})
	}

	var total int64
	text := "🛒 Your cart:\n\n"
	for i, l := range lines {
		text += fmt.Sprintf("%d. %s — %d rub.\n", i+1, l.name, l.price)
		total += l.price
	}
	text += fmt.Sprintf("\nTotal: %d rub.", total)

	return b.lifecycle.Replace(ctx, u.ID, func(ctx context.Context) ([]session.MessageRef, error) {
		ref, err := b.transport.SendText(ctx, u.ChatID, text, cartMarkup(lines))
		if err != nil {
			return nil, err
		}
		return []session.MessageRef{ref}, nil
	})
}

func (b *Bot) sendHelp(ctx context.Context, u User) error {
	text := "Browse categories with the menu below, tap a number to see the model,\n" +
		"add it to your cart and check out when ready."
	if b.contactTag != "" {
		text += fmt.Sprintf("\n\nQuestions? Write to %s", b.contactTag)
	}
	_, err := b.transport.SendText(ctx, u.ChatID, text, mainMenu())
	return err
}
