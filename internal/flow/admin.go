package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Lukazavrr/hotwheels-bot/internal/store"
)

const (
	msgAskPhoto       = "Send the product photo"
	msgAskName        = "Great! Now enter the product name:"
	msgAskPrice       = "Enter the product price (number only):"
	msgAskDescription = "Enter the product description:"
	msgAskCategory    = "Pick a category:"

	msgPhotoAgain    = "❌ That is not a photo. Send the product photo:"
	msgPriceAgain    = "❌ The price must be a number! Try again"
	msgCategoryAgain = "❌ Pick one of the offered categories"
)

// StartAdminAdd enters the product-add flow. The operator check happens
// once here at flow entry; later steps trust it for the life of the flow.
func (e *Engine) StartAdminAdd() Outcome {
	return Outcome{
		Next:    &AdminAdd{Stage: StagePhoto},
		Replies: []Reply{reply(msgAskPhoto, KeyboardHidden)},
	}
}

// AdvanceAdminAdd handles one input of the product-add flow. Every
// non-conforming input re-prompts without advancing the stage or
// discarding fields collected so far.
func (e *Engine) AdvanceAdminAdd(ctx context.Context, a *AdminAdd, in Input) Outcome {
	switch a.Stage {
	case StagePhoto:
		if in.PhotoID == "" {
			return Outcome{Next: a, Replies: []Reply{reply(msgPhotoAgain, KeyboardKeep)}}
		}
		next := *a
		next.PhotoID = in.PhotoID
		next.Stage = StageName
		return Outcome{Next: &next, Replies: []Reply{reply(msgAskName, KeyboardKeep)}}

	case StageName:
		name := strings.TrimSpace(in.Text)
		if name == "" {
			return Outcome{Next: a, Replies: []Reply{reply(msgAskName, KeyboardKeep)}}
		}
		next := *a
		next.Name = name
		next.Stage = StagePrice
		return Outcome{Next: &next, Replies: []Reply{reply(msgAskPrice, KeyboardKeep)}}

	case StagePrice:
		price, err := strconv.ParseInt(strings.TrimSpace(in.Text), 10, 64)
		if err != nil {
			return Outcome{Next: a, Replies: []Reply{reply(msgPriceAgain, KeyboardKeep)}}
		}
		next := *a
		next.Price = price
		next.Stage = StageDescription
		return Outcome{Next: &next, Replies: []Reply{reply(msgAskDescription, KeyboardKeep)}}

	case StageDescription:
		desc := strings.TrimSpace(in.Text)
		if desc == "" {
			return Outcome{Next: a, Replies: []Reply{reply(msgAskDescription, KeyboardKeep)}}
		}
		next := *a
		next.Description = desc
		next.Stage = StageCategory
		return Outcome{Next: &next, Replies: []Reply{reply(msgAskCategory, KeyboardCategories)}}

	case StageCategory:
		category, ok := store.CategoryByPicker(strings.TrimSpace(in.Text))
		if !ok {
			return Outcome{Next: a, Replies: []Reply{reply(msgCategoryAgain, KeyboardKeep)}}
		}
		return e.persistProduct(ctx, a, category)
	}

	return Outcome{Next: a}
}

func (e *Engine) persistProduct(ctx context.Context, a *AdminAdd, category store.Category) Outcome {
	_, span := e.obs.StartSpan(ctx, "PersistProduct")
	defer span.End()

	product, err := e.store.CreateProduct(store.Product{
		Category:    category.Key,
		Name:        a.Name,
		Price:       a.Price,
		PhotoID:     a.PhotoID,
		Description: a.Description,
	})
	if err != nil {
		// The persistence step failed; clearing the context avoids a
		// resubmission loop on repeated category input.
		e.obs.Log().Error().Str("name", a.Name).Err(err).Msg("failed to create product")
		return Outcome{Replies: []Reply{reply("❌ Failed to save the product", KeyboardMain)}}
	}

	confirmation := fmt.Sprintf(
		"✅ Product added to %s!\n\nName: %s\nPrice: %d rub.",
		category.Label, product.Name, product.Price)
	return Outcome{Replies: []Reply{reply(confirmation, KeyboardMain)}}
}

// StartAdminDelete enters the bulk delete flow, listing all products so
// the operator can see the ids.
func (e *Engine) StartAdminDelete(ctx context.Context) Outcome {
	products, err := e.store.ListAllProducts()
	if err != nil {
		e.obs.Log().Error().Err(err).Msg("failed to list products for deletion")
		return Outcome{Replies: []Reply{reply(msgStoreRetry, KeyboardMain)}}
	}
	if len(products) == 0 {
		return Outcome{Replies: []Reply{reply("No products to delete", KeyboardMain)}}
	}

	var listing strings.Builder
	for _, p := range products {
		fmt.Fprintf(&listing, "%d: %s\n", p.ID, p.Name)
	}
	prompt := fmt.Sprintf(
		"Products (ID: name):\n%s\nEnter the product ids to delete, separated by spaces:",
		listing.String())
	return Outcome{
		Next:    &AdminDelete{},
		Replies: []Reply{reply(prompt, KeyboardHidden)},
	}
}

// AdvanceAdminDelete deletes every valid id token and reports malformed
// or unknown tokens separately. Partial success is expected behavior;
// one bad token never blocks the rest.
func (e *Engine) AdvanceAdminDelete(ctx context.Context, in Input) Outcome {
	tokens := strings.Fields(in.Text)
	if len(tokens) == 0 {
		return Outcome{
			Next:    &AdminDelete{},
			Replies: []Reply{reply("Enter the product ids to delete, separated by spaces:", KeyboardKeep)},
		}
	}

	var deleted []string
	var notFound []string
	for _, token := range tokens {
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			notFound = append(notFound, token)
			continue
		}
		product, err := e.store.GetProduct(id)
		if err != nil {
			notFound = append(notFound, token)
			continue
		}
		ok, err := e.store.DeleteProduct(id)
		if err != nil || !ok {
			if err != nil {
				e.obs.Log().Error().Int("product", int(id)).Err(err).Msg("failed to delete product")
			}
			notFound = append(notFound, token)
			continue
		}
		deleted = append(deleted, product.Name)
	}

	var response strings.Builder
	if len(deleted) > 0 {
		response.WriteString("✅ Deleted products:\n")
		for _, name := range deleted {
			fmt.Fprintf(&response, "• %s\n", name)
		}
	}
	if len(notFound) > 0 {
		if response.Len() > 0 {
			response.WriteString("\n")
		}
		fmt.Fprintf(&response, "❌ Not found: %s", strings.Join(notFound, ", "))
	}
	if response.Len() == 0 {
		response.WriteString("Nothing deleted")
	}

	return Outcome{Replies: []Reply{reply(response.String(), KeyboardMain)}}
}
