package flow

import (
	"context"
	"strings"
	"testing"

	"github.com/Lukazavrr/hotwheels-bot/internal/store"
)

func TestAdminAdd_FullFlow(t *testing.T) {
	f := newFakeStore()
	e := testEngine(f)
	ctx := context.Background()

	out := e.StartAdminAdd()
	a := out.Next.(*AdminAdd)
	if a.Stage != StagePhoto {
		t.Fatalf("expected photo stage, got %v", a.Stage)
	}

	out = e.AdvanceAdminAdd(ctx, a, Input{PhotoID: "file-123"})
	a = out.Next.(*AdminAdd)
	if a.Stage != StageName || a.PhotoID != "file-123" {
		t.Fatalf("expected name stage with stored photo, got %#v", a)
	}

	out = e.AdvanceAdminAdd(ctx, a, Input{Text: "Twin Mill"})
	a = out.Next.(*AdminAdd)

	out = e.AdvanceAdminAdd(ctx, a, Input{Text: "450"})
	a = out.Next.(*AdminAdd)
	if a.Price != 450 {
		t.Fatalf("expected parsed price, got %#v", a)
	}

	out = e.AdvanceAdminAdd(ctx, a, Input{Text: "Classic twin-engine"})
	a = out.Next.(*AdminAdd)
	if a.Stage != StageCategory {
		t.Fatalf("expected category stage, got %#v", a)
	}
	if out.Replies[0].Keyboard != KeyboardCategories {
		t.Errorf("expected category picker keyboard")
	}

	out = e.AdvanceAdminAdd(ctx, a, Input{Text: "Premium (premium)"})
	if out.Next != nil {
		t.Fatalf("expected completed flow, got %#v", out.Next)
	}

	products, _ := f.ListProducts("premium")
	if len(products) != 1 {
		t.Fatalf("expected 1 created product, got %d", len(products))
	}
	p := products[0]
	if p.Name != "Twin Mill" || p.Price != 450 || p.PhotoID != "file-123" || p.Description != "Classic twin-engine" {
		t.Errorf("unexpected product %+v", p)
	}
}

func TestAdminAdd_InvalidPricePreservesData(t *testing.T) {
	f := newFakeStore()
	e := testEngine(f)

	a := &AdminAdd{Stage: StagePrice, PhotoID: "file-1", Name: "Deora II"}
	out := e.AdvanceAdminAdd(context.Background(), a, Input{Text: "cheap"})

	got, ok := out.Next.(*AdminAdd)
	if !ok || got.Stage != StagePrice {
		t.Fatalf("expected unchanged stage, got %#v", out.Next)
	}
	// Accumulated fields survive a failed validation.
	if got.PhotoID != "file-1" || got.Name != "Deora II" {
		t.Errorf("accumulated data lost: %#v", got)
	}
	if !strings.Contains(out.Replies[0].Text, "number") {
		t.Errorf("expected numeric re-prompt, got %q", out.Replies[0].Text)
	}
}

func TestAdminAdd_NonPhotoRejected(t *testing.T) {
	e := testEngine(newFakeStore())

	a := &AdminAdd{Stage: StagePhoto}
	out := e.AdvanceAdminAdd(context.Background(), a, Input{Text: "here is a photo, trust me"})
	got, ok := out.Next.(*AdminAdd)
	if !ok || got.Stage != StagePhoto {
		t.Fatalf("expected unchanged stage, got %#v", out.Next)
	}
}

func TestAdminAdd_UnknownCategoryReprompts(t *testing.T) {
	f := newFakeStore()
	e := testEngine(f)

	a := &AdminAdd{Stage: StageCategory, PhotoID: "f", Name: "X", Price: 1, Description: "d"}
	out := e.AdvanceAdminAdd(context.Background(), a, Input{Text: "hypercars"})
	got, ok := out.Next.(*AdminAdd)
	if !ok || got.Stage != StageCategory {
		t.Fatalf("expected unchanged stage, got %#v", out.Next)
	}
	if len(f.products) != 0 {
		t.Error("no product may be created on invalid category")
	}
}

func TestAdminAdd_BareKeyCategoryAccepted(t *testing.T) {
	f := newFakeStore()
	e := testEngine(f)

	a := &AdminAdd{Stage: StageCategory, PhotoID: "f", Name: "X", Price: 1, Description: "d"}
	out := e.AdvanceAdminAdd(context.Background(), a, Input{Text: "zamak"})
	if out.Next != nil {
		t.Fatalf("expected completed flow, got %#v", out.Next)
	}
	products, _ := f.ListProducts("zamak")
	if len(products) != 1 {
		t.Errorf("expected product in zamak, got %d", len(products))
	}
}

func TestAdminAdd_StoreFailureClearsContext(t *testing.T) {
	f := newFakeStore()
	f.createErr = errBoom("catalog store")
	e := testEngine(f)

	a := &AdminAdd{Stage: StageCategory, PhotoID: "f", Name: "X", Price: 1, Description: "d"}
	out := e.AdvanceAdminAdd(context.Background(), a, Input{Text: "zamak"})
	if out.Next != nil {
		t.Errorf("expected cleared context after persistence failure, got %#v", out.Next)
	}
}

func TestAdminDelete_PartialFailure(t *testing.T) {
	f := newFakeStore()
	e := testEngine(f)

	// Ids 1..7; the test sends "5 9x 7".
	for i := 0; i < 7; i++ {
		f.addProduct(store.Product{Category: "main", Name: "Car", Price: 10})
	}
	f.products[5] = store.Product{ID: 5, Name: "Five"}
	f.products[7] = store.Product{ID: 7, Name: "Seven"}

	out := e.AdvanceAdminDelete(context.Background(), Input{Text: "5 9x 7"})
	if out.Next != nil {
		t.Errorf("expected flow to end, got %#v", out.Next)
	}
	text := out.Replies[0].Text
	if !strings.Contains(text, "Five") || !strings.Contains(text, "Seven") {
		t.Errorf("expected items 5 and 7 reported deleted: %s", text)
	}
	if !strings.Contains(text, "9x") {
		t.Errorf("expected malformed token reported: %s", text)
	}
	if _, ok := f.products[5]; ok {
		t.Error("product 5 not deleted")
	}
	if _, ok := f.products[7]; ok {
		t.Error("product 7 not deleted")
	}
	// The malformed token never aborted the valid deletions.
	if len(f.products) != 5 {
		t.Errorf("expected 5 remaining products, got %d", len(f.products))
	}
}

func TestAdminDelete_UnknownID(t *testing.T) {
	f := newFakeStore()
	f.addProduct(store.Product{Name: "Only"})
	e := testEngine(f)

	out := e.AdvanceAdminDelete(context.Background(), Input{Text: "42"})
	if !strings.Contains(out.Replies[0].Text, "42") {
		t.Errorf("expected unknown id reported, got %q", out.Replies[0].Text)
	}
}

func TestAdminDelete_StartListsProducts(t *testing.T) {
	f := newFakeStore()
	f.addProduct(store.Product{Name: "Twin Mill"})
	e := testEngine(f)

	out := e.StartAdminDelete(context.Background())
	if _, ok := out.Next.(*AdminDelete); !ok {
		t.Fatalf("expected delete context, got %#v", out.Next)
	}
	if !strings.Contains(out.Replies[0].Text, "Twin Mill") {
		t.Errorf("expected listing to include product name")
	}
}

func TestAdminDelete_EmptyCatalog(t *testing.T) {
	e := testEngine(newFakeStore())
	out := e.StartAdminDelete(context.Background())
	if out.Next != nil {
		t.Errorf("expected no flow for empty catalog, got %#v", out.Next)
	}
}
