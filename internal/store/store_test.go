package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	s := newTestStore(t)

	t.Run("Products", func(t *testing.T) {
		p1, err := s.CreateProduct(Product{Category: "main", Name: "Twin Mill", Price: 100, PhotoID: "f1"})
		if err != nil {
			t.Fatalf("CreateProduct failed: %v", err)
		}
		p2, err := s.CreateProduct(Product{Category: "main", Name: "Bone Shaker", Price: 250, PhotoID: "f2"})
		if err != nil {
			t.Fatalf("CreateProduct failed: %v", err)
		}
		if _, err := s.CreateProduct(Product{Category: "premium", Name: "Skyline", Price: 900}); err != nil {
			t.Fatalf("CreateProduct failed: %v", err)
		}

		list, err := s.ListProducts("main")
		if err != nil {
			t.Fatalf("ListProducts failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("Expected 2 main products, got %d", len(list))
		}
		// Query order is id order; screens depend on it.
		if list[0].ID != p1.ID || list[1].ID != p2.ID {
			t.Errorf("Expected id order [%d %d], got [%d %d]", p1.ID, p2.ID, list[0].ID, list[1].ID)
		}

		got, err := s.GetProduct(p1.ID)
		if err != nil {
			t.Fatalf("GetProduct failed: %v", err)
		}
		if got.Name != "Twin Mill" || got.Price != 100 {
			t.Errorf("Unexpected product %+v", got)
		}

		if _, err := s.GetProduct(9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}

		all, err := s.ListAllProducts()
		if err != nil {
			t.Fatalf("ListAllProducts failed: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("Expected 3 products, got %d", len(all))
		}

		ok, err := s.DeleteProduct(p2.ID)
		if err != nil || !ok {
			t.Fatalf("DeleteProduct failed: ok=%v err=%v", ok, err)
		}
		ok, err = s.DeleteProduct(p2.ID)
		if err != nil {
			t.Fatalf("DeleteProduct failed: %v", err)
		}
		if ok {
			t.Error("Expected false when deleting a missing product")
		}
	})

	t.Run("Cart", func(t *testing.T) {
		p, err := s.CreateProduct(Product{Category: "zamak", Name: "Deora II", Price: 300})
		if err != nil {
			t.Fatalf("CreateProduct failed: %v", err)
		}

		added, err := s.AddToCart(7, p.ID)
		if err != nil || !added {
			t.Fatalf("AddToCart failed: ok=%v err=%v", added, err)
		}
		// Duplicate (user, product) pairs are rejected.
		added, err = s.AddToCart(7, p.ID)
		if err != nil {
			t.Fatalf("AddToCart failed: %v", err)
		}
		if added {
			t.Error("Expected duplicate add to return false")
		}

		entries, err := s.ListCart(7)
		if err != nil {
			t.Fatalf("ListCart failed: %v", err)
		}
		if len(entries) != 1 || entries[0].ProductID != p.ID {
			t.Fatalf("Unexpected cart entries %+v", entries)
		}

		ok, err := s.RemoveFromCart(entries[0].ID, 8)
		if err != nil {
			t.Fatalf("RemoveFromCart failed: %v", err)
		}
		if ok {
			t.Error("Expected removal with wrong user to return false")
		}

		ok, err = s.RemoveFromCart(entries[0].ID, 7)
		if err != nil || !ok {
			t.Fatalf("RemoveFromCart failed: ok=%v err=%v", ok, err)
		}

		if _, err := s.AddToCart(7, p.ID); err != nil {
			t.Fatalf("AddToCart failed: %v", err)
		}
		n, err := s.ClearCart(7)
		if err != nil {
			t.Fatalf("ClearCart failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 cleared entry, got %d", n)
		}
	})

	t.Run("Config", func(t *testing.T) {
		if err := s.SetConfig("contact_tag", "@kriak"); err != nil {
			t.Fatalf("SetConfig failed: %v", err)
		}
		if err := s.SetConfig("contact_tag", "@kriak2"); err != nil {
			t.Fatalf("SetConfig overwrite failed: %v", err)
		}
		v, err := s.GetConfig("contact_tag")
		if err != nil {
			t.Fatalf("GetConfig failed: %v", err)
		}
		if v != "@kriak2" {
			t.Errorf("Expected '@kriak2', got %q", v)
		}
		v, err = s.GetConfig("missing")
		if err != nil || v != "" {
			t.Errorf("Expected empty value for missing key, got %q err=%v", v, err)
		}
	})
}

func TestCategories(t *testing.T) {
	if _, ok := CategoryByLabel("🏁 Premium"); !ok {
		t.Error("Expected premium label to resolve")
	}
	if _, ok := CategoryByLabel("🛒 Cart"); ok {
		t.Error("Cart button is not a category")
	}

	c, ok := CategoryByPicker("Zamac (zamak)")
	if !ok || c.Key != "zamak" {
		t.Errorf("Expected zamak, got %+v ok=%v", c, ok)
	}
	if _, ok := CategoryByPicker("team_transport"); !ok {
		t.Error("Expected bare key to resolve")
	}
	if _, ok := CategoryByPicker("hypercars"); ok {
		t.Error("Unknown picker input must not resolve")
	}
}
