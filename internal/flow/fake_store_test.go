package flow

import (
	"fmt"
	"io"

	"github.com/Lukazavrr/hotwheels-bot/internal/observe"
	"github.com/Lukazavrr/hotwheels-bot/internal/store"
)

// fakeStore implements store.Storage in memory for flow tests.
type fakeStore struct {
	nextID   int64
	products map[int64]store.Product
	cart     []store.CartEntry
	cartID   int64

	listCartErr  error
	clearCartErr error
	createErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, products: make(map[int64]store.Product)}
}

func (f *fakeStore) addProduct(p store.Product) store.Product {
	p.ID = f.nextID
	f.nextID++
	f.products[p.ID] = p
	return p
}

func (f *fakeStore) ListProducts(category string) ([]store.Product, error) {
	var out []store.Product
	for id := int64(1); id < f.nextID; id++ {
		if p, ok := f.products[id]; ok && p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAllProducts() ([]store.Product, error) {
	var out []store.Product
	for id := int64(1); id < f.nextID; id++ {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetProduct(id int64) (store.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return store.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) CreateProduct(p store.Product) (store.Product, error) {
	if f.createErr != nil {
		return store.Product{}, f.createErr
	}
	return f.addProduct(p), nil
}

func (f *fakeStore) DeleteProduct(id int64) (bool, error) {
	if _, ok := f.products[id]; !ok {
		return false, nil
	}
	delete(f.products, id)
	return true, nil
}

func (f *fakeStore) ListCart(userID int64) ([]store.CartEntry, error) {
	if f.listCartErr != nil {
		return nil, f.listCartErr
	}
	var out []store.CartEntry
	for _, e := range f.cart {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) AddToCart(userID, productID int64) (bool, error) {
	for _, e := range f.cart {
		if e.UserID == userID && e.ProductID == productID {
			return false, nil
		}
	}
	f.cartID++
	f.cart = append(f.cart, store.CartEntry{ID: f.cartID, UserID: userID, ProductID: productID})
	return true, nil
}

func (f *fakeStore) RemoveFromCart(entryID, userID int64) (bool, error) {
	for i, e := range f.cart {
		if e.ID == entryID && e.UserID == userID {
			f.cart = append(f.cart[:i], f.cart[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ClearCart(userID int64) (int64, error) {
	if f.clearCartErr != nil {
		return 0, f.clearCartErr
	}
	var kept []store.CartEntry
	var removed int64
	for _, e := range f.cart {
		if e.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	f.cart = kept
	return removed, nil
}

func (f *fakeStore) SetConfig(key, value string) error { return nil }
func (f *fakeStore) GetConfig(key string) (string, error) {
	return "", nil
}
func (f *fakeStore) Close() error { return nil }

var _ store.Storage = (*fakeStore)(nil)

func testEngine(f *fakeStore) *Engine {
	return NewEngine(f, observe.New(io.Discard, false))
}

func errBoom(what string) error { return fmt.Errorf("%s unavailable", what) }
