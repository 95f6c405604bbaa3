package store

import "errors"

// ErrNotFound is returned when a product or cart entry does not exist.
var ErrNotFound = errors.New("not found")

// Product is a single catalog item. The price is an integer amount in
// whole currency units.
type Product struct {
	ID          int64
	Category    string
	Name        string
	Price       int64
	PhotoID     string // opaque image reference resolved by the transport
	Description string
}

// CartEntry links a user to a product. At most one entry exists per
// (user, product) pair.
type CartEntry struct {
	ID        int64
	UserID    int64
	ProductID int64
}

// Storage defines the interface for the catalog and cart store.
type Storage interface {
	// Catalog.
	ListProducts(category string) ([]Product, error)
	ListAllProducts() ([]Product, error)
	GetProduct(id int64) (Product, error)
	CreateProduct(p Product) (Product, error)
	DeleteProduct(id int64) (bool, error)

	// Cart.
	ListCart(userID int64) ([]CartEntry, error)
	AddToCart(userID, productID int64) (bool, error)
	RemoveFromCart(entryID, userID int64) (bool, error)
	ClearCart(userID int64) (int64, error)

	// Configuration key/value pairs.
	SetConfig(key, value string) error
	GetConfig(key string) (string, error)

	Close() error
}
