package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Storage on a single sqlite database file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT NOT NULL,
			name TEXT NOT NULL,
			price INTEGER NOT NULL,
			photo_id TEXT,
			description TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS cart (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			product_id INTEGER NOT NULL,
			UNIQUE(user_id, product_id)
		);`,
		`CREATE TABLE IF NOT EXISTS configuration (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

// ListProducts returns the products of one category ordered by id, which
// is the order every category screen is built in.
func (s *SQLiteStore) ListProducts(category string) ([]Product, error) {
	rows, err := s.db.Query(
		`SELECT id, category, name, price, photo_id, description
		 FROM products WHERE category = ? ORDER BY id`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (s *SQLiteStore) ListAllProducts() ([]Product, error) {
	rows, err := s.db.Query(
		`SELECT id, category, name, price, photo_id, description
		 FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Category, &p.Name, &p.Price, &p.PhotoID, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetProduct(id int64) (Product, error) {
	var p Product
	err := s.db.QueryRow(
		`SELECT id, category, name, price, photo_id, description
		 FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Category, &p.Name, &p.Price, &p.PhotoID, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return p, nil
}

func (s *SQLiteStore) CreateProduct(p Product) (Product, error) {
	res, err := s.db.Exec(
		`INSERT INTO products (category, name, price, photo_id, description)
		 VALUES (?, ?, ?, ?, ?)`,
		p.Category, p.Name, p.Price, p.PhotoID, p.Description)
	if err != nil {
		return Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return Product{}, fmt.Errorf("failed to read product id: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) DeleteProduct(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListCart(userID int64) ([]CartEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, product_id FROM cart WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	defer rows.Close()

	var out []CartEntry
	for rows.Next() {
		var e CartEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ProductID); err != nil {
			return nil, fmt.Errorf("failed to scan cart entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddToCart inserts a cart entry, returning false when the (user, product)
// pair already exists.
func (s *SQLiteStore) AddToCart(userID, productID int64) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO cart (user_id, product_id) VALUES (?, ?)`,
		userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to add to cart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) RemoveFromCart(entryID, userID int64) (bool, error) {
	res, err := s.db.Exec(
		`DELETE FROM cart WHERE id = ? AND user_id = ?`, entryID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove cart entry %d: %w", entryID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) ClearCart(userID int64) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM cart WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) SetConfig(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO configuration (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM configuration WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get config %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
