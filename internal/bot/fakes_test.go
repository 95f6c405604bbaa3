package bot

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Lukazavrr/hotwheels-bot/internal/flow"
	"github.com/Lukazavrr/hotwheels-bot/internal/images"
	"github.com/Lukazavrr/hotwheels-bot/internal/observe"
	"github.com/Lukazavrr/hotwheels-bot/internal/render"
	"github.com/Lukazavrr/hotwheels-bot/internal/session"
	"github.com/Lukazavrr/hotwheels-bot/internal/store"
)

type sentMsg struct {
	chatID int64
	text   string
	photo  *PhotoSource
	markup *Markup
	ref    session.MessageRef
}

// fakeTransport records everything sent and deleted.
type fakeTransport struct {
	mu         sync.Mutex
	nextID     int
	sent       []sentMsg
	deleted    []session.MessageRef
	failDelete bool
}

func (f *fakeTransport) record(chatID int64, text string, photo *PhotoSource, m *Markup) session.MessageRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ref := session.MessageRef{ChatID: chatID, MessageID: f.nextID}
	f.sent = append(f.sent, sentMsg{chatID: chatID, text: text, photo: photo, markup: m, ref: ref})
	return ref
}

func (f *fakeTransport) SendText(_ context.Context, chatID int64, text string, m *Markup) (session.MessageRef, error) {
	return f.record(chatID, text, nil, m), nil
}

func (f *fakeTransport) SendPhoto(_ context.Context, chatID int64, photo PhotoSource, caption string, m *Markup) (session.MessageRef, error) {
	return f.record(chatID, caption, &photo, m), nil
}

func (f *fakeTransport) Delete(_ context.Context, ref session.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errors.New("message already gone")
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeTransport) lastTo(chatID int64) *sentMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].chatID == chatID {
			return &f.sent[i]
		}
	}
	return nil
}

// fakeStore is an in-memory store.Storage.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	products  []store.Product
	cart      []store.CartEntry
	config    map[string]string
	listPanic bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{config: map[string]string{}}
}

func (s *fakeStore) addProduct(p store.Product) store.Product {
	created, _ := s.CreateProduct(p)
	return created
}

func (s *fakeStore) ListProducts(category string) ([]store.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listPanic {
		panic("store exploded")
	}
	var out []store.Product
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) ListAllProducts() ([]store.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.Product(nil), s.products...), nil
}

func (s *fakeStore) GetProduct(id int64) (store.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return store.Product{}, store.ErrNotFound
}

func (s *fakeStore) CreateProduct(p store.Product) (store.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.products = append(s.products, p)
	return p, nil
}

func (s *fakeStore) DeleteProduct(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ListCart(userID int64) ([]store.CartEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.CartEntry
	for _, e := range s.cart {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) AddToCart(userID, productID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.cart {
		if e.UserID == userID && e.ProductID == productID {
			return false, nil
		}
	}
	s.nextID++
	s.cart = append(s.cart, store.CartEntry{ID: s.nextID, UserID: userID, ProductID: productID})
	return true, nil
}

func (s *fakeStore) RemoveFromCart(entryID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.cart {
		if e.ID == entryID && e.UserID == userID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ClearCart(userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []store.CartEntry
	var removed int64
	for _, e := range s.cart {
		if e.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.cart = kept
	return removed, nil
}

func (s *fakeStore) SetConfig(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config[key] = value
	return nil
}

func (s *fakeStore) GetConfig(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config[key], nil
}

func (s *fakeStore) Close() error { return nil }

// failingResolver forces every render into the text-only fallback.
type failingResolver struct{}

func (failingResolver) ResolveFileURL(context.Context, string) (string, error) {
	return "", errors.New("file service unavailable")
}

type testBot struct {
	bot       *Bot
	transport *fakeTransport
	store     *fakeStore
	sessions  *session.Manager
	pool      *images.Pool
}

const testOperatorID = 900

func newTestBot(t interface{ Cleanup(func()) }) *testBot {
	obs := observe.New(io.Discard, false)
	st := newFakeStore()
	transport := &fakeTransport{}
	sessions := session.NewManager(64, time.Minute)

	pool := images.NewPool(2, 400)
	t.Cleanup(pool.Close)
	fetcher, err := images.NewFetcher(pool, 8, time.Second, obs)
	if err != nil {
		panic(err)
	}
	pipeline := render.NewPipeline(fetcher, pool, failingResolver{}, render.NewEventBus(), obs, time.Second)

	b := New(Deps{
		Store:      st,
		Sessions:   sessions,
		Pipeline:   pipeline,
		Flows:      flow.NewEngine(st, obs),
		Transport:  transport,
		Observer:   obs,
		OperatorID: testOperatorID,
		ContactTag: "@hotwheels_shop",
	})
	return &testBot{bot: b, transport: transport, store: st, sessions: sessions, pool: pool}
}
