package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CartLine a webshop item in a cart.
type CartLine struct {
	ItemUUID string `json:"item_uuid"`
	Quantity int    `json:"quantity"`
}

// Cart per-session cart and favorites.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	Favorites []string   `json:"favorites"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// CartStore persists carts by session id. Load returns nil for unknown or
// expired sessions.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

// NewCartStore returns the Redis store when Redis is enabled, else an in-process store.
func NewCartStore() CartStore {
	if Enabled() {
		return RedisCartStore{}
	}
	return NewMemoryCartStore()
}

func cartKey(sessionID string) string {
	return "cart:" + strings.TrimSpace(sessionID)
}

// RedisCartStore keeps carts as JSON values with a ttl.
type RedisCartStore struct{}

func (RedisCartStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	var cart Cart
	hit, err := GetJSON(ctx, cartKey(sessionID), &cart)
	if err != nil || !hit {
		return nil, err
	}
	return &cart, nil
}

func (RedisCartStore) Save(ctx context.Context, cart *Cart, ttl time.Duration) error {
	return SetJSON(ctx, cartKey(cart.SessionID), cart, ttl)
}

func (RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	return Del(ctx, cartKey(sessionID))
}

// MemoryCartStore single-process store for development and tests.
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string]Cart
	now   func() time.Time
}

// NewMemoryCartStore creates an empty store.
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: map[string]Cart{}, now: time.Now}
}

func (s *MemoryCartStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[sessionID]
	if !ok {
		return nil, nil
	}
	if !cart.ExpiresAt.IsZero() && !s.now().Before(cart.ExpiresAt) {
		delete(s.carts, sessionID)
		return nil, nil
	}
	cart.Lines = append([]CartLine(nil), cart.Lines...)
	cart.Favorites = append([]string(nil), cart.Favorites...)
	return &cart, nil
}

func (s *MemoryCartStore) Save(ctx context.Context, cart *Cart, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *cart
	stored.Lines = append([]CartLine(nil), cart.Lines...)
	stored.Favorites = append([]string(nil), cart.Favorites...)
	if ttl > 0 {
		stored.ExpiresAt = s.now().Add(ttl)
	}
	s.carts[cart.SessionID] = stored
	return nil
}

func (s *MemoryCartStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
