package service

import (
	"context"
	"strings"
	"time"

	"github.com/tourshop/internal/cache"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	defaultCartTTL      = 7 * 24 * time.Hour
	maxCartLineQuantity = 99
)

// CartViewLine a cart line resolved against the catalog.
type CartViewLine struct {
	ItemUUID  string       `json:"item_uuid"`
	Name      string       `json:"name"`
	Category  string       `json:"category"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
	LineTotal models.Money `json:"line_total"`
}

// CartView cart response.
type CartView struct {
	SessionID string         `json:"session_id"`
	Lines     []CartViewLine `json:"lines"`
	Favorites []string       `json:"favorites"`
	Subtotal  models.Money   `json:"subtotal"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// CartService owns the per-session cart lifecycle: Open, mutate, Close.
type CartService struct {
	store    cache.CartStore
	itemRepo repository.WebshopItemRepository
	ttl      time.Duration
	now      func() time.Time
}

// NewCartService creates the service; ttl <= 0 uses seven days.
func NewCartService(store cache.CartStore, itemRepo repository.WebshopItemRepository, ttl time.Duration) *CartService {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &CartService{store: store, itemRepo: itemRepo, ttl: ttl, now: time.Now}
}

// Open creates an empty cart session.
func (s *CartService) Open(ctx context.Context) (*CartView, error) {
	cart := &cache.Cart{SessionID: uuid.NewString(), Lines: []cache.CartLine{}, Favorites: []string{}}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(cart)
}

// Get returns the cart with current catalog prices.
func (s *CartService) Get(ctx context.Context, sessionID string) (*CartView, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(cart)
}

// AddItem adds quantity of an active item, merging with an existing line.
func (s *CartService) AddItem(ctx context.Context, sessionID, itemUUID string, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, ErrWebshopItemInvalid
	}
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	itemUUID = strings.TrimSpace(itemUUID)
	item, err := s.itemRepo.GetByUUID(itemUUID)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.IsActive {
		return nil, ErrWebshopItemNotFound
	}

	_, idx, found := lo.FindIndexOf(cart.Lines, func(line cache.CartLine) bool { return line.ItemUUID == itemUUID })
	if found {
		cart.Lines[idx].Quantity = min(cart.Lines[idx].Quantity+quantity, maxCartLineQuantity)
	} else {
		cart.Lines = append(cart.Lines, cache.CartLine{ItemUUID: itemUUID, Quantity: min(quantity, maxCartLineQuantity)})
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(cart)
}

// RemoveItem drops a line; removing an absent item is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemUUID string) (*CartView, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	itemUUID = strings.TrimSpace(itemUUID)
	cart.Lines = lo.Reject(cart.Lines, func(line cache.CartLine, _ int) bool { return line.ItemUUID == itemUUID })
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(cart)
}

// ToggleFavorite flips the favorite flag and reports the new state.
func (s *CartService) ToggleFavorite(ctx context.Context, sessionID, itemUUID string) (bool, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	itemUUID = strings.TrimSpace(itemUUID)
	if itemUUID == "" {
		return false, ErrWebshopItemInvalid
	}
	favorited := !lo.Contains(cart.Favorites, itemUUID)
	if favorited {
		cart.Favorites = append(cart.Favorites, itemUUID)
	} else {
		cart.Favorites = lo.Without(cart.Favorites, itemUUID)
	}
	if err := s.save(ctx, cart); err != nil {
		return false, err
	}
	return favorited, nil
}

// Close tears the session down.
func (s *CartService) Close(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrCartSessionMissing
	}
	return s.store.Delete(ctx, strings.TrimSpace(sessionID))
}

// CheckoutLines converts the cart into webshop checkout lines.
func (s *CartService) CheckoutLines(ctx context.Context, sessionID string) ([]WebshopCheckoutLine, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrCartEmpty
	}
	return lo.Map(cart.Lines, func(line cache.CartLine, _ int) WebshopCheckoutLine {
		return WebshopCheckoutLine{ItemUUID: line.ItemUUID, Quantity: line.Quantity}
	}), nil
}

func (s *CartService) load(ctx context.Context, sessionID string) (*cache.Cart, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrCartSessionMissing
	}
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartSessionMissing
	}
	return cart, nil
}

// save refreshes the sliding expiry.
func (s *CartService) save(ctx context.Context, cart *cache.Cart) error {
	now := s.now()
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.ttl)
	return s.store.Save(ctx, cart, s.ttl)
}

// view prices lines from the catalog; lines whose item disappeared are dropped.
func (s *CartService) view(cart *cache.Cart) (*CartView, error) {
	view := &CartView{
		SessionID: cart.SessionID,
		Lines:     []CartViewLine{},
		Favorites: append([]string{}, cart.Favorites...),
		ExpiresAt: cart.ExpiresAt,
	}
	if len(cart.Lines) == 0 {
		view.Subtotal = models.NewMoneyFromMinor(0)
		return view, nil
	}
	items, err := s.itemRepo.ListByUUIDs(lo.Map(cart.Lines, func(line cache.CartLine, _ int) string { return line.ItemUUID }))
	if err != nil {
		return nil, err
	}
	byUUID := lo.KeyBy(items, func(item models.WebshopItem) string { return item.UUID })
	subtotal := decimal.Zero
	for _, line := range cart.Lines {
		item, ok := byUUID[line.ItemUUID]
		if !ok || !item.IsActive {
			continue
		}
		total := item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(total)
		view.Lines = append(view.Lines, CartViewLine{
			ItemUUID:  item.UUID,
			Name:      item.Name,
			Category:  item.Category,
			Quantity:  line.Quantity,
			UnitPrice: item.Price,
			LineTotal: models.NewMoneyFromDecimal(total),
		})
	}
	view.Subtotal = models.NewMoneyFromDecimal(subtotal)
	return view, nil
}
