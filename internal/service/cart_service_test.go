package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tourshop/internal/cache"
	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return NewCartService(cache.NewMemoryCartStore(), repository.NewWebshopItemRepository(db), 0), db
}

func seedWebshopItem(t *testing.T, db *gorm.DB, uuid string, minor int64, active bool) {
	t.Helper()
	item := &models.WebshopItem{UUID: uuid, Name: "Item " + uuid[:4], Category: constants.WebshopCategoryBook, Price: models.NewMoneyFromMinor(minor), IsActive: true}
	require.NoError(t, db.Create(item).Error)
	if !active {
		require.NoError(t, db.Model(item).Update("is_active", false).Error)
	}
}

func TestCartLifecycle(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	seedWebshopItem(t, db, "d1000000-0000-4000-8000-000000000001", 2495, true)
	seedWebshopItem(t, db, "d2000000-0000-4000-8000-000000000002", 1500, true)

	opened, err := svc.Open(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, opened.SessionID)
	assert.Equal(t, "0.00", opened.Subtotal.String())
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), opened.ExpiresAt, time.Minute)

	_, err = svc.AddItem(ctx, opened.SessionID, "d1000000-0000-4000-8000-000000000001", 1)
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, opened.SessionID, "d1000000-0000-4000-8000-000000000001", 2)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.Lines[0].Quantity)
	assert.Equal(t, "74.85", view.Subtotal.String())

	view, err = svc.AddItem(ctx, opened.SessionID, "d2000000-0000-4000-8000-000000000002", 1)
	require.NoError(t, err)
	assert.Equal(t, "89.85", view.Subtotal.String())

	lines, err := svc.CheckoutLines(ctx, opened.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []WebshopCheckoutLine{
		{ItemUUID: "d1000000-0000-4000-8000-000000000001", Quantity: 3},
		{ItemUUID: "d2000000-0000-4000-8000-000000000002", Quantity: 1},
	}, lines)

	view, err = svc.RemoveItem(ctx, opened.SessionID, "d1000000-0000-4000-8000-000000000001")
	require.NoError(t, err)
	assert.Equal(t, "15.00", view.Subtotal.String())

	require.NoError(t, svc.Close(ctx, opened.SessionID))
	_, err = svc.Get(ctx, opened.SessionID)
	assert.ErrorIs(t, err, ErrCartSessionMissing)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartRejectsUnknownAndInactiveItems(t *testing.T) {
	svc, db := setupCartTest(t)
	ctx := context.Background()
	seedWebshopItem(t, db, "e1000000-0000-4000-8000-000000000001", 1000, false)
	opened, err := svc.Open(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, opened.SessionID, "e1000000-0000-4000-8000-000000000001", 1)
	assert.ErrorIs(t, err, ErrWebshopItemNotFound)
	_, err = svc.AddItem(ctx, opened.SessionID, "missing", 1)
	assert.ErrorIs(t, err, ErrWebshopItemNotFound)
	_, err = svc.AddItem(ctx, opened.SessionID, "e1000000-0000-4000-8000-000000000001", 0)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.AddItem(ctx, "", "e1000000-0000-4000-8000-000000000001", 1)
	assert.ErrorIs(t, err, ErrCartSessionMissing)

	_, err = svc.CheckoutLines(ctx, opened.SessionID)
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCartToggleFavorite(t *testing.T) {
	svc, _ := setupCartTest(t)
	ctx := context.Background()
	opened, err := svc.Open(ctx)
	require.NoError(t, err)

	on, err := svc.ToggleFavorite(ctx, opened.SessionID, "f1000000-0000-4000-8000-000000000001")
	require.NoError(t, err)
	assert.True(t, on)
	view, err := svc.Get(ctx, opened.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1000000-0000-4000-8000-000000000001"}, view.Favorites)

	off, err := svc.ToggleFavorite(ctx, opened.SessionID, "f1000000-0000-4000-8000-000000000001")
	require.NoError(t, err)
	assert.False(t, off)
	view, err = svc.Get(ctx, opened.SessionID)
	require.NoError(t, err)
	assert.Empty(t, view.Favorites)
}

func TestMemoryCartStoreExpires(t *testing.T) {
	store := cache.NewMemoryCartStore()
	ctx := context.Background()
	svc := NewCartService(store, nil, time.Hour)
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	require.NoError(t, store.Save(ctx, &cache.Cart{SessionID: "s1"}, time.Hour))
	cart, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, cart)

	require.NoError(t, store.Save(ctx, &cache.Cart{SessionID: "s2"}, -time.Second))
	cart, err = store.Load(ctx, "s2")
	require.NoError(t, err)
	assert.NotNil(t, cart, "non-positive ttl keeps the cart without expiry")

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCartSessionMissing)
}
