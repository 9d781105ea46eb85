package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupRepositoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func newPending(tourID uint, expiresAt time.Time) *models.PendingBooking {
	return &models.PendingBooking{
		ID:        uuid.NewString(),
		TourID:    tourID,
		TourType:  constants.TourTypeStandard,
		Status:    constants.PendingStatusPending,
		ExpiresAt: expiresAt,
	}
}

func TestPendingBookingAttachSessionOnce(t *testing.T) {
	repo := NewPendingBookingRepository(setupRepositoryDB(t))
	first := newPending(1, time.Now().Add(time.Hour))
	second := newPending(1, time.Now().Add(time.Hour))
	for _, p := range []*models.PendingBooking{first, second} {
		if err := repo.Create(p); err != nil {
			t.Fatalf("create pending failed: %v", err)
		}
	}

	if err := repo.AttachSession(first.ID, "cs_test_1"); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if err := repo.AttachSession(first.ID, "cs_test_1"); err != nil {
		t.Fatalf("re-attaching the same session should be a no-op: %v", err)
	}
	if err := repo.AttachSession(first.ID, "cs_test_2"); err != ErrSessionAlreadyAttached {
		t.Fatalf("expected ErrSessionAlreadyAttached, got %v", err)
	}
	if err := repo.AttachSession(second.ID, "cs_test_1"); err == nil {
		t.Fatalf("expected unique violation when two records share a session")
	}

	got, err := repo.GetBySessionID("cs_test_1")
	if err != nil || got == nil || got.ID != first.ID {
		t.Fatalf("lookup by session failed: %+v %v", got, err)
	}
}

func TestPendingBookingExpireBefore(t *testing.T) {
	repo := NewPendingBookingRepository(setupRepositoryDB(t))
	now := time.Now()
	stale := newPending(1, now.Add(-time.Minute))
	fresh := newPending(1, now.Add(time.Hour))
	done := newPending(1, now.Add(-time.Hour))
	done.Status = constants.PendingStatusCompleted
	for _, p := range []*models.PendingBooking{stale, fresh, done} {
		if err := repo.Create(p); err != nil {
			t.Fatalf("create pending failed: %v", err)
		}
	}

	n, err := repo.ExpireBefore(now)
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired row, got %d", n)
	}
	got, _ := repo.GetByID(done.ID)
	if got.Status != constants.PendingStatusCompleted {
		t.Fatalf("completed record must not expire, got %s", got.Status)
	}
}

func TestWebshopItemUpsertKeepsStripeIDs(t *testing.T) {
	repo := NewWebshopItemRepository(setupRepositoryDB(t))
	item := &models.WebshopItem{
		UUID:     "8b1f2a52-6b3c-4a5e-9b0a-3d3f1f7c2e11",
		Name:     "Brussel in 100 verhalen",
		Category: constants.WebshopCategoryBook,
		Price:    models.NewMoneyFromDecimal(decimal.RequireFromString("24.95")),
	}
	if err := repo.Upsert(item); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	item.StripeProductID = "prod_123"
	if err := repo.Update(item); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	again := &models.WebshopItem{
		UUID:     item.UUID,
		Name:     "Brussel in 100 verhalen (2e druk)",
		Category: constants.WebshopCategoryBook,
		Price:    models.NewMoneyFromDecimal(decimal.RequireFromString("27.50")),
	}
	if err := repo.Upsert(again); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if again.ID != item.ID || again.StripeProductID != "prod_123" || again.Price.String() != "27.50" {
		t.Fatalf("unexpected upsert result: %+v", again)
	}
}

func TestContentApplyOrder(t *testing.T) {
	repo := NewContentRepository(setupRepositoryDB(t))
	for i := 0; i < 3; i++ {
		item := &models.FAQItem{QuestionJSON: models.JSON{"nl": fmt.Sprintf("vraag %d", i)}, SortOrder: i}
		if err := repo.SaveFAQ(item); err != nil {
			t.Fatalf("save faq failed: %v", err)
		}
	}
	ids, err := repo.OrderedIDs(constants.ContentKindFAQ)
	if err != nil || len(ids) != 3 {
		t.Fatalf("ordered ids: %v %v", ids, err)
	}
	reversed := []uint{ids[2], ids[1], ids[0]}
	if err := repo.ApplyOrder(constants.ContentKindFAQ, reversed); err != nil {
		t.Fatalf("apply order failed: %v", err)
	}
	after, _ := repo.OrderedIDs(constants.ContentKindFAQ)
	for i := range reversed {
		if after[i] != reversed[i] {
			t.Fatalf("order mismatch: got %v want %v", after, reversed)
		}
	}
	if err := repo.ApplyOrder(constants.ContentKindFAQ, []uint{ids[0], 9999}); err == nil {
		t.Fatalf("expected failure for unknown id")
	}
	rolledBack, _ := repo.OrderedIDs(constants.ContentKindFAQ)
	if rolledBack[0] != reversed[0] {
		t.Fatalf("failed reorder must roll back, got %v", rolledBack)
	}
	if _, err := repo.OrderedIDs("blog"); err != ErrUnknownContentKind {
		t.Fatalf("expected ErrUnknownContentKind, got %v", err)
	}
}

func TestGiftCardCompareAndSetBalance(t *testing.T) {
	repo := NewGiftCardRepository(setupRepositoryDB(t))
	card := &models.GiftCard{
		Code:           "ABCD-EFGH-JKLM-NPQR",
		CodeKey:        "ABCDEFGHJKLMNPQR",
		InitialAmount:  models.NewMoneyFromMinor(5000),
		CurrentBalance: models.NewMoneyFromMinor(5000),
		Status:         constants.GiftCardStatusActive,
		PurchasedAt:    time.Now(),
	}
	if err := repo.Create(card); err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	ok, err := repo.CompareAndSetBalance(card.ID, models.NewMoneyFromMinor(5000), models.NewMoneyFromMinor(2000), constants.GiftCardStatusActive, time.Now())
	if err != nil || !ok {
		t.Fatalf("first CAS should apply: %v %v", ok, err)
	}
	ok, err = repo.CompareAndSetBalance(card.ID, models.NewMoneyFromMinor(5000), models.NewMoneyFromMinor(0), constants.GiftCardStatusRedeemed, time.Now())
	if err != nil || ok {
		t.Fatalf("stale CAS must not apply: %v %v", ok, err)
	}
	got, _ := repo.GetByCodeKey("ABCDEFGHJKLMNPQR")
	if got.CurrentBalance.String() != "20.00" {
		t.Fatalf("balance = %s", got.CurrentBalance)
	}
}

func TestTourListSearchesLocalizedTitle(t *testing.T) {
	db := setupRepositoryDB(t)
	repo := NewTourRepository(db)
	tours := []*models.Tour{
		{Slug: "grote-markt", City: "brussel", TitleJSON: models.JSON{"nl": "Grote Markt", "fr": "Grand-Place"}, IsActive: true},
		{Slug: "atomium", City: "brussel", TitleJSON: models.JSON{"nl": "Atomium en Heizel"}, IsActive: true},
		{Slug: "bruges-day", City: "brugge", TitleJSON: models.JSON{"en": "Day trip to Bruges"}},
	}
	for _, tour := range tours {
		if err := db.Create(tour).Error; err != nil {
			t.Fatalf("create tour failed: %v", err)
		}
	}
	// zero values fall back to the column default on insert
	if err := db.Model(tours[2]).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate tour failed: %v", err)
	}

	found, total, err := repo.List(TourListFilter{Page: 1, PageSize: 10, Search: "Grand-Place"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(found) != 1 || found[0].Slug != "grote-markt" {
		t.Fatalf("french title search should find grote-markt, got total=%d %+v", total, found)
	}

	found, total, err = repo.List(TourListFilter{Page: 1, PageSize: 10, Search: "brugge"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || found[0].Slug != "bruges-day" {
		t.Fatalf("city search should find bruges-day, got total=%d", total)
	}

	_, total, err = repo.List(TourListFilter{Page: 1, PageSize: 10, OnlyActive: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("active tours want 2 got %d", total)
	}
}
