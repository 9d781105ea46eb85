package service

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/repository"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	giftCardAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	giftCardCodeLength  = 16
	giftCardGroupSize   = 4
	giftCardMaxAttempts = 10
)

// GiftCardService validation, redemption and admin management of gift cards.
type GiftCardService struct {
	repo     repository.GiftCardRepository
	currency string
	randRead func([]byte) (int, error)
	now      func() time.Time
}

// GiftCardValidation checkout-time lookup result.
type GiftCardValidation struct {
	Code             string       `json:"code"`
	CurrentBalance   models.Money `json:"current_balance"`
	InitialAmount    models.Money `json:"initial_amount"`
	ApplicableAmount models.Money `json:"applicable_amount"`
	Currency         string       `json:"currency"`
	Status           string       `json:"status"`
	ExpiresAt        *time.Time   `json:"expires_at"`
}

// GiftCardBalance public balance lookup result.
type GiftCardBalance struct {
	Code           string       `json:"code"`
	CurrentBalance models.Money `json:"current_balance"`
	InitialAmount  models.Money `json:"initial_amount"`
	Currency       string       `json:"currency"`
	Status         string       `json:"status"`
	ExpiresAt      *time.Time   `json:"expires_at"`
	LastUsedAt     *time.Time   `json:"last_used_at"`
	PurchasedAt    time.Time    `json:"purchased_at"`
}

// RedeemGiftCardInput debits a card for an order.
type RedeemGiftCardInput struct {
	Code            string
	Amount          models.Money
	OrderID         string
	StripeSessionID string
	Note            string
}

// RedeemGiftCardResult the updated card and its ledger row.
type RedeemGiftCardResult struct {
	Card        *models.GiftCard
	Transaction *models.GiftCardTransaction
	AmountUsed  models.Money
}

// CreateGiftCardInput admin issue input.
type CreateGiftCardInput struct {
	Amount          models.Money
	RecipientName   string
	RecipientEmail  string
	PurchaserName   string
	PurchaserEmail  string
	PersonalMessage string
	ExpiresAt       *time.Time
	StripeSessionID string
	CreatedBy       *uint
}

// UpdateGiftCardInput admin update input.
type UpdateGiftCardInput struct {
	Status          *string
	ExpiresAt       *time.Time
	ClearExpiresAt  bool
	RecipientName   *string
	RecipientEmail  *string
	PersonalMessage *string
}

// AdjustGiftCardInput adds (positive) or removes (negative) balance.
type AdjustGiftCardInput struct {
	Delta     models.Money
	Note      string
	CreatedBy *uint
}

// NewGiftCardService creates the service.
func NewGiftCardService(repo repository.GiftCardRepository, currency string) *GiftCardService {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	return &GiftCardService{
		repo:     repo,
		currency: currency,
		randRead: crand.Read,
		now:      time.Now,
	}
}

// NormalizeGiftCardCode uppercases and drops everything but A-Z, 0-9 and dashes.
func NormalizeGiftCardCode(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func giftCardCodeKey(code string) string {
	return strings.ReplaceAll(NormalizeGiftCardCode(code), "-", "")
}

// FormatGiftCardCode groups a dashless code in blocks of four.
func FormatGiftCardCode(key string) string {
	groups := lo.ChunkString(key, giftCardGroupSize)
	return strings.Join(groups, "-")
}

// Validate checks a code against an order total without touching the balance.
// A non-positive order total applies the full balance.
func (s *GiftCardService) Validate(ctx context.Context, code string, orderTotal models.Money) (*GiftCardValidation, error) {
	card, err := s.lookup(code)
	if err != nil {
		return nil, err
	}
	if err := s.checkRedeemable(card); err != nil {
		return nil, err
	}
	applicable := card.CurrentBalance
	if orderTotal.GreaterThan(decimal.Zero) && orderTotal.LessThan(card.CurrentBalance.Decimal) {
		applicable = orderTotal
	}
	return &GiftCardValidation{
		Code:             card.Code,
		CurrentBalance:   card.CurrentBalance,
		InitialAmount:    card.InitialAmount,
		ApplicableAmount: models.NewMoneyFromDecimal(applicable.Decimal),
		Currency:         card.Currency,
		Status:           card.Status,
		ExpiresAt:        card.ExpiresAt,
	}, nil
}

// Balance returns the card state for any status.
func (s *GiftCardService) Balance(ctx context.Context, code string) (*GiftCardBalance, error) {
	card, err := s.lookup(code)
	if err != nil {
		return nil, err
	}
	return &GiftCardBalance{
		Code:           card.Code,
		CurrentBalance: card.CurrentBalance,
		InitialAmount:  card.InitialAmount,
		Currency:       card.Currency,
		Status:         card.Status,
		ExpiresAt:      card.ExpiresAt,
		LastUsedAt:     card.LastUsedAt,
		PurchasedAt:    card.PurchasedAt,
	}, nil
}

// Redeem debits the card in its own transaction.
func (s *GiftCardService) Redeem(ctx context.Context, input RedeemGiftCardInput) (*RedeemGiftCardResult, error) {
	var result *RedeemGiftCardResult
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = s.RedeemInTx(tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RedeemInTx debits the card inside the caller's transaction. The balance is
// written with a compare-and-set on the value read, so a concurrent debit
// surfaces as ErrGiftCardConflict. Replays for the same session return the
// existing ledger row.
func (s *GiftCardService) RedeemInTx(tx *gorm.DB, input RedeemGiftCardInput) (*RedeemGiftCardResult, error) {
	if !input.Amount.GreaterThan(decimal.Zero) {
		return nil, ErrGiftCardAmountInvalid
	}
	repo := s.repo.WithTx(tx)
	key := giftCardCodeKey(input.Code)
	if key == "" {
		return nil, ErrGiftCardNotFound
	}
	card, err := repo.GetByCodeKeyForUpdate(key)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}

	if sessionID := strings.TrimSpace(input.StripeSessionID); sessionID != "" {
		txns, err := repo.ListTransactions(card.ID)
		if err != nil {
			return nil, err
		}
		if existing, ok := lo.Find(txns, func(txn models.GiftCardTransaction) bool {
			return txn.Type == constants.GiftCardTxnRedemption && txn.StripeSessionID == sessionID
		}); ok {
			return &RedeemGiftCardResult{Card: card, Transaction: &existing, AmountUsed: existing.AmountUsed}, nil
		}
	}

	if err := s.checkRedeemable(card); err != nil {
		return nil, err
	}

	before := card.CurrentBalance
	used := input.Amount
	if used.GreaterThan(before.Decimal) {
		used = before
	}
	after := models.NewMoneyFromDecimal(before.Sub(used.Decimal))
	status := constants.GiftCardStatusActive
	if !after.GreaterThan(decimal.Zero) {
		status = constants.GiftCardStatusRedeemed
	}
	now := s.now()
	ok, err := repo.CompareAndSetBalance(card.ID, before, after, status, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrGiftCardConflict
	}

	txn := &models.GiftCardTransaction{
		GiftCardID:      card.ID,
		OrderID:         input.OrderID,
		StripeSessionID: strings.TrimSpace(input.StripeSessionID),
		Type:            constants.GiftCardTxnRedemption,
		AmountUsed:      models.NewMoneyFromDecimal(used.Decimal),
		BalanceBefore:   before,
		BalanceAfter:    after,
		Note:            input.Note,
		CreatedAt:       now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, err
	}
	card.CurrentBalance = after
	card.Status = status
	card.LastUsedAt = &now
	logger.Infow("gift_card_redeemed",
		"gift_card_id", card.ID,
		"order_id", input.OrderID,
		"amount_used", txn.AmountUsed.String(),
		"balance_after", after.String(),
	)
	return &RedeemGiftCardResult{Card: card, Transaction: txn, AmountUsed: txn.AmountUsed}, nil
}

// GenerateCode draws an unused XXXX-XXXX-XXXX-XXXX code.
func (s *GiftCardService) GenerateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < giftCardMaxAttempts; attempt++ {
		key, err := s.randomCodeKey()
		if err != nil {
			return "", err
		}
		exists, err := s.repo.CodeKeyExists(key)
		if err != nil {
			return "", err
		}
		if !exists {
			return FormatGiftCardCode(key), nil
		}
		logger.Debugw("gift_card_code_collision", "attempt", attempt+1)
	}
	return "", ErrGiftCardCodeExhausted
}

func (s *GiftCardService) randomCodeKey() (string, error) {
	buf := make([]byte, giftCardCodeLength)
	if _, err := s.randRead(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	out := make([]byte, giftCardCodeLength)
	for i, b := range buf {
		// 256 is a multiple of the 32-letter alphabet, so the modulo is unbiased.
		out[i] = giftCardAlphabet[int(b)%len(giftCardAlphabet)]
	}
	return string(out), nil
}

// Create issues a new card with a generated code.
func (s *GiftCardService) Create(ctx context.Context, input CreateGiftCardInput) (*models.GiftCard, error) {
	amount := models.NewMoneyFromDecimal(input.Amount.Decimal)
	if !amount.GreaterThan(decimal.Zero) {
		return nil, ErrGiftCardAmountInvalid
	}
	code, err := s.GenerateCode(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	card := &models.GiftCard{
		Code:            code,
		CodeKey:         giftCardCodeKey(code),
		InitialAmount:   amount,
		CurrentBalance:  amount,
		Currency:        s.currency,
		Status:          constants.GiftCardStatusActive,
		RecipientName:   strings.TrimSpace(input.RecipientName),
		RecipientEmail:  strings.ToLower(strings.TrimSpace(input.RecipientEmail)),
		PurchaserName:   strings.TrimSpace(input.PurchaserName),
		PurchaserEmail:  strings.ToLower(strings.TrimSpace(input.PurchaserEmail)),
		PersonalMessage: strings.TrimSpace(input.PersonalMessage),
		StripeSessionID: strings.TrimSpace(input.StripeSessionID),
		ExpiresAt:       normalizeGiftCardExpireAt(input.ExpiresAt),
		PurchasedAt:     now,
		CreatedBy:       input.CreatedBy,
	}
	if err := s.repo.Create(card); err != nil {
		return nil, err
	}
	logger.Infow("gift_card_created", "gift_card_id", card.ID, "amount", amount.String())
	return card, nil
}

// List admin listing.
func (s *GiftCardService) List(ctx context.Context, filter repository.GiftCardListFilter) ([]models.GiftCard, int64, error) {
	filter.Code = giftCardCodeKey(filter.Code)
	return s.repo.List(filter)
}

// Get returns a card with its ledger.
func (s *GiftCardService) Get(ctx context.Context, id uint) (*models.GiftCard, error) {
	card, err := s.repo.GetByID(id)
	if err != nil {
		return nil, storeFailure(err)
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	txns, err := s.repo.ListTransactions(card.ID)
	if err != nil {
		return nil, storeFailure(err)
	}
	card.Transactions = txns
	return card, nil
}

// Update changes status, expiry or recipient details.
func (s *GiftCardService) Update(ctx context.Context, id uint, input UpdateGiftCardInput) (*models.GiftCard, error) {
	card, err := s.repo.GetByID(id)
	if err != nil {
		return nil, storeFailure(err)
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if !isGiftCardStatus(status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidState, status)
		}
		card.Status = status
	}
	if input.ClearExpiresAt {
		card.ExpiresAt = nil
	} else if input.ExpiresAt != nil {
		card.ExpiresAt = normalizeGiftCardExpireAt(input.ExpiresAt)
	}
	if input.RecipientName != nil {
		card.RecipientName = strings.TrimSpace(*input.RecipientName)
	}
	if input.RecipientEmail != nil {
		card.RecipientEmail = strings.ToLower(strings.TrimSpace(*input.RecipientEmail))
	}
	if input.PersonalMessage != nil {
		card.PersonalMessage = strings.TrimSpace(*input.PersonalMessage)
	}
	if err := s.repo.Update(card); err != nil {
		return nil, err
	}
	return card, nil
}

// Adjust moves the balance by delta within [0, initial amount] and writes an
// adjustment ledger row.
func (s *GiftCardService) Adjust(ctx context.Context, id uint, input AdjustGiftCardInput) (*models.GiftCard, error) {
	delta := models.NewMoneyFromDecimal(input.Delta.Decimal)
	if delta.IsZero() {
		return nil, ErrGiftCardAmountInvalid
	}
	var result *models.GiftCard
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		card, err := repo.GetByID(id)
		if err != nil {
			return err
		}
		if card == nil {
			return ErrGiftCardNotFound
		}
		before := card.CurrentBalance
		after := models.NewMoneyFromDecimal(before.Add(delta.Decimal))
		if after.IsNegative() || after.GreaterThan(card.InitialAmount.Decimal) {
			return fmt.Errorf("%w: balance must stay between 0 and %s", ErrGiftCardAmountInvalid, card.InitialAmount)
		}
		status := card.Status
		switch {
		case after.IsZero() && status == constants.GiftCardStatusActive:
			status = constants.GiftCardStatusRedeemed
		case after.IsPositive() && status == constants.GiftCardStatusRedeemed:
			status = constants.GiftCardStatusActive
		}
		now := s.now()
		ok, err := repo.CompareAndSetBalance(card.ID, before, after, status, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrGiftCardConflict
		}
		if err := repo.CreateTransaction(&models.GiftCardTransaction{
			GiftCardID:    card.ID,
			Type:          constants.GiftCardTxnAdjustment,
			AmountUsed:    models.NewMoneyFromDecimal(before.Sub(after.Decimal)),
			BalanceBefore: before,
			BalanceAfter:  after,
			Note:          strings.TrimSpace(input.Note),
			CreatedBy:     input.CreatedBy,
			CreatedAt:     now,
		}); err != nil {
			return err
		}
		card.CurrentBalance = after
		card.Status = status
		card.LastUsedAt = &now
		result = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete soft deletes a card.
func (s *GiftCardService) Delete(ctx context.Context, id uint) error {
	card, err := s.repo.GetByID(id)
	if err != nil {
		return storeFailure(err)
	}
	if card == nil {
		return ErrGiftCardNotFound
	}
	return s.repo.Delete(id)
}

func (s *GiftCardService) lookup(code string) (*models.GiftCard, error) {
	key := giftCardCodeKey(code)
	if key == "" {
		return nil, ErrGiftCardNotFound
	}
	card, err := s.repo.GetByCodeKey(key)
	if err != nil {
		return nil, storeFailure(err)
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	return card, nil
}

// checkRedeemable rejects in order: status, empty balance, expiry.
func (s *GiftCardService) checkRedeemable(card *models.GiftCard) error {
	if card.Status != constants.GiftCardStatusActive {
		return &GiftCardStatusError{Status: card.Status}
	}
	if !card.CurrentBalance.GreaterThan(decimal.Zero) {
		return ErrGiftCardEmpty
	}
	if isGiftCardExpired(card.ExpiresAt, s.now()) {
		return ErrGiftCardExpired
	}
	return nil
}

func isGiftCardStatus(status string) bool {
	switch status {
	case constants.GiftCardStatusActive, constants.GiftCardStatusRedeemed,
		constants.GiftCardStatusExpired, constants.GiftCardStatusCancelled:
		return true
	default:
		return false
	}
}

// IsGiftCardError reports whether err belongs to the gift card rejections.
func IsGiftCardError(err error) bool {
	var statusErr *GiftCardStatusError
	return errors.As(err, &statusErr) ||
		errors.Is(err, ErrGiftCardNotFound) ||
		errors.Is(err, ErrGiftCardInactive) ||
		errors.Is(err, ErrGiftCardEmpty) ||
		errors.Is(err, ErrGiftCardExpired)
}

func normalizeGiftCardExpireAt(raw *time.Time) *time.Time {
	if raw == nil || raw.IsZero() {
		return nil
	}
	value := raw.UTC()
	return &value
}

func isGiftCardExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil || expiresAt.IsZero() {
		return false
	}
	return expiresAt.Before(now)
}
