package models

import (
	"time"

	"gorm.io/gorm"
)

// GiftCard is a prepaid euro balance redeemable at checkout.
type GiftCard struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Code            string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`  // XXXX-XXXX-XXXX-XXXX
	CodeKey         string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"-"`     // code without dashes, used for lookups
	InitialAmount   Money          `gorm:"type:decimal(20,2);not null" json:"initial_amount"`  // face value
	CurrentBalance  Money          `gorm:"type:decimal(20,2);not null" json:"current_balance"` // never above InitialAmount
	Currency        string         `gorm:"type:varchar(8);not null;default:'EUR'" json:"currency"`
	Status          string         `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	RecipientName   string         `gorm:"type:varchar(160)" json:"recipient_name"`
	RecipientEmail  string         `gorm:"type:varchar(255);index" json:"recipient_email"`
	PurchaserName   string         `gorm:"type:varchar(160)" json:"purchaser_name"`
	PurchaserEmail  string         `gorm:"type:varchar(255);index" json:"purchaser_email"`
	PersonalMessage string         `gorm:"type:text" json:"personal_message"`
	StripeSessionID string         `gorm:"type:varchar(255);index" json:"stripe_session_id,omitempty"`
	ExpiresAt       *time.Time     `gorm:"index" json:"expires_at"`
	LastUsedAt      *time.Time     `json:"last_used_at"`
	PurchasedAt     time.Time      `gorm:"index" json:"purchased_at"`
	CreatedBy       *uint          `gorm:"index" json:"created_by,omitempty"` // admin id for manually issued cards
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Transactions []GiftCardTransaction `gorm:"foreignKey:GiftCardID" json:"transactions,omitempty"`
}

// TableName table name
func (GiftCard) TableName() string {
	return "gift_cards"
}

// GiftCardTransaction is an immutable balance ledger entry.
type GiftCardTransaction struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	GiftCardID      uint      `gorm:"not null;index" json:"gift_card_id"`
	OrderID         string    `gorm:"type:varchar(64);index" json:"order_id"` // pending booking or webshop order id
	StripeSessionID string    `gorm:"type:varchar(255);index" json:"stripe_session_id"`
	Type            string    `gorm:"type:varchar(16);not null" json:"transaction_type"`
	AmountUsed      Money     `gorm:"type:decimal(20,2);not null" json:"amount_used"`
	BalanceBefore   Money     `gorm:"type:decimal(20,2);not null" json:"balance_before"`
	BalanceAfter    Money     `gorm:"type:decimal(20,2);not null" json:"balance_after"`
	Note            string    `gorm:"type:varchar(255)" json:"note,omitempty"`
	CreatedBy       *uint     `json:"created_by,omitempty"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

// TableName table name
func (GiftCardTransaction) TableName() string {
	return "gift_card_transactions"
}
