package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// WebshopItem is a physical product sold in the webshop.
type WebshopItem struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	UUID            string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	Name            string         `gorm:"type:varchar(200);not null" json:"name"`
	Category        string         `gorm:"type:varchar(32);index" json:"category"` // Book / Merchandise / Game
	Price           Money          `gorm:"type:decimal(20,2);not null" json:"price"`
	Description     string         `gorm:"type:text" json:"description"`
	AdditionalInfo  string         `gorm:"type:text" json:"additional_info"`
	StripeProductID string         `gorm:"type:varchar(80);index" json:"stripe_product_id"`
	StripePriceID   string         `gorm:"type:varchar(80)" json:"stripe_price_id"`
	IsActive        bool           `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName table name
func (WebshopItem) TableName() string {
	return "webshop_items"
}

// WebshopOrder is a webshop checkout, pending until the webhook confirms it.
type WebshopOrder struct {
	ID              string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SessionID       *string       `gorm:"type:varchar(255);uniqueIndex" json:"session_id"`
	Status          string        `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CustomerName    string        `gorm:"type:varchar(160)" json:"customer_name"`
	CustomerEmail   string        `gorm:"type:varchar(255);index" json:"customer_email"`
	Items           OrderLineList `gorm:"type:json" json:"items"`
	ShippingAddress *Address      `gorm:"type:json;serializer:json" json:"shipping_address"`
	Subtotal        Money         `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`
	Shipping        Money         `gorm:"type:decimal(20,2);not null;default:0" json:"shipping"`
	Discount        Money         `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`
	Total           Money         `gorm:"type:decimal(20,2);not null;default:0" json:"total"`
	GiftCardCode    string        `gorm:"type:varchar(32)" json:"gift_card_code,omitempty"`
	ExpiresAt       time.Time     `gorm:"index" json:"expires_at"`
	CompletedAt     *time.Time    `json:"completed_at"`
	CreatedAt       time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TableName table name
func (WebshopOrder) TableName() string {
	return "webshop_orders"
}

// OrderLine is one purchased webshop item.
type OrderLine struct {
	ItemUUID  string `json:"itemUuid"`
	Name      string `json:"name"`
	UnitPrice Money  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// OrderLineList JSON column
type OrderLineList []OrderLine

// Value implements driver.Valuer.
func (l OrderLineList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]OrderLine{})
	}
	return json.Marshal([]OrderLine(l))
}

// Scan implements sql.Scanner.
func (l *OrderLineList) Scan(value interface{}) error {
	return scanJSONInto(value, (*[]OrderLine)(l))
}
