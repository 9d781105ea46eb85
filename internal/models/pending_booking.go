package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// PendingBooking is written before the checkout session is created and
// promoted to a Booking once the payment webhook confirms the session.
type PendingBooking struct {
	ID            string         `gorm:"primaryKey;type:varchar(36)" json:"id"` // uuid generated before any upstream call
	SessionID     *string        `gorm:"type:varchar(255);uniqueIndex" json:"session_id"`
	TourID        uint           `gorm:"not null;index" json:"tour_id"`
	TourType      string         `gorm:"type:varchar(20);not null" json:"tour_type"`
	Status        string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CustomerName  string         `gorm:"type:varchar(160)" json:"customer_name"`
	CustomerEmail string         `gorm:"type:varchar(255);index" json:"customer_email"`
	AmountTotal   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount_total"`
	Payload       PendingPayload `gorm:"type:json" json:"payload"`
	ExpiresAt     time.Time      `gorm:"index" json:"expires_at"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName table name
func (PendingBooking) TableName() string {
	return "pending_bookings"
}

// PendingPayload holds every resolved booking field.
type PendingPayload struct {
	TourDatetime    *string          `json:"tourDatetime"`
	TourEndDatetime *string          `json:"tourEndDatetime"`
	DurationMinutes int              `json:"durationMinutes"`
	NumberOfPeople  int              `json:"numberOfPeople"`
	Language        string           `json:"language"`
	CustomerPhone   string           `json:"customerPhone,omitempty"`
	SpecialRequests string           `json:"specialRequests,omitempty"`
	UserID          string           `json:"userId,omitempty"`
	Locale          string           `json:"locale,omitempty"`
	PersonalGuide   bool             `json:"requestTanguy"`
	ExtraHour       bool             `json:"extraHour"`
	WeekendFee      bool             `json:"weekendFee"`
	EveningFee      bool             `json:"eveningFee"`
	Amounts         AmountsBreakdown `json:"amounts"`
	Upsells         []UpsellSnapshot `json:"upsells,omitempty"`
	ShippingAddress *Address         `json:"shippingAddress,omitempty"`
	GiftCardCode    string           `json:"giftCardCode,omitempty"`
	GiftCardAmount  *Money           `json:"giftCardDiscount,omitempty"`
	CouponID        string           `json:"couponId,omitempty"`
	Invitees        []Invitee        `json:"invitees,omitempty"`
}

// AmountsBreakdown mirrors the priced line items in euro.
type AmountsBreakdown struct {
	TourSubtotal  Money `json:"tourSubtotal"`
	Discount      Money `json:"discount"`
	PersonalGuide Money `json:"personalGuideFee"`
	ExtraHour     Money `json:"extraHourFee"`
	Weekend       Money `json:"weekendFee"`
	Evening       Money `json:"eveningFee"`
	Upsells       Money `json:"upsellsTotal"`
	Shipping      Money `json:"shipping"`
	GiftCard      Money `json:"giftCardDiscount"`
	Total         Money `json:"total"`
}

// UpsellSnapshot is an upsell product as it was priced at checkout.
type UpsellSnapshot struct {
	Name      string `json:"name"`
	UnitPrice Money  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// Address is a shipping address.
type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Invitee is one participant of a local stories slot.
type Invitee struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	People int    `json:"people"`
}

// Value implements driver.Valuer.
func (p PendingPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *PendingPayload) Scan(value interface{}) error {
	return scanJSONInto(value, p)
}
