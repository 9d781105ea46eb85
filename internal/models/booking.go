package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Booking is a paid tour booking.
type Booking struct {
	ID               uint        `gorm:"primarykey" json:"id"`
	PendingBookingID string      `gorm:"type:varchar(36);uniqueIndex" json:"pending_booking_id"`
	SessionID        string      `gorm:"type:varchar(255);uniqueIndex" json:"session_id"`
	TourID           uint        `gorm:"not null;index" json:"tour_id"`
	TourType         string      `gorm:"type:varchar(20);not null" json:"tour_type"`
	Status           string      `gorm:"type:varchar(20);not null;index" json:"status"`
	CustomerName     string      `gorm:"type:varchar(160)" json:"customer_name"`
	CustomerEmail    string      `gorm:"type:varchar(255);index" json:"customer_email"`
	CustomerPhone    string      `gorm:"type:varchar(40)" json:"customer_phone"`
	TourDatetime     *string     `gorm:"type:varchar(19);index" json:"tour_datetime"` // Brussels local, no offset
	TourEndDatetime  *string     `gorm:"type:varchar(19)" json:"tour_end_datetime"`
	DurationMinutes  int         `gorm:"not null" json:"duration_minutes"`
	NumberOfPeople   int         `gorm:"not null;default:1" json:"number_of_people"`
	Language         string      `gorm:"type:varchar(8)" json:"language"`
	SpecialRequests  string      `gorm:"type:text" json:"special_requests"`
	AmountTotal      Money       `gorm:"type:decimal(20,2);not null;default:0" json:"amount_total"`
	Invitees         InviteeList `gorm:"type:json" json:"invitees"`
	Upsells          UpsellList  `gorm:"type:json" json:"upsells"`
	GiftCardCode     string      `gorm:"type:varchar(32)" json:"gift_card_code,omitempty"`
	CreatedAt        time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// TableName table name
func (Booking) TableName() string {
	return "bookings"
}

// InviteeList JSON column
type InviteeList []Invitee

// Value implements driver.Valuer.
func (l InviteeList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Invitee{})
	}
	return json.Marshal([]Invitee(l))
}

// Scan implements sql.Scanner.
func (l *InviteeList) Scan(value interface{}) error {
	return scanJSONInto(value, (*[]Invitee)(l))
}

// UpsellList JSON column
type UpsellList []UpsellSnapshot

// Value implements driver.Valuer.
func (l UpsellList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]UpsellSnapshot{})
	}
	return json.Marshal([]UpsellSnapshot(l))
}

// Scan implements sql.Scanner.
func (l *UpsellList) Scan(value interface{}) error {
	return scanJSONInto(value, (*[]UpsellSnapshot)(l))
}
