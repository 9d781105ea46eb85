package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// FAQItem is a question shown on the FAQ page.
type FAQItem struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	QuestionJSON JSON           `gorm:"type:json;not null" json:"question"`
	AnswerJSON   JSON           `gorm:"type:json" json:"answer"`
	Category     string         `gorm:"type:varchar(64);index" json:"category"`
	SortOrder    int            `gorm:"not null;default:0;index" json:"sort_order"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName table name
func (FAQItem) TableName() string {
	return "faq_items"
}

// PressItem is a press mention on the press wall.
type PressItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	TitleJSON   JSON           `gorm:"type:json;not null" json:"title"`
	Outlet      string         `gorm:"type:varchar(120)" json:"outlet"`
	URL         string         `gorm:"type:varchar(500)" json:"url"`
	LogoURL     string         `gorm:"type:varchar(500)" json:"logo_url"`
	PublishedAt *time.Time     `json:"published_at"`
	SortOrder   int            `gorm:"not null;default:0;index" json:"sort_order"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName table name
func (PressItem) TableName() string {
	return "press_items"
}

// Profile is a storefront customer profile.
type Profile struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName  string    `gorm:"type:varchar(160)" json:"full_name"`
	Phone     string    `gorm:"type:varchar(40)" json:"phone"`
	Locale    string    `gorm:"type:varchar(8);default:'nl'" json:"locale"`
	IsAdmin   bool      `gorm:"not null;default:false;index" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName table name
func (Profile) TableName() string {
	return "profiles"
}

// CatalogSyncRun records one mirror run to the inventory platform.
type CatalogSyncRun struct {
	ID         uint          `gorm:"primarykey" json:"id"`
	Trigger    string        `gorm:"type:varchar(16);not null" json:"trigger"`
	Status     string        `gorm:"type:varchar(16);not null;index" json:"status"` // running / finished / failed
	BrandID    string        `gorm:"type:varchar(64)" json:"brand_id"`
	Total      int           `gorm:"not null;default:0" json:"total"`
	Succeeded  int           `gorm:"not null;default:0" json:"succeeded"`
	Failed     int           `gorm:"not null;default:0" json:"failed"`
	Errors     SyncErrorList `gorm:"type:json" json:"errors"`
	Message    string        `gorm:"type:text" json:"message"`
	StartedAt  time.Time     `gorm:"index" json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at"`
}

// TableName table name
func (CatalogSyncRun) TableName() string {
	return "catalog_sync_runs"
}

// SyncError is one product that failed to mirror.
type SyncError struct {
	ProductID string `json:"productId"`
	Error     string `json:"error"`
}

// SyncErrorList JSON column
type SyncErrorList []SyncError

// Value implements driver.Valuer.
func (l SyncErrorList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]SyncError{})
	}
	return json.Marshal([]SyncError(l))
}

// Scan implements sql.Scanner.
func (l *SyncErrorList) Scan(value interface{}) error {
	return scanJSONInto(value, (*[]SyncError)(l))
}
