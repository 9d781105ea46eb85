package models

import (
	"time"

	"gorm.io/gorm"
)

// Tour is a bookable guided tour.
type Tour struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Slug            string         `gorm:"type:varchar(160);uniqueIndex;not null" json:"slug"`
	TitleJSON       JSON           `gorm:"type:json;not null" json:"title"`       // nl/en/fr
	DescriptionJSON JSON           `gorm:"type:json" json:"description"`          // nl/en/fr
	City            string         `gorm:"type:varchar(80);index" json:"city"`    // city slug
	Languages       StringArray    `gorm:"type:json" json:"languages"`            // guide languages
	Price           *Money         `gorm:"type:decimal(20,2)" json:"price"`       // per person, nil when on request
	DurationMinutes *int           `json:"duration_minutes"`                      // nil means the 120 minute default
	OpMaat          bool           `gorm:"not null;default:false" json:"op_maat"` // custom tour, slot agreed afterwards
	LocalStories    bool           `gorm:"not null;default:false" json:"local_stories"`
	StripeProductID string         `gorm:"type:varchar(80);index" json:"stripe_product_id"`
	StripePriceID   string         `gorm:"type:varchar(80)" json:"stripe_price_id"`
	IsActive        bool           `gorm:"not null;default:true;index" json:"is_active"`
	SortOrder       int            `gorm:"not null;default:0;index" json:"sort_order"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName table name
func (Tour) TableName() string {
	return "tours"
}

// DisplayTitle prefers the Dutch title, then English.
func (t *Tour) DisplayTitle() string {
	if t == nil {
		return "Tour"
	}
	if title := t.TitleJSON.Localized("nl", "en"); title != "" {
		return title
	}
	return "Tour"
}

// TourType derives the booking discriminator from the tour flags.
func (t *Tour) TourType() string {
	switch {
	case t.LocalStories:
		return "local_stories"
	case t.OpMaat:
		return "op_maat"
	default:
		return "standard"
	}
}
