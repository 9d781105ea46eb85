package repository

import "time"

// TourListFilter admin and storefront tour listing
type TourListFilter struct {
	Page       int
	PageSize   int
	City       string
	Search     string
	OnlyActive bool
}

// GiftCardListFilter admin gift card listing
type GiftCardListFilter struct {
	Page        int
	PageSize    int
	Code        string
	Status      string
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// BookingListFilter admin booking listing
type BookingListFilter struct {
	Page     int
	PageSize int
	TourID   uint
	Status   string
	Email    string
	From     string // Brussels local ISO lower bound on tour_datetime
	To       string
}

// PendingBookingListFilter admin pending booking listing
type PendingBookingListFilter struct {
	Page     int
	PageSize int
	Status   string
	TourID   uint
}

// WebshopItemListFilter webshop listing
type WebshopItemListFilter struct {
	Page       int
	PageSize   int
	Category   string
	OnlyActive bool
}

// ProfileListFilter admin profile listing
type ProfileListFilter struct {
	Page      int
	PageSize  int
	Search    string
	OnlyAdmin bool
}
