package constants

// Tour types stored on pending and confirmed bookings
const (
	TourTypeStandard     = "standard"
	TourTypeLocalStories = "local_stories"
	TourTypeOpMaat       = "op_maat"
)

// Pending booking / webshop order lifecycle
const (
	PendingStatusPending   = "pending"
	PendingStatusCompleted = "completed"
	PendingStatusExpired   = "expired"
)

// Confirmed booking status
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Gift card status
const (
	GiftCardStatusActive    = "active"
	GiftCardStatusRedeemed  = "redeemed"
	GiftCardStatusExpired   = "expired"
	GiftCardStatusCancelled = "cancelled"
)

// Gift card ledger entry types
const (
	GiftCardTxnRedemption = "redemption"
	GiftCardTxnRefund     = "refund"
	GiftCardTxnAdjustment = "adjustment"
)

// Webshop categories
const (
	WebshopCategoryBook        = "Book"
	WebshopCategoryMerchandise = "Merchandise"
	WebshopCategoryGame        = "Game"
)

// Checkout session metadata
const (
	OrderTypeTour    = "tour"
	OrderTypeWebshop = "webshop"
)

// Content kinds that support admin reordering
const (
	ContentKindFAQ   = "faq"
	ContentKindPress = "press"
)

// Catalog sync triggers
const (
	SyncTriggerAdmin    = "admin"
	SyncTriggerSchedule = "schedule"
	SyncTriggerCLI      = "cli"
)

// Queue names and task types
const (
	QueueDefault         = "default"
	TaskCatalogSync      = "catalog:sync"
	TaskBookingConfirmed = "booking:confirmed_notify"
)

// Currency used for every price in the shop
const DefaultCurrency = "EUR"

// Timezone every tour wall-clock time is expressed in
const TourTimezone = "Europe/Brussels"
