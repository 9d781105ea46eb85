package provider

import (
	"time"

	"github.com/tourshop/internal/authz"
	"github.com/tourshop/internal/cache"
	"github.com/tourshop/internal/config"
	"github.com/tourshop/internal/inventory"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/payment/stripe"
	"github.com/tourshop/internal/queue"
	"github.com/tourshop/internal/repository"
	"github.com/tourshop/internal/service"
)

// Container wires repositories and services once per process.
type Container struct {
	Config       *config.Config
	QueueClient  *queue.Client
	StripeClient *stripe.Client

	// Repositories
	AdminRepo          repository.AdminRepository
	TourRepo           repository.TourRepository
	PendingBookingRepo repository.PendingBookingRepository
	BookingRepo        repository.BookingRepository
	GiftCardRepo       repository.GiftCardRepository
	WebshopItemRepo    repository.WebshopItemRepository
	WebshopOrderRepo   repository.WebshopOrderRepository
	ContentRepo        repository.ContentRepository
	ProfileRepo        repository.ProfileRepository
	CatalogSyncRunRepo repository.CatalogSyncRunRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	TourService         *service.TourService
	GiftCardService     *service.GiftCardService
	BookingService      *service.BookingService
	CheckoutService     *service.CheckoutService
	CartService         *service.CartService
	WebshopService      *service.WebshopService
	ContentService      *service.ContentService
	ReorderService      *service.ReorderService
	ProfileService      *service.ProfileService
	CatalogSyncService  *service.CatalogSyncService
	NotificationService *service.NotificationService
}

// NewContainer connects Redis and the queue client, then builds repositories and services.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:       cfg,
		QueueClient:  queueClient,
		StripeClient: stripe.NewClient(cfg.Stripe.ToClientConfig()),
	}
	if !c.StripeClient.Configured() {
		logger.Warnw("provider_stripe_not_configured")
	}

	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.TourRepo = repository.NewTourRepository(db)
	c.PendingBookingRepo = repository.NewPendingBookingRepository(db)
	c.BookingRepo = repository.NewBookingRepository(db)
	c.GiftCardRepo = repository.NewGiftCardRepository(db)
	c.WebshopItemRepo = repository.NewWebshopItemRepository(db)
	c.WebshopOrderRepo = repository.NewWebshopOrderRepository(db)
	c.ContentRepo = repository.NewContentRepository(db)
	c.ProfileRepo = repository.NewProfileRepository(db)
	c.CatalogSyncRunRepo = repository.NewCatalogSyncRunRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	cfg := c.Config
	c.AuthService = service.NewAuthService(cfg.JWT, cfg.Security.PasswordPolicy, c.AdminRepo)
	c.TourService = service.NewTourService(c.TourRepo)
	c.GiftCardService = service.NewGiftCardService(c.GiftCardRepo, cfg.Stripe.Currency)
	c.NotificationService = service.NewNotificationService(cfg.Notify, c.BookingRepo, c.WebshopOrderRepo)
	c.BookingService = service.NewBookingService(
		c.PendingBookingRepo,
		c.BookingRepo,
		c.WebshopOrderRepo,
		c.GiftCardService,
		c.QueueClient,
		time.Duration(cfg.Checkout.PendingTTLMinutes)*time.Minute,
	)
	c.BookingService.SetNotifier(c.NotificationService)
	c.CheckoutService = service.NewCheckoutService(
		c.TourRepo,
		c.PendingBookingRepo,
		c.WebshopItemRepo,
		c.WebshopOrderRepo,
		c.BookingService,
		c.GiftCardService,
		service.NewPricingComposer(service.PricingSettingsFromConfig(cfg.Checkout)),
		c.StripeClient,
		service.CheckoutSettings{
			SiteOrigin:        cfg.Checkout.SiteOrigin,
			DefaultLocale:     cfg.Checkout.DefaultLocale,
			ShippingCountries: cfg.Checkout.Shipping.AllowedCountries,
		},
	)
	c.CartService = service.NewCartService(cache.NewCartStore(), c.WebshopItemRepo, time.Duration(cfg.Cart.TTLHours)*time.Hour)
	c.WebshopService = service.NewWebshopService(c.WebshopItemRepo)
	c.ContentService = service.NewContentService(c.ContentRepo)
	c.ReorderService = service.NewReorderService(c.ContentRepo)
	c.ProfileService = service.NewProfileService(c.ProfileRepo)

	var inventoryGateway service.InventoryGateway
	if cfg.Inventory.Enabled() {
		client, err := inventory.NewClient(cfg.Inventory.ToClientConfig())
		if err != nil {
			logger.Warnw("provider_init_inventory_client_failed", "error", err)
		} else {
			inventoryGateway = client
		}
	}
	c.CatalogSyncService = service.NewCatalogSyncService(
		inventoryGateway,
		c.StripeClient,
		c.CatalogSyncRunRepo,
		c.QueueClient,
		service.CatalogSyncSettings{
			ShopID:        cfg.Inventory.ShopID,
			BrandID:       cfg.Inventory.BrandID,
			TestProductID: cfg.Inventory.TestProductID,
			BaseDelay:     cfg.Inventory.BaseDelay(),
			MaxWait:       cfg.Inventory.MaxBackoff(),
		},
	)
}
