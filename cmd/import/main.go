package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tourshop/internal/config"
	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/inventory"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/payment/stripe"
	"github.com/tourshop/internal/repository"
	"github.com/tourshop/internal/service"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	app := &cli.App{
		Name:  "tourshop-import",
		Usage: "Seed the webshop catalog and mirror products to the inventory platform",
		Commands: []*cli.Command{
			{
				Name:  "catalog",
				Usage: "import the fixed webshop catalog into the database and the payment processor",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "report what would change without writing"},
				},
				Action: runCatalogImport,
			},
			{
				Name:  "sync",
				Usage: "mirror payment processor products into the inventory platform",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "product", Usage: "limit the run to these product ids"},
					&cli.StringFlag{Name: "brand", Usage: "inventory brand id override"},
					&cli.BoolFlag{Name: "test", Usage: "sync only the configured test product"},
				},
				Action: runCatalogSync,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.StdLogger().Fatalf("tourshop-import: %v", err)
	}
}

func bootstrap() (*config.Config, error) {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return cfg, nil
}

func runCatalogImport(c *cli.Context) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	dryRun := c.Bool("dry-run")
	stripeClient := stripe.NewClient(cfg.Stripe.ToClientConfig())
	if !dryRun && !stripeClient.Configured() {
		return errors.New("stripe.secret_key is required")
	}

	svc := service.NewCatalogImportService(repository.NewWebshopItemRepository(models.DB), stripeClient, cfg.Stripe.Currency)
	report, err := svc.Import(c.Context, service.WebshopCatalog, service.ImportOptions{DryRun: dryRun})
	if err != nil {
		return err
	}

	fmt.Printf("Created:  %d\n", report.Created)
	fmt.Printf("Updated:  %d\n", report.Updated)
	fmt.Printf("Skipped:  %d\n", report.Skipped)
	fmt.Printf("Errors:   %d\n", report.Errors)
	fmt.Printf("Total:    %d\n", report.Total)
	for _, failure := range report.Failures {
		fmt.Printf("  %s (%s): %s\n", failure.Name, failure.UUID, failure.Error)
	}
	if report.Errors > 0 {
		return cli.Exit(fmt.Sprintf("%d items failed", report.Errors), 1)
	}
	return nil
}

func runCatalogSync(c *cli.Context) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	inventoryClient, err := inventory.NewClient(cfg.Inventory.ToClientConfig())
	if err != nil {
		return err
	}
	svc := service.NewCatalogSyncService(
		inventoryClient,
		stripe.NewClient(cfg.Stripe.ToClientConfig()),
		repository.NewCatalogSyncRunRepository(models.DB),
		nil,
		service.CatalogSyncSettings{
			ShopID:        cfg.Inventory.ShopID,
			BrandID:       cfg.Inventory.BrandID,
			TestProductID: cfg.Inventory.TestProductID,
			BaseDelay:     cfg.Inventory.BaseDelay(),
			MaxWait:       cfg.Inventory.MaxBackoff(),
		},
	)
	result, err := svc.Run(c.Context, service.SyncInput{
		ProductIDs: c.StringSlice("product"),
		Trigger:    constants.SyncTriggerCLI,
		BrandID:    c.String("brand"),
		TestMode:   c.Bool("test"),
	})
	if result != nil {
		fmt.Printf("Brand:        %s\n", result.BrandID)
		fmt.Printf("Total:        %d\n", result.Summary.Total)
		fmt.Printf("Successful:   %d\n", result.Summary.Successful)
		fmt.Printf("Failed:       %d\n", result.Summary.Failed)
		fmt.Printf("Success rate: %s\n", result.Summary.SuccessRate)
		for _, syncErr := range result.Errors {
			fmt.Printf("  %s: %s\n", syncErr.ProductID, syncErr.Error)
		}
	}
	return err
}
