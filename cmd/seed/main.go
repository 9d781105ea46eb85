package main

import (
	"context"
	"errors"

	"github.com/tourshop/internal/config"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/repository"
	"github.com/tourshop/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("migrate database: %v", err)
	}

	ctx := context.Background()
	tours := service.NewTourService(repository.NewTourRepository(models.DB))
	content := service.NewContentService(repository.NewContentRepository(models.DB))

	for _, input := range demoTours() {
		tour, err := tours.Create(ctx, input)
		if errors.Is(err, service.ErrTourSlugTaken) {
			logger.Infow("seed_tour_exists", "slug", input.Slug)
			continue
		}
		if err != nil {
			stdLog.Fatalf("seed tour %s: %v", input.Slug, err)
		}
		logger.Infow("seed_tour_created", "tour_id", tour.ID, "slug", tour.Slug)
	}

	existing, err := content.ListFAQ(false)
	if err != nil {
		stdLog.Fatalf("list faq: %v", err)
	}
	if len(existing) == 0 {
		for _, input := range demoFAQ() {
			if _, err := content.CreateFAQ(ctx, input); err != nil {
				stdLog.Fatalf("seed faq: %v", err)
			}
		}
	}

	logger.Infow("seed_done")
}

func money(raw string) *models.Money {
	m := models.NewMoneyFromDecimal(decimal.RequireFromString(raw))
	return &m
}

func minutes(n int) *int {
	return &n
}

func demoTours() []service.TourInput {
	active := true
	return []service.TourInput{
		{
			Slug:            "grote-markt-wandeling",
			Title:           models.JSON{"nl": "Wandeling rond de Grote Markt", "en": "Grand Place walk", "fr": "Promenade autour de la Grand-Place"},
			City:            "brussel",
			Languages:       []string{"nl", "en", "fr"},
			Price:           money("29.00"),
			DurationMinutes: minutes(120),
			IsActive:        &active,
		},
		{
			Slug:            "marollen-verhalen",
			Title:           models.JSON{"nl": "Verhalen uit de Marollen", "en": "Stories from the Marolles"},
			City:            "brussel",
			Languages:       []string{"nl", "en"},
			Price:           money("24.00"),
			DurationMinutes: minutes(90),
			LocalStories:    true,
			IsActive:        &active,
		},
		{
			Slug:      "tour-op-maat",
			Title:     models.JSON{"nl": "Tour op maat", "en": "Custom tour"},
			City:      "brussel",
			Languages: []string{"nl", "en", "fr", "de"},
			Price:     money("175.00"),
			OpMaat:    true,
			IsActive:  &active,
		},
	}
}

func demoFAQ() []service.FAQInput {
	return []service.FAQInput{
		{
			Question: models.JSON{"nl": "Waar vertrekt de tour?", "en": "Where does the tour start?"},
			Answer:   models.JSON{"nl": "Aan het stadhuis op de Grote Markt.", "en": "At the town hall on the Grand Place."},
			Category: "praktisch",
		},
		{
			Question: models.JSON{"nl": "Kan ik mijn boeking annuleren?", "en": "Can I cancel my booking?"},
			Answer:   models.JSON{"nl": "Tot 48 uur voor vertrek, neem contact met ons op.", "en": "Up to 48 hours before departure, please contact us."},
			Category: "boeking",
		},
	}
}
