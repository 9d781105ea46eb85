package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/repository"

	"github.com/samber/lo"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// TourInput admin create and update payload.
type TourInput struct {
	Slug            string        `json:"slug"`
	Title           models.JSON   `json:"title"`
	Description     models.JSON   `json:"description"`
	City            string        `json:"city"`
	Languages       []string      `json:"languages"`
	Price           *models.Money `json:"price"`
	DurationMinutes *int          `json:"duration_minutes"`
	OpMaat          bool          `json:"op_maat"`
	LocalStories    bool          `json:"local_stories"`
	IsActive        *bool         `json:"is_active"`
	SortOrder       int           `json:"sort_order"`
	StripeProductID string        `json:"stripe_product_id"`
	StripePriceID   string        `json:"stripe_price_id"`
}

// TourService tour catalog reads and admin writes.
type TourService struct {
	repo repository.TourRepository
}

// NewTourService creates the service.
func NewTourService(repo repository.TourRepository) *TourService {
	return &TourService{repo: repo}
}

// List pages through tours.
func (s *TourService) List(filter repository.TourListFilter) ([]models.Tour, int64, error) {
	return s.repo.List(filter)
}

// Get returns ErrTourNotFound for unknown ids.
func (s *TourService) Get(id uint) (*models.Tour, error) {
	tour, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, ErrTourNotFound
	}
	return tour, nil
}

// GetPublic resolves an active tour by numeric id or slug.
func (s *TourService) GetPublic(idOrSlug string) (*models.Tour, error) {
	tour, err := s.repo.GetBySlug(idOrSlug)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		if id, ok := parseUintID(idOrSlug); ok {
			tour, err = s.repo.GetByID(id)
			if err != nil {
				return nil, err
			}
		}
	}
	if tour == nil || !tour.IsActive {
		return nil, ErrTourNotFound
	}
	return tour, nil
}

// Create validates and stores a tour; the slug defaults to the title.
func (s *TourService) Create(ctx context.Context, input TourInput) (*models.Tour, error) {
	tour := &models.Tour{IsActive: true}
	if err := s.apply(tour, input); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(tour.Slug, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Create(tour); err != nil {
		return nil, err
	}
	logger.Infow("tour_created", "tour_id", tour.ID, "slug", tour.Slug)
	return tour, nil
}

// Update replaces the editable fields.
func (s *TourService) Update(ctx context.Context, id uint, input TourInput) (*models.Tour, error) {
	tour, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(tour, input); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(tour.Slug, tour.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(tour); err != nil {
		return nil, err
	}
	logger.Infow("tour_updated", "tour_id", tour.ID)
	return tour, nil
}

// Delete soft deletes a tour; existing bookings keep their snapshot.
func (s *TourService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	logger.Infow("tour_deleted", "tour_id", id)
	return nil
}

func (s *TourService) apply(tour *models.Tour, input TourInput) error {
	title := cleanLocalized(input.Title)
	if len(title) == 0 {
		return ErrTourInvalid
	}
	if input.OpMaat && input.LocalStories {
		return ErrTourInvalid
	}
	if input.Price != nil && input.Price.IsNegative() {
		return ErrTourInvalid
	}
	if input.DurationMinutes != nil && *input.DurationMinutes <= 0 {
		return ErrTourInvalid
	}
	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(title.Localized("nl", "en", "fr", "de"))
	}
	if slug == "" {
		return ErrTourInvalid
	}

	tour.Slug = slug
	tour.TitleJSON = title
	tour.DescriptionJSON = cleanLocalized(input.Description)
	tour.City = Slugify(input.City)
	tour.Languages = models.StringArray(lo.Uniq(lo.FilterMap(input.Languages, func(lang string, _ int) (string, bool) {
		lang = strings.ToLower(strings.TrimSpace(lang))
		return lang, lang != ""
	})))
	tour.Price = input.Price
	tour.DurationMinutes = input.DurationMinutes
	tour.OpMaat = input.OpMaat
	tour.LocalStories = input.LocalStories
	tour.SortOrder = input.SortOrder
	tour.StripeProductID = strings.TrimSpace(input.StripeProductID)
	tour.StripePriceID = strings.TrimSpace(input.StripePriceID)
	if input.IsActive != nil {
		tour.IsActive = *input.IsActive
	}
	return nil
}

func (s *TourService) ensureSlugFree(slug string, selfID uint) error {
	existing, err := s.repo.GetBySlug(slug)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrTourSlugTaken
	}
	return nil
}

// Slugify lowercases and joins alphanumeric runs with dashes.
func Slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.Trim(slugInvalidChars.ReplaceAllString(value, "-"), "-")
}

func parseUintID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
