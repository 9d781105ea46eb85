package service

import (
	"context"
	"strings"
	"time"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/repository"
)

var contentLocales = []string{"nl", "en", "fr", "de"}

// FAQInput create and update payload.
type FAQInput struct {
	Question models.JSON `json:"question"`
	Answer   models.JSON `json:"answer"`
	Category string      `json:"category"`
	IsActive *bool       `json:"is_active"`
}

// PressInput create and update payload.
type PressInput struct {
	Title       models.JSON `json:"title"`
	Outlet      string      `json:"outlet"`
	URL         string      `json:"url"`
	LogoURL     string      `json:"logo_url"`
	PublishedAt *time.Time  `json:"published_at"`
	IsActive    *bool       `json:"is_active"`
}

// ContentService FAQ and press wall management.
type ContentService struct {
	repo repository.ContentRepository
}

// NewContentService creates the service.
func NewContentService(repo repository.ContentRepository) *ContentService {
	return &ContentService{repo: repo}
}

// ListFAQ returns items in display order.
func (s *ContentService) ListFAQ(onlyActive bool) ([]models.FAQItem, error) {
	return s.repo.ListFAQ(onlyActive)
}

// CreateFAQ appends an item at the end of the list.
func (s *ContentService) CreateFAQ(ctx context.Context, input FAQInput) (*models.FAQItem, error) {
	question := cleanLocalized(input.Question)
	if len(question) == 0 {
		return nil, ErrContentInvalid
	}
	next, err := s.repo.NextSortOrder(constants.ContentKindFAQ)
	if err != nil {
		return nil, err
	}
	item := &models.FAQItem{
		QuestionJSON: question,
		AnswerJSON:   cleanLocalized(input.Answer),
		Category:     strings.TrimSpace(input.Category),
		SortOrder:    next,
		IsActive:     input.IsActive == nil || *input.IsActive,
	}
	if err := s.repo.SaveFAQ(item); err != nil {
		return nil, err
	}
	logger.Infow("faq_item_created", "id", item.ID)
	return item, nil
}

// UpdateFAQ replaces the content fields; sort order is owned by reorder.
func (s *ContentService) UpdateFAQ(ctx context.Context, id uint, input FAQInput) (*models.FAQItem, error) {
	item, err := s.repo.GetFAQ(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrContentNotFound
	}
	if input.Question != nil {
		question := cleanLocalized(input.Question)
		if len(question) == 0 {
			return nil, ErrContentInvalid
		}
		item.QuestionJSON = question
	}
	if input.Answer != nil {
		item.AnswerJSON = cleanLocalized(input.Answer)
	}
	item.Category = strings.TrimSpace(input.Category)
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if err := s.repo.SaveFAQ(item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteFAQ soft deletes an item.
func (s *ContentService) DeleteFAQ(ctx context.Context, id uint) error {
	item, err := s.repo.GetFAQ(id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrContentNotFound
	}
	return s.repo.DeleteFAQ(id)
}

// ListPress returns items in display order.
func (s *ContentService) ListPress(onlyActive bool) ([]models.PressItem, error) {
	return s.repo.ListPress(onlyActive)
}

// CreatePress appends an item at the end of the wall.
func (s *ContentService) CreatePress(ctx context.Context, input PressInput) (*models.PressItem, error) {
	title := cleanLocalized(input.Title)
	if len(title) == 0 {
		return nil, ErrContentInvalid
	}
	next, err := s.repo.NextSortOrder(constants.ContentKindPress)
	if err != nil {
		return nil, err
	}
	item := &models.PressItem{
		TitleJSON:   title,
		Outlet:      strings.TrimSpace(input.Outlet),
		URL:         strings.TrimSpace(input.URL),
		LogoURL:     strings.TrimSpace(input.LogoURL),
		PublishedAt: input.PublishedAt,
		SortOrder:   next,
		IsActive:    input.IsActive == nil || *input.IsActive,
	}
	if err := s.repo.SavePress(item); err != nil {
		return nil, err
	}
	logger.Infow("press_item_created", "id", item.ID)
	return item, nil
}

// UpdatePress replaces the content fields.
func (s *ContentService) UpdatePress(ctx context.Context, id uint, input PressInput) (*models.PressItem, error) {
	item, err := s.repo.GetPress(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrContentNotFound
	}
	if input.Title != nil {
		title := cleanLocalized(input.Title)
		if len(title) == 0 {
			return nil, ErrContentInvalid
		}
		item.TitleJSON = title
	}
	item.Outlet = strings.TrimSpace(input.Outlet)
	item.URL = strings.TrimSpace(input.URL)
	item.LogoURL = strings.TrimSpace(input.LogoURL)
	item.PublishedAt = input.PublishedAt
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if err := s.repo.SavePress(item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeletePress soft deletes an item.
func (s *ContentService) DeletePress(ctx context.Context, id uint) error {
	item, err := s.repo.GetPress(id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrContentNotFound
	}
	return s.repo.DeletePress(id)
}

// cleanLocalized keeps non-blank strings for the supported locales.
func cleanLocalized(raw models.JSON) models.JSON {
	out := models.JSON{}
	for _, locale := range contentLocales {
		if v, ok := raw[locale].(string); ok && strings.TrimSpace(v) != "" {
			out[locale] = strings.TrimSpace(v)
		}
	}
	return out
}
