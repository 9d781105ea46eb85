package service

import (
	"context"
	"errors"
	"slices"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/repository"

	"github.com/samber/lo"
)

// Reorder outcomes.
const (
	ReorderApplied    = "applied"
	ReorderReconciled = "reconciled"
	ReorderReverted   = "reverted"
)

// ReorderCommand moves one item to a new position. BaseOrder is the order the
// caller saw when issuing the command.
type ReorderCommand struct {
	Kind      string `json:"kind"`
	BaseOrder []uint `json:"base_order"`
	MovedID   uint   `json:"moved_id"`
	ToIndex   int    `json:"to_index"`
}

// ReorderResult the order the caller should display afterwards.
type ReorderResult struct {
	Status string `json:"status"`
	Order  []uint `json:"order"`
}

// ReorderService applies drag-reorder commands against the server order.
type ReorderService struct {
	repo repository.ContentRepository
}

// NewReorderService creates the service.
func NewReorderService(repo repository.ContentRepository) *ReorderService {
	return &ReorderService{repo: repo}
}

// Execute computes the tentative order from the current server order and
// persists it. A stale BaseOrder is rebased and reported as reconciled; a
// failed write returns the unchanged server order as reverted plus the error.
func (s *ReorderService) Execute(ctx context.Context, cmd ReorderCommand) (*ReorderResult, error) {
	if cmd.Kind != constants.ContentKindFAQ && cmd.Kind != constants.ContentKindPress {
		return nil, ErrReorderInvalid
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	current, err := s.repo.OrderedIDs(cmd.Kind)
	if err != nil {
		return nil, err
	}
	from := slices.Index(current, cmd.MovedID)
	if from < 0 {
		return nil, ErrContentNotFound
	}
	if cmd.ToIndex < 0 || cmd.ToIndex >= len(current) {
		return nil, ErrReorderInvalid
	}

	status := ReorderApplied
	if cmd.BaseOrder != nil && !slices.Equal(cmd.BaseOrder, current) {
		status = ReorderReconciled
	}
	tentative := MoveID(current, from, cmd.ToIndex)
	if slices.Equal(tentative, current) {
		return &ReorderResult{Status: status, Order: current}, nil
	}

	if err := s.repo.ApplyOrder(cmd.Kind, tentative); err != nil {
		if errors.Is(err, repository.ErrUnknownContentKind) {
			err = ErrReorderInvalid
		}
		logger.Warnw("content_reorder_reverted", "kind", cmd.Kind, "moved_id", cmd.MovedID, "error", err)
		return &ReorderResult{Status: ReorderReverted, Order: current}, err
	}
	logger.Infow("content_reordered", "kind", cmd.Kind, "moved_id", cmd.MovedID, "to_index", cmd.ToIndex, "status", status)
	return &ReorderResult{Status: status, Order: tentative}, nil
}

// MoveID returns a copy of ids with the element at from moved to index to.
func MoveID(ids []uint, from, to int) []uint {
	moved := ids[from]
	rest := lo.Filter(ids, func(_ uint, idx int) bool { return idx != from })
	return slices.Insert(rest, to, moved)
}
