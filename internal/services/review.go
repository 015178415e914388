package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/srs"
)

const (
	defaultDueLimit = 20
	maxDueLimit     = 100
)

// DueSummary is the review queue for one learner: the next cards to show and
// the per-status counts for progress display.
type DueSummary struct {
	Cards  []*domain.Card
	Counts map[srs.Status]int64
}

type ReviewService interface {
	DueCards(ctx context.Context, userID uuid.UUID, limit int) (*DueSummary, error)
	GradeCard(ctx context.Context, userID, cardID uuid.UUID, grade srs.Grade) (*domain.Card, error)
}

type reviewService struct {
	log      *logger.Logger
	cardRepo repos.CardRepo
	srsCfg   srs.Config
}

func NewReviewService(log *logger.Logger, cardRepo repos.CardRepo, srsCfg srs.Config) ReviewService {
	return &reviewService{
		log:      log.With("service", "ReviewService"),
		cardRepo: cardRepo,
		srsCfg:   srsCfg,
	}
}

func (rs *reviewService) DueCards(ctx context.Context, userID uuid.UUID, limit int) (*DueSummary, error) {
	if limit <= 0 {
		limit = defaultDueLimit
	}
	if limit > maxDueLimit {
		limit = maxDueLimit
	}

	now := time.Now().Unix()
	due, err := rs.cardRepo.ListDue(ctx, nil, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due cards: %w", err)
	}
	counts, err := rs.cardRepo.CountByStatus(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("count cards by status: %w", err)
	}
	return &DueSummary{Cards: due, Counts: counts}, nil
}

// GradeCard applies one review outcome: load the card scoped to its owner,
// advance the scheduling state and persist it with a conditional update.
func (rs *reviewService) GradeCard(ctx context.Context, userID, cardID uuid.UUID, grade srs.Grade) (*domain.Card, error) {
	if !grade.IsValid() {
		return nil, fmt.Errorf("grade %d: %w", grade, srs.ErrInvalidGrade)
	}

	card, err := rs.cardRepo.GetByID(ctx, nil, cardID, userID)
	if err != nil {
		return nil, fmt.Errorf("load card: %w", err)
	}

	next := srs.Schedule(card.Scheduling(), grade, time.Now(), rs.srsCfg)
	if err := rs.cardRepo.UpdateScheduling(ctx, nil, cardID, userID, next); err != nil {
		return nil, fmt.Errorf("persist scheduling: %w", err)
	}
	card.ApplyScheduling(next)

	rs.log.Info("Graded card",
		"card_id", cardID,
		"grade", grade.String(),
		"status", next.Status.String(),
		"interval_days", next.IntervalDays,
	)
	return card, nil
}
