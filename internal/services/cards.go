package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/cards"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/srs"
)

type CardService interface {
	Create(ctx context.Context, userID uuid.UUID, front, back string, tags []string, source string) (*domain.Card, error)
	List(ctx context.Context, userID uuid.UUID, filter repos.CardList) ([]*domain.Card, error)
	UpdateContent(ctx context.Context, userID, cardID uuid.UUID, front, back *string, tags *[]string) (*domain.Card, error)
	Delete(ctx context.Context, userID, cardID uuid.UUID) error
}

type cardService struct {
	log      *logger.Logger
	cardRepo repos.CardRepo
	srsCfg   srs.Config
}

func NewCardService(log *logger.Logger, cardRepo repos.CardRepo, srsCfg srs.Config) CardService {
	return &cardService{
		log:      log.With("service", "CardService"),
		cardRepo: cardRepo,
		srsCfg:   srsCfg,
	}
}

// Create persists one new card in the initial scheduling state. A card whose
// front the learner already owns is rejected so the same sentence cannot be
// scheduled twice.
func (cs *cardService) Create(ctx context.Context, userID uuid.UUID, front, back string, tags []string, source string) (*domain.Card, error) {
	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if front == "" || back == "" {
		return nil, fmt.Errorf("front and back required: %w", pkgerrors.ErrInvalidArgument)
	}

	existing, err := cs.cardRepo.ExistingFronts(ctx, nil, userID, []string{front})
	if err != nil {
		return nil, fmt.Errorf("check existing fronts: %w", err)
	}
	if _, ok := existing[front]; ok {
		return nil, fmt.Errorf("card front %q already exists: %w", front, pkgerrors.ErrConflict)
	}

	card := cards.New(userID, front, back, joinTags(tags), source, cs.srsCfg, time.Now())
	if err := cs.cardRepo.Create(ctx, nil, []*domain.Card{card}); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	cs.log.Info("Created card", "card_id", card.ID, "source", card.Source)
	return card, nil
}

func (cs *cardService) List(ctx context.Context, userID uuid.UUID, filter repos.CardList) ([]*domain.Card, error) {
	items, err := cs.cardRepo.ListByUser(ctx, nil, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return items, nil
}

// UpdateContent edits the text of an owned card. Scheduling fields are out of
// reach here on purpose; they only move through grading.
func (cs *cardService) UpdateContent(ctx context.Context, userID, cardID uuid.UUID, front, back *string, tags *[]string) (*domain.Card, error) {
	if front == nil && back == nil && tags == nil {
		return nil, fmt.Errorf("no fields to update: %w", pkgerrors.ErrInvalidArgument)
	}
	if front != nil && strings.TrimSpace(*front) == "" {
		return nil, fmt.Errorf("front must not be blank: %w", pkgerrors.ErrInvalidArgument)
	}
	if back != nil && strings.TrimSpace(*back) == "" {
		return nil, fmt.Errorf("back must not be blank: %w", pkgerrors.ErrInvalidArgument)
	}

	var joined *string
	if tags != nil {
		t := joinTags(*tags)
		joined = &t
	}
	if err := cs.cardRepo.UpdateContent(ctx, nil, cardID, userID, front, back, joined); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}
	card, err := cs.cardRepo.GetByID(ctx, nil, cardID, userID)
	if err != nil {
		return nil, fmt.Errorf("reload card: %w", err)
	}
	return card, nil
}

func (cs *cardService) Delete(ctx context.Context, userID, cardID uuid.UUID) error {
	if err := cs.cardRepo.Delete(ctx, nil, cardID, userID); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	cs.log.Info("Deleted card", "card_id", cardID)
	return nil
}

// joinTags normalizes a tag list into the space-separated form the card row
// stores.
func joinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		cleaned = append(cleaned, strings.ReplaceAll(t, " ", "_"))
	}
	return strings.Join(cleaned, " ")
}
