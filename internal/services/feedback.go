package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/domain"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
)

const maxFeedbackLength = 4000

type FeedbackService interface {
	Submit(ctx context.Context, userID uuid.UUID, content string) (*domain.Feedback, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Feedback, error)
}

type feedbackService struct {
	log          *logger.Logger
	feedbackRepo repos.FeedbackRepo
}

func NewFeedbackService(log *logger.Logger, feedbackRepo repos.FeedbackRepo) FeedbackService {
	return &feedbackService{
		log:          log.With("service", "FeedbackService"),
		feedbackRepo: feedbackRepo,
	}
}

func (fs *feedbackService) Submit(ctx context.Context, userID uuid.UUID, content string) (*domain.Feedback, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("content required: %w", pkgerrors.ErrInvalidArgument)
	}
	if len(content) > maxFeedbackLength {
		return nil, fmt.Errorf("content exceeds %d characters: %w", maxFeedbackLength, pkgerrors.ErrInvalidArgument)
	}

	item := &domain.Feedback{
		ID:      uuid.New(),
		UserID:  userID,
		Content: content,
	}
	if err := fs.feedbackRepo.Create(ctx, nil, []*domain.Feedback{item}); err != nil {
		return nil, fmt.Errorf("store feedback: %w", err)
	}
	fs.log.Info("Stored feedback", "user_id", userID, "feedback_id", item.ID)
	return item, nil
}

func (fs *feedbackService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Feedback, error) {
	items, err := fs.feedbackRepo.ListByUser(ctx, nil, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}
