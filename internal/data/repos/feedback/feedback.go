package feedback

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos/dberr"
	"github.com/yungbote/lingobridge-backend/internal/domain/feedback"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
)

type FeedbackRepo interface {
	Create(ctx context.Context, tx *gorm.DB, items []*feedback.Feedback) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*feedback.Feedback, error)
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	return &feedbackRepo{db: db, log: baseLog.With("repo", "FeedbackRepo")}
}

func (r *feedbackRepo) Create(ctx context.Context, tx *gorm.DB, items []*feedback.Feedback) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(items) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return dberr.Map("FeedbackRepo.Create", err)
	}
	return nil
}

func (r *feedbackRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*feedback.Feedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*feedback.Feedback
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, dberr.Map("FeedbackRepo.ListByUser", err)
	}
	return out, nil
}
