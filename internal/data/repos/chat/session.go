package chat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos/dberr"
	"github.com/yungbote/lingobridge-backend/internal/domain/chat"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sessions []*chat.Session) error
	GetByID(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*chat.Session, error)
	GetLatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*chat.Session, error)
	UpdateTranscript(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, transcript datatypes.JSON) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "ChatSessionRepo")}
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*chat.Session) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sessions) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
		return dberr.Map("ChatSessionRepo.Create", err)
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*chat.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out chat.Session
	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&out).Error; err != nil {
		return nil, dberr.Map("ChatSessionRepo.GetByID", err)
	}
	return &out, nil
}

func (r *sessionRepo) GetLatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*chat.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out chat.Session
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&out).Error; err != nil {
		return nil, dberr.Map("ChatSessionRepo.GetLatestByUser", err)
	}
	return &out, nil
}

func (r *sessionRepo) UpdateTranscript(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, transcript datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&chat.Session{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("messages", transcript)
	if res.Error != nil {
		return dberr.Map("ChatSessionRepo.UpdateTranscript", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.Map("ChatSessionRepo.UpdateTranscript", pkgerrors.ErrNotFound)
	}
	return nil
}
