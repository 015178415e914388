package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos/dberr"
	"github.com/yungbote/lingobridge-backend/internal/domain/auth"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
)

type UserTokenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tokens []*auth.UserToken) error
	GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*auth.UserToken, error)
	GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*auth.UserToken, error)
	SoftDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error
	SoftDeleteByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) error
	SoftDeleteByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) error
	DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*auth.UserToken) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(tokens) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).Create(&tokens).Error; err != nil {
		return dberr.Map("UserTokenRepo.Create", err)
	}
	return nil
}

func (r *userTokenRepo) GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*auth.UserToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(accessTokens) == 0 {
		return []*auth.UserToken{}, nil
	}
	var out []*auth.UserToken
	if err := transaction.WithContext(ctx).
		Where("access_token IN ?", accessTokens).
		Find(&out).Error; err != nil {
		return nil, dberr.Map("UserTokenRepo.GetByAccessTokens", err)
	}
	return out, nil
}

func (r *userTokenRepo) GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*auth.UserToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(refreshTokens) == 0 {
		return []*auth.UserToken{}, nil
	}
	var out []*auth.UserToken
	if err := transaction.WithContext(ctx).
		Where("refresh_token IN ?", refreshTokens).
		Find(&out).Error; err != nil {
		return nil, dberr.Map("UserTokenRepo.GetByRefreshTokens", err)
	}
	return out, nil
}

func (r *userTokenRepo) SoftDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(userIDs) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Delete(&auth.UserToken{}).Error; err != nil {
		return dberr.Map("UserTokenRepo.SoftDeleteByUserIDs", err)
	}
	return nil
}

func (r *userTokenRepo) SoftDeleteByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(accessTokens) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).
		Where("access_token IN ?", accessTokens).
		Delete(&auth.UserToken{}).Error; err != nil {
		return dberr.Map("UserTokenRepo.SoftDeleteByAccessTokens", err)
	}
	return nil
}

func (r *userTokenRepo) SoftDeleteByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(refreshTokens) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).
		Where("refresh_token IN ?", refreshTokens).
		Delete(&auth.UserToken{}).Error; err != nil {
		return dberr.Map("UserTokenRepo.SoftDeleteByRefreshTokens", err)
	}
	return nil
}

// DeleteExpired hard-deletes tokens whose expiry passed before the cutoff,
// soft-deleted rows included. Returns the number of rows removed.
func (r *userTokenRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Unscoped().
		Where("expires_at < ?", before).
		Delete(&auth.UserToken{})
	if res.Error != nil {
		return 0, dberr.Map("UserTokenRepo.DeleteExpired", res.Error)
	}
	return res.RowsAffected, nil
}
