package user

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos/dberr"
	"github.com/yungbote/lingobridge-backend/internal/domain/user"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, users []*user.User) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*user.User, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*user.User, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	GetByWhatsappNumber(ctx context.Context, tx *gorm.DB, number string) (*user.User, error)
	LinkWhatsappNumber(ctx context.Context, tx *gorm.DB, id uuid.UUID, number string) error
	UnlinkWhatsappNumber(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*user.User) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(users) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).Create(&users).Error; err != nil {
		return dberr.Map("UserRepo.Create", err)
	}
	return nil
}

func (r *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*user.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return []*user.User{}, nil
	}
	var out []*user.User
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, dberr.Map("UserRepo.GetByIDs", err)
	}
	return out, nil
}

func (r *userRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*user.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(emails) == 0 {
		return []*user.User{}, nil
	}
	var out []*user.User
	if err := transaction.WithContext(ctx).
		Where("email IN ?", emails).
		Find(&out).Error; err != nil {
		return nil, dberr.Map("UserRepo.GetByEmails", err)
	}
	return out, nil
}

func (r *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&user.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, dberr.Map("UserRepo.EmailExists", err)
	}
	return count > 0, nil
}

func (r *userRepo) GetByWhatsappNumber(ctx context.Context, tx *gorm.DB, number string) (*user.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out user.User
	if err := transaction.WithContext(ctx).
		Where("whatsapp_number = ?", number).
		First(&out).Error; err != nil {
		return nil, dberr.Map("UserRepo.GetByWhatsappNumber", err)
	}
	return &out, nil
}

func (r *userRepo) LinkWhatsappNumber(ctx context.Context, tx *gorm.DB, id uuid.UUID, number string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", id).
		Update("whatsapp_number", number)
	if res.Error != nil {
		return dberr.Map("UserRepo.LinkWhatsappNumber", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.Map("UserRepo.LinkWhatsappNumber", pkgerrors.ErrNotFound)
	}
	return nil
}

func (r *userRepo) UnlinkWhatsappNumber(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", id).
		Update("whatsapp_number", nil)
	if res.Error != nil {
		return dberr.Map("UserRepo.UnlinkWhatsappNumber", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.Map("UserRepo.UnlinkWhatsappNumber", pkgerrors.ErrNotFound)
	}
	return nil
}
