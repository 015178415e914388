package cards

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos/dberr"
	"github.com/yungbote/lingobridge-backend/internal/domain/cards"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/srs"
)

// ListFilter narrows ListByUser. Zero values mean "no filter"; Limit of 0
// falls back to the repo default.
type ListFilter struct {
	Status *srs.Status
	Tag    string
	Limit  int
	Offset int
}

const defaultListLimit = 50

type CardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, items []*cards.Card) error
	GetByID(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*cards.Card, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter ListFilter) ([]*cards.Card, error)
	ListDue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dueBefore int64, limit int) ([]*cards.Card, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[srs.Status]int64, error)
	UpdateScheduling(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, state srs.CardState) error
	UpdateContent(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, front, back, tags *string) error
	Delete(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error
	ExistingFronts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fronts []string) (map[string]struct{}, error)
}

type cardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) CardRepo {
	return &cardRepo{db: db, log: baseLog.With("repo", "CardRepo")}
}

func (r *cardRepo) Create(ctx context.Context, tx *gorm.DB, items []*cards.Card) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(items) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return dberr.Map("CardRepo.Create", err)
	}
	return nil
}

func (r *cardRepo) GetByID(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*cards.Card, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out cards.Card
	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&out).Error; err != nil {
		return nil, dberr.Map("CardRepo.GetByID", err)
	}
	return &out, nil
}

func (r *cardRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter ListFilter) ([]*cards.Card, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Tag != "" {
		q = q.Where("tags LIKE ?", "%"+filter.Tag+"%")
	}
	var out []*cards.Card
	if err := q.Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&out).Error; err != nil {
		return nil, dberr.Map("CardRepo.ListByUser", err)
	}
	return out, nil
}

// ListDue returns the user's cards with due_timestamp at or before the
// cutoff, oldest due first.
func (r *cardRepo) ListDue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dueBefore int64, limit int) ([]*cards.Card, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	var out []*cards.Card
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND due_timestamp <= ?", userID, dueBefore).
		Order("due_timestamp ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, dberr.Map("CardRepo.ListDue", err)
	}
	return out, nil
}

func (r *cardRepo) CountByStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[srs.Status]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		Status srs.Status
		Total  int64
	}
	if err := transaction.WithContext(ctx).
		Model(&cards.Card{}).
		Select("status, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, dberr.Map("CardRepo.CountByStatus", err)
	}
	out := make(map[srs.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

// UpdateScheduling writes the post-review scheduling fields in a single
// UPDATE conditioned on both card id and owner id, so a card that was
// deleted or never belonged to the caller leaves the row count at zero
// and surfaces as ErrNotFound instead of clobbering foreign state.
func (r *cardRepo) UpdateScheduling(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, state srs.CardState) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&cards.Card{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"status":        state.Status,
			"learning_step": state.LearningStep,
			"interval_days": state.IntervalDays,
			"ease_factor":   state.EaseFactor,
			"due_timestamp": state.Due,
		})
	if res.Error != nil {
		return dberr.Map("CardRepo.UpdateScheduling", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.Map("CardRepo.UpdateScheduling", pkgerrors.ErrNotFound)
	}
	return nil
}

func (r *cardRepo) UpdateContent(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, front, back, tags *string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates := map[string]interface{}{}
	if front != nil {
		updates["front"] = *front
	}
	if back != nil {
		updates["back"] = *back
	}
	if tags != nil {
		updates["tags"] = *tags
	}
	if len(updates) == 0 {
		return nil
	}
	res := transaction.WithContext(ctx).
		Model(&cards.Card{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return dberr.Map("CardRepo.UpdateContent", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.Map("CardRepo.UpdateContent", pkgerrors.ErrNotFound)
	}
	return nil
}

func (r *cardRepo) Delete(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&cards.Card{})
	if res.Error != nil {
		return dberr.Map("CardRepo.Delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.Map("CardRepo.Delete", pkgerrors.ErrNotFound)
	}
	return nil
}

// ExistingFronts reports which of the given fronts the user already has,
// used to skip duplicates during deck imports.
func (r *cardRepo) ExistingFronts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fronts []string) (map[string]struct{}, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	out := make(map[string]struct{}, len(fronts))
	if len(fronts) == 0 {
		return out, nil
	}
	var existing []string
	if err := transaction.WithContext(ctx).
		Model(&cards.Card{}).
		Where("user_id = ? AND front IN ?", userID, fronts).
		Pluck("front", &existing).Error; err != nil {
		return nil, dberr.Map("CardRepo.ExistingFronts", err)
	}
	for _, f := range existing {
		out[f] = struct{}{}
	}
	return out, nil
}
