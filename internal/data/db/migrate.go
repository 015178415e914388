package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity + auth
		&types.User{},
		&types.UserToken{},

		// Flashcards (scheduling lives on the card row)
		&types.Card{},

		// Tutor conversations
		&types.ChatSession{},

		// Product feedback
		&types.Feedback{},
	)
}

func EnsureUserIndexes(db *gorm.DB) error {
	// One WhatsApp sender maps to at most one live account. Partial so
	// unlinked (NULL) and soft-deleted rows never collide.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_user_whatsapp_number
		ON "user"(whatsapp_number)
		WHERE deleted_at IS NULL AND whatsapp_number IS NOT NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_user_whatsapp_number: %w", err)
	}
	return nil
}

func EnsureCardIndexes(db *gorm.DB) error {
	// The due-list query: user_id = ? AND due_timestamp <= ? ORDER BY due.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_card_user_due
		ON card (user_id, due_timestamp)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_card_user_due: %w", err)
	}

	// Status-filtered listings and per-status counts.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_card_user_status_due
		ON card (user_id, status, due_timestamp);
	`).Error; err != nil {
		return fmt.Errorf("create idx_card_user_status_due: %w", err)
	}

	// Import dedupe checks cards by exact front per user.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_card_user_front
		ON card (user_id, front)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_card_user_front: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureUserIndexes(s.db); err != nil {
		s.log.Error("User index migration failed", "error", err)
		return err
	}
	if err := EnsureCardIndexes(s.db); err != nil {
		s.log.Error("Card index migration failed", "error", err)
		return err
	}
	return nil
}
