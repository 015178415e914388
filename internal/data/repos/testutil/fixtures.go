package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/domain/cards"
	"github.com/yungbote/lingobridge-backend/internal/domain/user"
	"github.com/yungbote/lingobridge-backend/internal/srs"
)

// SeedUser inserts a user with a unique email and returns it.
func SeedUser(tb testing.TB, tx *gorm.DB) *user.User {
	tb.Helper()
	u := &user.User{
		Email:     fmt.Sprintf("test-%s@example.com", uuid.NewString()),
		Password:  "$2a$10$fixturefixturefixturefixturefixturefixturefixturefix",
		FirstName: "Test",
		LastName:  "User",
	}
	if err := tx.Create(u).Error; err != nil {
		tb.Fatalf("testutil: seed user: %v", err)
	}
	return u
}

// SeedCard inserts a freshly created card for the user and returns it.
func SeedCard(tb testing.TB, tx *gorm.DB, userID uuid.UUID, front, back string) *cards.Card {
	tb.Helper()
	c := cards.New(userID, front, back, "", cards.SourceManual, srs.DefaultConfig(), time.Now())
	if err := tx.Create(c).Error; err != nil {
		tb.Fatalf("testutil: seed card: %v", err)
	}
	return c
}

// SeedCardWithState inserts a card and overwrites its scheduling fields,
// for tests that need a card in a specific phase.
func SeedCardWithState(tb testing.TB, tx *gorm.DB, userID uuid.UUID, front, back string, state srs.CardState) *cards.Card {
	tb.Helper()
	c := cards.New(userID, front, back, "", cards.SourceManual, srs.DefaultConfig(), time.Now())
	c.ApplyScheduling(state)
	if err := tx.Create(c).Error; err != nil {
		tb.Fatalf("testutil: seed card with state: %v", err)
	}
	return c
}
