package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lingobridge-backend/internal/domain/cards"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/srs"
)

func TestCardServiceCreate(t *testing.T) {
	repo := newFakeCardRepo()
	svc := NewCardService(testLogger(t), repo, srs.DefaultConfig())
	userID := uuid.New()

	card, err := svc.Create(context.Background(), userID, "  la mesa ", " the table ", []string{" furniture ", "", "unit one"}, cards.SourceManual)
	if err != nil {
		t.Fatalf("expected card, got error %v", err)
	}
	if card.Front != "la mesa" || card.Back != "the table" {
		t.Fatalf("expected trimmed pair, got %q / %q", card.Front, card.Back)
	}
	if card.Tags != "furniture unit_one" {
		t.Fatalf("expected normalized tags, got %q", card.Tags)
	}
	if card.Status != srs.StatusNew {
		t.Fatalf("expected status new, got %v", card.Status)
	}
	if card.DueTimestamp > time.Now().Unix() {
		t.Fatalf("expected card due immediately, got %d", card.DueTimestamp)
	}
}

func TestCardServiceCreateRejectsBlank(t *testing.T) {
	svc := NewCardService(testLogger(t), newFakeCardRepo(), srs.DefaultConfig())

	_, err := svc.Create(context.Background(), uuid.New(), "   ", "back", nil, cards.SourceManual)
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCardServiceCreateDuplicateFront(t *testing.T) {
	repo := newFakeCardRepo()
	userID := uuid.New()
	repo.add(cards.New(userID, "hola", "hello", "", cards.SourceManual, srs.DefaultConfig(), time.Now()))
	svc := NewCardService(testLogger(t), repo, srs.DefaultConfig())

	_, err := svc.Create(context.Background(), userID, "hola", "hi", nil, cards.SourceChat)
	if !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCardServiceUpdateContentRequiresField(t *testing.T) {
	svc := NewCardService(testLogger(t), newFakeCardRepo(), srs.DefaultConfig())

	_, err := svc.UpdateContent(context.Background(), uuid.New(), uuid.New(), nil, nil, nil)
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCardServiceUpdateContent(t *testing.T) {
	repo := newFakeCardRepo()
	userID := uuid.New()
	card := repo.add(cards.New(userID, "hola", "hello", "", cards.SourceManual, srs.DefaultConfig(), time.Now()))
	svc := NewCardService(testLogger(t), repo, srs.DefaultConfig())

	back := "hello there"
	updated, err := svc.UpdateContent(context.Background(), userID, card.ID, nil, &back, nil)
	if err != nil {
		t.Fatalf("expected updated card, got error %v", err)
	}
	if updated.Back != "hello there" {
		t.Fatalf("expected back updated, got %q", updated.Back)
	}
	if updated.Front != "hola" {
		t.Fatalf("expected front untouched, got %q", updated.Front)
	}

	tags := []string{" greetings ", "unit one"}
	updated, err = svc.UpdateContent(context.Background(), userID, card.ID, nil, nil, &tags)
	if err != nil {
		t.Fatalf("expected updated card, got error %v", err)
	}
	if updated.Tags != "greetings unit_one" {
		t.Fatalf("expected normalized tags, got %q", updated.Tags)
	}
}
