package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	cardrepo "github.com/yungbote/lingobridge-backend/internal/data/repos/cards"
	"github.com/yungbote/lingobridge-backend/internal/domain"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/platform/openai"
	"github.com/yungbote/lingobridge-backend/internal/srs"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("expected logger, got error %v", err)
	}
	return log
}

type fakeCardRepo struct {
	cards        map[uuid.UUID]*domain.Card
	scheduled    map[uuid.UUID]srs.CardState
	created      []*domain.Card
	lastDueLimit int
	err          error
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{
		cards:     map[uuid.UUID]*domain.Card{},
		scheduled: map[uuid.UUID]srs.CardState{},
	}
}

func (f *fakeCardRepo) add(c *domain.Card) *domain.Card {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.cards[c.ID] = c
	return c
}

func (f *fakeCardRepo) Create(ctx context.Context, tx *gorm.DB, items []*domain.Card) error {
	if f.err != nil {
		return f.err
	}
	for _, c := range items {
		f.add(c)
		f.created = append(f.created, c)
	}
	return nil
}

func (f *fakeCardRepo) GetByID(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*domain.Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.cards[id]
	if !ok || c.UserID != userID {
		return nil, fmt.Errorf("CardRepo.GetByID: %w", pkgerrors.ErrNotFound)
	}
	return c, nil
}

func (f *fakeCardRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter cardrepo.ListFilter) ([]*domain.Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Card
	for _, c := range f.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCardRepo) ListDue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dueBefore int64, limit int) ([]*domain.Card, error) {
	f.lastDueLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Card
	for _, c := range f.cards {
		if c.UserID == userID && c.DueTimestamp <= dueBefore && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCardRepo) CountByStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[srs.Status]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[srs.Status]int64{}
	for _, c := range f.cards {
		if c.UserID == userID {
			out[c.Status]++
		}
	}
	return out, nil
}

func (f *fakeCardRepo) UpdateScheduling(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, state srs.CardState) error {
	if f.err != nil {
		return f.err
	}
	c, ok := f.cards[id]
	if !ok || c.UserID != userID {
		return fmt.Errorf("CardRepo.UpdateScheduling: %w", pkgerrors.ErrNotFound)
	}
	c.ApplyScheduling(state)
	f.scheduled[id] = state
	return nil
}

func (f *fakeCardRepo) UpdateContent(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, front, back, tags *string) error {
	c, ok := f.cards[id]
	if !ok || c.UserID != userID {
		return fmt.Errorf("CardRepo.UpdateContent: %w", pkgerrors.ErrNotFound)
	}
	if front != nil {
		c.Front = *front
	}
	if back != nil {
		c.Back = *back
	}
	if tags != nil {
		c.Tags = *tags
	}
	return nil
}

func (f *fakeCardRepo) Delete(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error {
	c, ok := f.cards[id]
	if !ok || c.UserID != userID {
		return fmt.Errorf("CardRepo.Delete: %w", pkgerrors.ErrNotFound)
	}
	delete(f.cards, id)
	return nil
}

func (f *fakeCardRepo) ExistingFronts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fronts []string) (map[string]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	owned := map[string]struct{}{}
	for _, c := range f.cards {
		if c.UserID == userID {
			owned[c.Front] = struct{}{}
		}
	}
	out := map[string]struct{}{}
	for _, front := range fronts {
		if _, ok := owned[front]; ok {
			out[front] = struct{}{}
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
}

func (f *fakeUserRepo) add(email string, number *string) *domain.User {
	u := &domain.User{ID: uuid.New(), Email: email, WhatsappNumber: number}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*domain.User) error {
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		f.users[u.ID] = u
	}
	return nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.User, error) {
	var out []*domain.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.users {
		for _, email := range emails {
			if u.Email == email {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) GetByWhatsappNumber(ctx context.Context, tx *gorm.DB, number string) (*domain.User, error) {
	for _, u := range f.users {
		if u.WhatsappNumber != nil && *u.WhatsappNumber == number {
			return u, nil
		}
	}
	return nil, fmt.Errorf("UserRepo.GetByWhatsappNumber: %w", pkgerrors.ErrNotFound)
}

func (f *fakeUserRepo) LinkWhatsappNumber(ctx context.Context, tx *gorm.DB, id uuid.UUID, number string) error {
	for _, u := range f.users {
		if u.WhatsappNumber != nil && *u.WhatsappNumber == number && u.ID != id {
			return fmt.Errorf("UserRepo.LinkWhatsappNumber: %w", pkgerrors.ErrConflict)
		}
	}
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("UserRepo.LinkWhatsappNumber: %w", pkgerrors.ErrNotFound)
	}
	u.WhatsappNumber = &number
	return nil
}

func (f *fakeUserRepo) UnlinkWhatsappNumber(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("UserRepo.UnlinkWhatsappNumber: %w", pkgerrors.ErrNotFound)
	}
	u.WhatsappNumber = nil
	return nil
}

type fakeUserTokenRepo struct {
	tokens []*domain.UserToken
}

func (f *fakeUserTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*domain.UserToken) error {
	f.tokens = append(f.tokens, tokens...)
	return nil
}

func (f *fakeUserTokenRepo) GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*domain.UserToken, error) {
	var out []*domain.UserToken
	for _, t := range f.tokens {
		for _, access := range accessTokens {
			if t.AccessToken == access {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeUserTokenRepo) GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*domain.UserToken, error) {
	var out []*domain.UserToken
	for _, t := range f.tokens {
		for _, refresh := range refreshTokens {
			if t.RefreshToken == refresh {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeUserTokenRepo) SoftDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	kept := f.tokens[:0]
	for _, t := range f.tokens {
		drop := false
		for _, id := range userIDs {
			if t.UserID == id {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

func (f *fakeUserTokenRepo) SoftDeleteByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) error {
	kept := f.tokens[:0]
	for _, t := range f.tokens {
		drop := false
		for _, access := range accessTokens {
			if t.AccessToken == access {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

func (f *fakeUserTokenRepo) SoftDeleteByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) error {
	kept := f.tokens[:0]
	for _, t := range f.tokens {
		drop := false
		for _, refresh := range refreshTokens {
			if t.RefreshToken == refresh {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

func (f *fakeUserTokenRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error) {
	var removed int64
	kept := f.tokens[:0]
	for _, t := range f.tokens {
		if t.ExpiresAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	f.tokens = kept
	return removed, nil
}

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*domain.ChatSession
	latest   *domain.ChatSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[uuid.UUID]*domain.ChatSession{}}
}

func (f *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*domain.ChatSession) error {
	for _, s := range sessions {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		f.sessions[s.ID] = s
		f.latest = s
	}
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*domain.ChatSession, error) {
	s, ok := f.sessions[id]
	if !ok || s.UserID != userID {
		return nil, fmt.Errorf("SessionRepo.GetByID: %w", pkgerrors.ErrNotFound)
	}
	return s, nil
}

func (f *fakeSessionRepo) GetLatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.ChatSession, error) {
	if f.latest == nil || f.latest.UserID != userID {
		return nil, fmt.Errorf("SessionRepo.GetLatestByUser: %w", pkgerrors.ErrNotFound)
	}
	return f.latest, nil
}

func (f *fakeSessionRepo) UpdateTranscript(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID, transcript datatypes.JSON) error {
	s, ok := f.sessions[id]
	if !ok || s.UserID != userID {
		return fmt.Errorf("SessionRepo.UpdateTranscript: %w", pkgerrors.ErrNotFound)
	}
	s.Messages = transcript
	return nil
}

// fakeLLM answers every call with the configured payload and records what it
// was asked.
type fakeLLM struct {
	reply      string
	err        error
	lastMsgs   []openai.Message
	lastSystem string
	lastUser   string
	calls      int
}

func (f *fakeLLM) Chat(ctx context.Context, messages []openai.Message) (string, error) {
	f.calls++
	f.lastMsgs = messages
	return f.reply, f.err
}

func (f *fakeLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	return f.reply, f.err
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	return f.reply, f.err
}

type fakeLinkCodes struct {
	codes map[string]uuid.UUID
	puts  int
	ttl   time.Duration
}

func newFakeLinkCodes() *fakeLinkCodes {
	return &fakeLinkCodes{codes: map[string]uuid.UUID{}}
}

func (f *fakeLinkCodes) Put(ctx context.Context, code string, userID uuid.UUID, ttl time.Duration) error {
	f.codes[code] = userID
	f.puts++
	f.ttl = ttl
	return nil
}

func (f *fakeLinkCodes) Take(ctx context.Context, code string) (uuid.UUID, error) {
	id, ok := f.codes[code]
	if !ok {
		return uuid.Nil, fmt.Errorf("link code: %w", pkgerrors.ErrNotFound)
	}
	delete(f.codes, code)
	return id, nil
}

func (f *fakeLinkCodes) Close() error { return nil }

// fakeComposer serves the quick-add flow; the other methods fail loudly so a
// test notices an unexpected call.
type fakeComposer struct {
	front string
	back  string
	err   error
	calls int
}

func (f *fakeComposer) ProposeSentence(ctx context.Context, targetWord string) (*SentenceProposal, error) {
	return nil, errors.New("unexpected ProposeSentence call")
}

func (f *fakeComposer) ValidateSentence(ctx context.Context, targetWord, userSentence, language string) (*SentenceValidation, error) {
	return nil, errors.New("unexpected ValidateSentence call")
}

func (f *fakeComposer) BuildCard(ctx context.Context, term string) (string, string, error) {
	f.calls++
	return f.front, f.back, f.err
}

type fakeChat struct {
	reply    string
	err      error
	lastUser uuid.UUID
	lastMsg  string
}

func (f *fakeChat) Converse(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, message string) (string, uuid.UUID, error) {
	f.lastUser = userID
	f.lastMsg = message
	return f.reply, uuid.New(), f.err
}

func (f *fakeChat) ConverseLatest(ctx context.Context, userID uuid.UUID, message string) (string, error) {
	f.lastUser = userID
	f.lastMsg = message
	return f.reply, f.err
}

func (f *fakeChat) Explain(ctx context.Context, userID uuid.UUID, topic, contextNote string) (*Explanation, error) {
	return nil, errors.New("unexpected Explain call")
}
