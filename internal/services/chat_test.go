package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/cards"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/platform/openai"
	"github.com/yungbote/lingobridge-backend/internal/srs"
)

func newChatFixture(t *testing.T) (ChatService, *fakeLLM, *fakeCardRepo, *fakeSessionRepo) {
	t.Helper()
	llm := &fakeLLM{reply: "¡Hola! ¿Cómo estás?"}
	cardRepo := newFakeCardRepo()
	sessionRepo := newFakeSessionRepo()
	svc := NewChatService(testLogger(t), llm, testPrompts(t), cardRepo, sessionRepo)
	return svc, llm, cardRepo, sessionRepo
}

func TestConverseStartsSessionAndPersists(t *testing.T) {
	svc, llm, cardRepo, sessionRepo := newChatFixture(t)
	userID := uuid.New()
	cardRepo.add(cards.New(userID, "Quiero un café.", "I want a coffee.", "", cards.SourceManual, srs.DefaultConfig(), time.Now()))

	reply, sid, err := svc.Converse(context.Background(), userID, nil, "hola")
	if err != nil {
		t.Fatalf("expected reply, got error %v", err)
	}
	if reply != "¡Hola! ¿Cómo estás?" {
		t.Fatalf("expected model reply, got %q", reply)
	}
	if sid == uuid.Nil {
		t.Fatalf("expected session id, got nil uuid")
	}

	if len(llm.lastMsgs) != 3 {
		t.Fatalf("expected 3 messages (system, ack, user), got %d", len(llm.lastMsgs))
	}
	system := llm.lastMsgs[0]
	if system.Role != openai.RoleSystem {
		t.Fatalf("expected system role first, got %q", system.Role)
	}
	if !strings.Contains(system.Content, "START OF MY KNOWN SENTENCES:") {
		t.Fatalf("expected learned content block in system prompt")
	}
	if !strings.Contains(system.Content, "- Quiero un café.") {
		t.Fatalf("expected card front in system prompt")
	}
	if llm.lastMsgs[1].Content != tutorAck {
		t.Fatalf("expected simulated ack second, got %q", llm.lastMsgs[1].Content)
	}

	stored, ok := sessionRepo.sessions[sid]
	if !ok {
		t.Fatalf("expected session %s persisted", sid)
	}
	transcript, err := stored.Transcript()
	if err != nil {
		t.Fatalf("expected transcript, got error %v", err)
	}
	if len(transcript) != 2 {
		t.Fatalf("expected 2 transcript messages, got %d", len(transcript))
	}
	if transcript[0].Role != openai.RoleUser || transcript[0].Content != "hola" {
		t.Fatalf("expected user turn first, got %+v", transcript[0])
	}
}

func TestConverseAppendsToExistingSession(t *testing.T) {
	svc, llm, _, sessionRepo := newChatFixture(t)
	userID := uuid.New()

	session := &domain.ChatSession{ID: uuid.New(), UserID: userID}
	if err := session.SetTranscript([]domain.ChatMessage{
		{Role: openai.RoleUser, Content: "hola"},
		{Role: openai.RoleAssistant, Content: "¡Hola!"},
	}); err != nil {
		t.Fatalf("expected transcript set, got error %v", err)
	}
	sessionRepo.sessions[session.ID] = session

	_, sid, err := svc.Converse(context.Background(), userID, &session.ID, "¿Qué tal?")
	if err != nil {
		t.Fatalf("expected reply, got error %v", err)
	}
	if sid != session.ID {
		t.Fatalf("expected session id %s echoed, got %s", session.ID, sid)
	}
	if len(llm.lastMsgs) != 5 {
		t.Fatalf("expected 5 messages (system, ack, 2 history, user), got %d", len(llm.lastMsgs))
	}
	transcript, err := session.Transcript()
	if err != nil {
		t.Fatalf("expected transcript, got error %v", err)
	}
	if len(transcript) != 4 {
		t.Fatalf("expected 4 transcript messages, got %d", len(transcript))
	}
}

func TestConverseRejectsForeignSession(t *testing.T) {
	svc, _, _, sessionRepo := newChatFixture(t)
	session := &domain.ChatSession{ID: uuid.New(), UserID: uuid.New()}
	sessionRepo.sessions[session.ID] = session

	_, _, err := svc.Converse(context.Background(), uuid.New(), &session.ID, "hola")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConverseWithoutCards(t *testing.T) {
	svc, llm, _, _ := newChatFixture(t)

	_, _, err := svc.Converse(context.Background(), uuid.New(), nil, "hola")
	if err != nil {
		t.Fatalf("expected reply, got error %v", err)
	}
	if !strings.Contains(llm.lastMsgs[0].Content, emptyLearnedContent) {
		t.Fatalf("expected empty-content marker in system prompt")
	}
}

func TestConverseLatestContinuesSession(t *testing.T) {
	svc, _, _, sessionRepo := newChatFixture(t)
	userID := uuid.New()

	if _, err := svc.ConverseLatest(context.Background(), userID, "hola"); err != nil {
		t.Fatalf("expected reply, got error %v", err)
	}
	if len(sessionRepo.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessionRepo.sessions))
	}

	if _, err := svc.ConverseLatest(context.Background(), userID, "¿Qué tal?"); err != nil {
		t.Fatalf("expected reply, got error %v", err)
	}
	if len(sessionRepo.sessions) != 1 {
		t.Fatalf("expected the session reused, got %d sessions", len(sessionRepo.sessions))
	}
	transcript, err := sessionRepo.latest.Transcript()
	if err != nil {
		t.Fatalf("expected transcript, got error %v", err)
	}
	if len(transcript) != 4 {
		t.Fatalf("expected 4 transcript messages after two turns, got %d", len(transcript))
	}
}

func TestExplainParsesStructuredAnswer(t *testing.T) {
	svc, llm, _, _ := newChatFixture(t)
	llm.reply = "```json\n" + `{"explanation_text":"Ser is for permanent traits.","example_spanish":"Soy alto.","example_english":"I am tall."}` + "\n```"

	explanation, err := svc.Explain(context.Background(), uuid.New(), "ser vs estar", "")
	if err != nil {
		t.Fatalf("expected explanation, got error %v", err)
	}
	if explanation.ExplanationText != "Ser is for permanent traits." {
		t.Fatalf("expected explanation text, got %q", explanation.ExplanationText)
	}
	if explanation.ExampleSpanish == nil || *explanation.ExampleSpanish != "Soy alto." {
		t.Fatalf("expected spanish example, got %v", explanation.ExampleSpanish)
	}
	if !strings.Contains(llm.lastUser, "N/A") {
		t.Fatalf("expected empty context rendered as N/A")
	}
}

func TestExplainFallsBackToRawText(t *testing.T) {
	svc, llm, _, _ := newChatFixture(t)
	llm.reply = "Ser is used for permanent traits, estar for states."

	explanation, err := svc.Explain(context.Background(), uuid.New(), "ser vs estar", "from a textbook")
	if err != nil {
		t.Fatalf("expected explanation, got error %v", err)
	}
	if explanation.ExplanationText != llm.reply {
		t.Fatalf("expected raw text fallback, got %q", explanation.ExplanationText)
	}
	if explanation.ExampleSpanish != nil || explanation.ExampleEnglish != nil {
		t.Fatalf("expected nil examples on fallback")
	}
}

func TestTailMessages(t *testing.T) {
	msgs := []domain.ChatMessage{
		{Role: "user", Content: "1"},
		{Role: "assistant", Content: "2"},
		{Role: "user", Content: "3"},
	}
	got := tailMessages(msgs, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Content != "2" || got[1].Content != "3" {
		t.Fatalf("expected newest window, got %+v", got)
	}
	if len(tailMessages(msgs, 5)) != 3 {
		t.Fatalf("expected full slice when under window")
	}
}
