package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/domain"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/platform/openai"
	"github.com/yungbote/lingobridge-backend/internal/prompts"
)

const (
	// learnedContentLimit caps how many card fronts are injected into the
	// tandem system prompt.
	learnedContentLimit = 50
	// transcriptWindow caps how much stored history is replayed to the model
	// on each turn.
	transcriptWindow = 20

	// tutorAck is the simulated first assistant turn. Seeding the transcript
	// with it keeps the model answering in persona from the first real turn.
	tutorAck = "¡Claro! Entendido. Estoy listo para practicar contigo. ¿Qué quieres decir?"

	emptyLearnedContent = "(No flashcards with content found)"
)

// Explanation is the teacher persona's structured answer. Examples are nil
// when the model answered in plain text instead of the requested shape.
type Explanation struct {
	ExplanationText string  `json:"explanation_text"`
	ExampleSpanish  *string `json:"example_spanish"`
	ExampleEnglish  *string `json:"example_english"`
}

type ChatService interface {
	Converse(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, message string) (reply string, sid uuid.UUID, err error)
	ConverseLatest(ctx context.Context, userID uuid.UUID, message string) (string, error)
	Explain(ctx context.Context, userID uuid.UUID, topic, contextNote string) (*Explanation, error)
}

type chatService struct {
	log         *logger.Logger
	llm         openai.Client
	prompts     *prompts.Set
	cardRepo    repos.CardRepo
	sessionRepo repos.SessionRepo
}

func NewChatService(
	log *logger.Logger,
	llm openai.Client,
	promptSet *prompts.Set,
	cardRepo repos.CardRepo,
	sessionRepo repos.SessionRepo,
) ChatService {
	return &chatService{
		log:         log.With("service", "ChatService"),
		llm:         llm,
		prompts:     promptSet,
		cardRepo:    cardRepo,
		sessionRepo: sessionRepo,
	}
}

// Converse runs one tandem turn: the learner's saved sentences go into the
// system prompt, the stored transcript window is replayed, and the new
// exchange is appended to the session.
func (cs *chatService) Converse(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, message string) (string, uuid.UUID, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", uuid.Nil, fmt.Errorf("message required: %w", pkgerrors.ErrInvalidArgument)
	}

	var session *domain.ChatSession
	var history []domain.ChatMessage
	if sessionID != nil {
		loaded, err := cs.sessionRepo.GetByID(ctx, nil, *sessionID, userID)
		if err != nil {
			return "", uuid.Nil, fmt.Errorf("load session: %w", err)
		}
		session = loaded
		history, err = session.Transcript()
		if err != nil {
			return "", uuid.Nil, fmt.Errorf("decode transcript: %w", err)
		}
	}

	system, err := cs.tandemSystemPrompt(ctx, userID)
	if err != nil {
		return "", uuid.Nil, err
	}

	msgs := make([]openai.Message, 0, len(history)+3)
	msgs = append(msgs,
		openai.Message{Role: openai.RoleSystem, Content: system},
		openai.Message{Role: openai.RoleAssistant, Content: tutorAck},
	)
	for _, m := range tailMessages(history, transcriptWindow) {
		msgs = append(msgs, openai.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, openai.Message{Role: openai.RoleUser, Content: message})

	reply, err := cs.llm.Chat(ctx, msgs)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("tutor chat: %w", err)
	}

	history = append(history,
		domain.ChatMessage{Role: openai.RoleUser, Content: message},
		domain.ChatMessage{Role: openai.RoleAssistant, Content: reply},
	)

	if session == nil {
		session = &domain.ChatSession{ID: uuid.New(), UserID: userID}
		if err := session.SetTranscript(history); err != nil {
			return "", uuid.Nil, fmt.Errorf("encode transcript: %w", err)
		}
		if err := cs.sessionRepo.Create(ctx, nil, []*domain.ChatSession{session}); err != nil {
			return "", uuid.Nil, fmt.Errorf("create session: %w", err)
		}
	} else {
		if err := session.SetTranscript(history); err != nil {
			return "", uuid.Nil, fmt.Errorf("encode transcript: %w", err)
		}
		if err := cs.sessionRepo.UpdateTranscript(ctx, nil, session.ID, userID, session.Messages); err != nil {
			return "", uuid.Nil, fmt.Errorf("store transcript: %w", err)
		}
	}
	return reply, session.ID, nil
}

// ConverseLatest continues the learner's most recent session, starting one
// when none exists. The WhatsApp flow uses it so a chat thread survives
// across webhooks without the sender tracking session ids.
func (cs *chatService) ConverseLatest(ctx context.Context, userID uuid.UUID, message string) (string, error) {
	var sessionID *uuid.UUID
	latest, err := cs.sessionRepo.GetLatestByUser(ctx, nil, userID)
	switch {
	case err == nil:
		sessionID = &latest.ID
	case errors.Is(err, pkgerrors.ErrNotFound):
	default:
		return "", fmt.Errorf("load latest session: %w", err)
	}
	reply, _, err := cs.Converse(ctx, userID, sessionID, message)
	return reply, err
}

// Explain asks the teacher persona for a structured explanation. Models
// occasionally ignore the JSON instruction, so an unparseable answer is
// returned as plain text rather than failing the request.
func (cs *chatService) Explain(ctx context.Context, userID uuid.UUID, topic, contextNote string) (*Explanation, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic required: %w", pkgerrors.ErrInvalidArgument)
	}
	contextNote = strings.TrimSpace(contextNote)
	if contextNote == "" {
		contextNote = "N/A"
	}

	prompt := prompts.Render(cs.prompts.TeacherSystem, map[string]string{
		"topic":   topic,
		"context": contextNote,
	})
	raw, err := cs.llm.GenerateText(ctx, "", prompt)
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty explanation from model: %w", pkgerrors.ErrUnavailable)
	}

	var explanation Explanation
	if err := decodeModelJSON(raw, &explanation); err != nil || explanation.ExplanationText == "" {
		cs.log.Warn("Explanation did not parse as JSON, returning raw text", "user_id", userID, "topic", topic)
		return &Explanation{ExplanationText: strings.TrimSpace(raw)}, nil
	}
	return &explanation, nil
}

// tandemSystemPrompt renders the tandem persona with the learner's saved
// card fronts injected.
func (cs *chatService) tandemSystemPrompt(ctx context.Context, userID uuid.UUID) (string, error) {
	cards, err := cs.cardRepo.ListByUser(ctx, nil, userID, repos.CardList{Limit: learnedContentLimit})
	if err != nil {
		return "", fmt.Errorf("load learned content: %w", err)
	}
	fronts := make([]string, 0, len(cards))
	for _, c := range cards {
		if front := strings.TrimSpace(c.Front); front != "" {
			fronts = append(fronts, front)
		}
	}
	return prompts.Render(cs.prompts.TandemSystem, map[string]string{
		"learned_content": learnedContentBlock(fronts),
	}), nil
}

func learnedContentBlock(fronts []string) string {
	if len(fronts) == 0 {
		return emptyLearnedContent
	}
	var b strings.Builder
	b.WriteString("START OF MY KNOWN SENTENCES:\n")
	for _, f := range fronts {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	b.WriteString("END OF MY KNOWN SENTENCES.")
	return b.String()
}

func tailMessages(msgs []domain.ChatMessage, n int) []domain.ChatMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
