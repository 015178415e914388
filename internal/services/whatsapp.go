package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/domain/cards"
	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/platform/redis"
)

const (
	// linkCommandPrefix starts the account-linking command. Matching is
	// case-insensitive and requires a following code ("LINK 123456").
	linkCommandPrefix = "LINK"
	// cardCommandPrefix starts the quick-add flashcard command.
	cardCommandPrefix = "/"

	linkCodeTTL = 5 * time.Minute
)

const welcomeMessage = "¡Hola! Welcome to your AI Spanish learning partner. 🇪🇸\n\n" +
	"I can help you practice conversations and explain grammar.\n\n" +
	"To save flashcards and your progress, link this chat to your account:\n" +
	"1. Sign in to the web app.\n" +
	"2. Open your profile page and request a WhatsApp link code.\n" +
	"3. Send the code back here like this: LINK 123456\n\n" +
	"Ready to chat a bit first?"

const linkSuccessMessage = "✅ Linked! This WhatsApp number is now connected to your account. " +
	"Send any message to practice, or " + cardCommandPrefix + " plus a word to save a flashcard."

const linkInvalidMessage = "That code is not valid or has expired. " +
	"Request a new code from your profile page and try again."

const numberTakenMessage = "This WhatsApp number is already linked to another account."

const cardUsageMessage = "To add a card, send " + cardCommandPrefix + " followed by the word or phrase " +
	"(e.g. '" + cardCommandPrefix + " hola'). Send '" + cardCommandPrefix + " front - back' to set the translation yourself."

const emptyBodyMessage = "I didn't catch that. Send a message to practice, or " +
	cardCommandPrefix + " plus a word to save a flashcard."

// LinkCode is a freshly issued WhatsApp linking code, already formatted as
// the message the learner sends back.
type LinkCode struct {
	Code             string
	ExpiresInSeconds int
}

// WhatsappService issues link codes and dispatches inbound WhatsApp messages
// to the linking, quick-add and tutor chat flows.
type WhatsappService interface {
	GenerateLinkCode(ctx context.Context, userID uuid.UUID) (*LinkCode, error)
	HandleInbound(ctx context.Context, from, body string) (string, error)
}

type whatsappService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	cards    CardService
	composer ComposerService
	chat     ChatService
	codes    redis.LinkCodeStore
}

func NewWhatsappService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	cardService CardService,
	composer ComposerService,
	chat ChatService,
	codes redis.LinkCodeStore,
) WhatsappService {
	return &whatsappService{
		log:      log.With("service", "WhatsappService"),
		userRepo: userRepo,
		cards:    cardService,
		composer: composer,
		chat:     chat,
		codes:    codes,
	}
}

// GenerateLinkCode mints a single-use numeric code tied to the caller. The
// code only lives in Redis; once taken or expired it cannot link again.
func (ws *whatsappService) GenerateLinkCode(ctx context.Context, userID uuid.UUID) (*LinkCode, error) {
	users, err := ws.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, pkgerrors.ErrNotFound)
	}
	if users[0].WhatsappNumber != nil {
		return nil, fmt.Errorf("whatsapp number already linked: %w", pkgerrors.ErrConflict)
	}

	code, err := randomLinkCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	if err := ws.codes.Put(ctx, code, userID, linkCodeTTL); err != nil {
		return nil, fmt.Errorf("store code: %w", err)
	}

	ws.log.Info("Issued WhatsApp link code", "user_id", userID)
	return &LinkCode{
		Code:             linkCommandPrefix + " " + code,
		ExpiresInSeconds: int(linkCodeTTL.Seconds()),
	}, nil
}

// HandleInbound routes one webhook message and returns the reply body. Reply
// text is always safe to show the sender; infrastructure failures come back
// as errors for the handler to translate.
func (ws *whatsappService) HandleInbound(ctx context.Context, from, body string) (string, error) {
	from = strings.TrimSpace(from)
	body = strings.TrimSpace(body)
	if from == "" {
		return "", fmt.Errorf("sender required: %w", pkgerrors.ErrInvalidArgument)
	}

	sender, err := ws.userRepo.GetByWhatsappNumber(ctx, nil, from)
	if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return "", fmt.Errorf("resolve sender: %w", err)
	}
	linked := sender != nil
	isLinkCommand := strings.HasPrefix(strings.ToUpper(body), linkCommandPrefix+" ")

	switch {
	case linked && isLinkCommand:
		return fmt.Sprintf("¡Hola! This WhatsApp number is already linked to the account %s. "+
			"You don't need to link it again. Let's chat!", sender.Email), nil

	case linked && strings.HasPrefix(body, cardCommandPrefix):
		term := strings.TrimSpace(strings.TrimPrefix(body, cardCommandPrefix))
		return ws.addCardCommand(ctx, sender.ID, term)

	case linked:
		if body == "" {
			return emptyBodyMessage, nil
		}
		reply, err := ws.chat.ConverseLatest(ctx, sender.ID, body)
		if err != nil {
			return "", fmt.Errorf("tutor reply: %w", err)
		}
		return reply, nil

	case isLinkCommand:
		code := strings.TrimSpace(body[len(linkCommandPrefix):])
		return ws.completeLink(ctx, from, code)

	default:
		return welcomeMessage, nil
	}
}

func (ws *whatsappService) addCardCommand(ctx context.Context, userID uuid.UUID, term string) (string, error) {
	if term == "" {
		return cardUsageMessage, nil
	}

	front, back, ok := splitCardPair(term)
	if !ok {
		var err error
		front, back, err = ws.composer.BuildCard(ctx, term)
		if err != nil {
			return "", fmt.Errorf("build card for %q: %w", term, err)
		}
	}

	card, err := ws.cards.Create(ctx, userID, front, back, nil, cards.SourceWhatsapp)
	if errors.Is(err, pkgerrors.ErrConflict) {
		return fmt.Sprintf("You already have a card for \"%s\". Send a different word or just keep chatting!", front), nil
	}
	if err != nil {
		return "", fmt.Errorf("save card: %w", err)
	}
	return fmt.Sprintf("Saved! 📇\n%s = %s", card.Front, card.Back), nil
}

func (ws *whatsappService) completeLink(ctx context.Context, from, code string) (string, error) {
	userID, err := ws.codes.Take(ctx, code)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return linkInvalidMessage, nil
	}
	if err != nil {
		return "", fmt.Errorf("take link code: %w", err)
	}

	err = ws.userRepo.LinkWhatsappNumber(ctx, nil, userID, from)
	switch {
	case errors.Is(err, pkgerrors.ErrConflict):
		return numberTakenMessage, nil
	case errors.Is(err, pkgerrors.ErrNotFound):
		return linkInvalidMessage, nil
	case err != nil:
		return "", fmt.Errorf("link number: %w", err)
	}

	ws.log.Info("Linked WhatsApp number", "user_id", userID)
	return linkSuccessMessage, nil
}

// splitCardPair recognizes the "front - back" form of the quick-add command.
func splitCardPair(term string) (string, string, bool) {
	parts := strings.SplitN(term, " - ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	front := strings.TrimSpace(parts[0])
	back := strings.TrimSpace(parts[1])
	if front == "" || back == "" {
		return "", "", false
	}
	return front, back, true
}

func randomLinkCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}
