package handlers

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/platform/twilio"
	"github.com/yungbote/lingobridge-backend/internal/requestdata"
	"github.com/yungbote/lingobridge-backend/internal/services"
	"github.com/yungbote/lingobridge-backend/internal/srs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("expected logger, got error %v", err)
	}
	return log
}

// withUser stamps a fixed caller on every request, standing in for the auth
// middleware.
func withUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type fakeReviewService struct {
	summary *services.DueSummary
	graded  []srs.Grade
	err     error
}

func (f *fakeReviewService) DueCards(ctx context.Context, userID uuid.UUID, limit int) (*services.DueSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func (f *fakeReviewService) GradeCard(ctx context.Context, userID, cardID uuid.UUID, grade srs.Grade) (*domain.Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.graded = append(f.graded, grade)
	return &domain.Card{ID: cardID, UserID: userID}, nil
}

type fakeCardService struct {
	created []*domain.Card
	err     error
}

func (f *fakeCardService) Create(ctx context.Context, userID uuid.UUID, front, back string, tags []string, source string) (*domain.Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	card := &domain.Card{ID: uuid.New(), UserID: userID, Front: front, Back: back, Source: source}
	f.created = append(f.created, card)
	return card, nil
}

func (f *fakeCardService) List(ctx context.Context, userID uuid.UUID, filter repos.CardList) ([]*domain.Card, error) {
	return nil, f.err
}

func (f *fakeCardService) UpdateContent(ctx context.Context, userID, cardID uuid.UUID, front, back *string, tags *[]string) (*domain.Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Card{ID: cardID, UserID: userID}, nil
}

func (f *fakeCardService) Delete(ctx context.Context, userID, cardID uuid.UUID) error {
	return f.err
}

type fakeWhatsappService struct {
	reply    string
	err      error
	inbound  []string
	lastFrom string
}

func (f *fakeWhatsappService) GenerateLinkCode(ctx context.Context, userID uuid.UUID) (*services.LinkCode, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.LinkCode{Code: "LINK 123456", ExpiresInSeconds: 300}, nil
}

func (f *fakeWhatsappService) HandleInbound(ctx context.Context, from, body string) (string, error) {
	f.lastFrom = from
	f.inbound = append(f.inbound, body)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeTwilioClient validates any signature equal to "valid".
type fakeTwilioClient struct{}

func (fakeTwilioClient) SendWhatsApp(ctx context.Context, to string, body string) (*twilio.Message, error) {
	return &twilio.Message{To: to, Body: body}, nil
}

func (fakeTwilioClient) SendMessage(ctx context.Context, req twilio.SendMessageRequest) (*twilio.Message, error) {
	return &twilio.Message{To: req.To, Body: req.Body}, nil
}

func (fakeTwilioClient) ValidateSignature(signature string, requestURL string, params url.Values) bool {
	return signature == "valid"
}

func (fakeTwilioClient) WhatsAppFrom() string { return "whatsapp:+14155238886" }
