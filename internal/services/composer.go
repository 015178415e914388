package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
	"github.com/yungbote/lingobridge-backend/internal/platform/openai"
	"github.com/yungbote/lingobridge-backend/internal/prompts"
)

// SentenceProposal is a model-suggested practice sentence built around one
// target word.
type SentenceProposal struct {
	ProposedSpanish string `json:"proposed_spanish"`
	ProposedEnglish string `json:"proposed_english"`
	TargetWord      string `json:"target_word"`
}

// SentenceValidation is the model's verdict on a learner-written sentence,
// with the corrected pair that ends up on the card.
type SentenceValidation struct {
	FinalSpanish string `json:"final_spanish"`
	FinalEnglish string `json:"final_english"`
	IsValid      bool   `json:"is_valid"`
	Feedback     string `json:"feedback"`
}

// ComposerService runs the model-assisted card drafting steps: propose a
// sentence, validate or translate the learner's attempt, and build a
// front/back pair from a bare term.
type ComposerService interface {
	ProposeSentence(ctx context.Context, targetWord string) (*SentenceProposal, error)
	ValidateSentence(ctx context.Context, targetWord, userSentence, language string) (*SentenceValidation, error)
	BuildCard(ctx context.Context, term string) (front, back string, err error)
}

type composerService struct {
	log     *logger.Logger
	llm     openai.Client
	prompts *prompts.Set
}

func NewComposerService(log *logger.Logger, llm openai.Client, promptSet *prompts.Set) ComposerService {
	return &composerService{
		log:     log.With("service", "ComposerService"),
		llm:     llm,
		prompts: promptSet,
	}
}

func (cs *composerService) ProposeSentence(ctx context.Context, targetWord string) (*SentenceProposal, error) {
	targetWord = strings.TrimSpace(targetWord)
	if targetWord == "" {
		return nil, fmt.Errorf("target word required: %w", pkgerrors.ErrInvalidArgument)
	}

	system := prompts.Render(cs.prompts.SentenceProposer, map[string]string{
		"target_word": targetWord,
	})
	raw, err := cs.llm.GenerateJSON(ctx, system, targetWord)
	if err != nil {
		return nil, fmt.Errorf("propose sentence: %w", err)
	}

	var proposal SentenceProposal
	if err := decodeModelJSON(raw, &proposal); err != nil {
		cs.log.Error("Unparseable proposal from model", "raw", raw, "error", err)
		return nil, fmt.Errorf("parse proposal: %w: %w", pkgerrors.ErrUnavailable, err)
	}
	if proposal.ProposedSpanish == "" || proposal.ProposedEnglish == "" {
		cs.log.Error("Proposal missing required keys", "raw", raw)
		return nil, fmt.Errorf("proposal missing required keys: %w", pkgerrors.ErrUnavailable)
	}
	proposal.TargetWord = targetWord
	return &proposal, nil
}

func (cs *composerService) ValidateSentence(ctx context.Context, targetWord, userSentence, language string) (*SentenceValidation, error) {
	targetWord = strings.TrimSpace(targetWord)
	userSentence = strings.TrimSpace(userSentence)
	if targetWord == "" || userSentence == "" {
		return nil, fmt.Errorf("target word and sentence required: %w", pkgerrors.ErrInvalidArgument)
	}
	if language != "es" && language != "en" {
		return nil, fmt.Errorf("language must be \"es\" or \"en\": %w", pkgerrors.ErrInvalidArgument)
	}

	system := prompts.Render(cs.prompts.SentenceValidator, map[string]string{
		"target_word":   targetWord,
		"user_sentence": userSentence,
		"language":      language,
	})
	raw, err := cs.llm.GenerateJSON(ctx, system, userSentence)
	if err != nil {
		return nil, fmt.Errorf("validate sentence: %w", err)
	}

	verdict, err := parseValidation(raw)
	if err != nil {
		cs.log.Error("Unparseable validation from model", "raw", raw, "error", err)
		return nil, fmt.Errorf("parse validation: %w: %w", pkgerrors.ErrUnavailable, err)
	}
	return verdict, nil
}

// BuildCard turns a bare term into a front/back pair. It backs the quick-add
// flow where the learner supplies only the word they want to keep.
func (cs *composerService) BuildCard(ctx context.Context, term string) (string, string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", "", fmt.Errorf("term required: %w", pkgerrors.ErrInvalidArgument)
	}

	system := prompts.Render(cs.prompts.CardBuilder, map[string]string{
		"term": term,
	})
	raw, err := cs.llm.GenerateJSON(ctx, system, term)
	if err != nil {
		return "", "", fmt.Errorf("build card: %w", err)
	}

	var pair struct {
		SpanishFront string `json:"spanish_front"`
		EnglishBack  string `json:"english_back"`
	}
	if err := decodeModelJSON(raw, &pair); err != nil {
		cs.log.Error("Unparseable card pair from model", "raw", raw, "error", err)
		return "", "", fmt.Errorf("parse card pair: %w: %w", pkgerrors.ErrUnavailable, err)
	}
	if pair.SpanishFront == "" || pair.EnglishBack == "" {
		return "", "", fmt.Errorf("card pair missing required keys: %w", pkgerrors.ErrUnavailable)
	}
	return pair.SpanishFront, pair.EnglishBack, nil
}

// parseValidation decodes the validator verdict, coercing is_valid from the
// bool and string spellings models alternate between.
func parseValidation(raw string) (*SentenceValidation, error) {
	var loose struct {
		FinalSpanish *string         `json:"final_spanish"`
		FinalEnglish *string         `json:"final_english"`
		IsValid      json.RawMessage `json:"is_valid"`
		Feedback     *string         `json:"feedback"`
	}
	if err := decodeModelJSON(raw, &loose); err != nil {
		return nil, err
	}
	if loose.FinalSpanish == nil || loose.FinalEnglish == nil || loose.IsValid == nil || loose.Feedback == nil {
		return nil, fmt.Errorf("missing required keys")
	}
	isValid, err := coerceBool(loose.IsValid)
	if err != nil {
		return nil, fmt.Errorf("is_valid: %w", err)
	}
	return &SentenceValidation{
		FinalSpanish: *loose.FinalSpanish,
		FinalEnglish: *loose.FinalEnglish,
		IsValid:      isValid,
		Feedback:     *loose.Feedback,
	}, nil
}

// decodeModelJSON unmarshals model output into out after stripping the
// wrapping the model tends to add around the JSON object.
func decodeModelJSON(raw string, out any) error {
	return json.Unmarshal([]byte(extractJSONObject(raw)), out)
}

// extractJSONObject peels markdown fences off model output and narrows it to
// the outermost brace range, leaving the input untouched when no object is
// found.
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") && strings.HasSuffix(s, "```") && len(s) > 10 {
		s = strings.TrimSpace(s[7 : len(s)-3])
	} else if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) > 6 {
		s = strings.TrimSpace(s[3 : len(s)-3])
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func coerceBool(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("not a recognizable boolean: %s", raw)
}
