// Package prompts loads the LLM prompt templates. The defaults ship
// embedded in the binary; PROMPTS_YAML points at an override file so prompt
// wording can change without a rebuild.
package prompts

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
)

const promptsPathEnv = "PROMPTS_YAML"

//go:embed prompts.yaml
var defaultPromptsFS embed.FS

// Set holds every prompt template the services render. Placeholders use
// {name} form and are substituted with Render.
type Set struct {
	Version           int    `yaml:"version"`
	TandemSystem      string `yaml:"tandem_system"`
	TeacherSystem     string `yaml:"teacher_system"`
	SentenceProposer  string `yaml:"sentence_proposer"`
	SentenceValidator string `yaml:"sentence_validator"`
	CardBuilder       string `yaml:"card_builder"`
}

func Load(log *logger.Logger) (*Set, error) {
	raw, source, err := readRaw()
	if err != nil {
		return nil, err
	}

	var set Set
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("parse prompts yaml (%s): %w", source, err)
	}
	if err := set.validate(); err != nil {
		return nil, fmt.Errorf("prompts yaml (%s): %w", source, err)
	}

	if log != nil {
		log.Info("Loaded prompt templates", "source", source, "version", set.Version)
	}
	return &set, nil
}

func readRaw() ([]byte, string, error) {
	if path := strings.TrimSpace(os.Getenv(promptsPathEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read %s=%s: %w", promptsPathEnv, path, err)
		}
		return raw, path, nil
	}
	raw, err := defaultPromptsFS.ReadFile("prompts.yaml")
	if err != nil {
		return nil, "", fmt.Errorf("read embedded prompts: %w", err)
	}
	return raw, "embedded", nil
}

func (s *Set) validate() error {
	missing := []string{}
	for name, v := range map[string]string{
		"tandem_system":      s.TandemSystem,
		"teacher_system":     s.TeacherSystem,
		"sentence_proposer":  s.SentenceProposer,
		"sentence_validator": s.SentenceValidator,
		"card_builder":       s.CardBuilder,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing templates: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Render substitutes {name} placeholders with the given values. Unknown
// placeholders are left in place so a template typo is visible in output
// rather than silently dropped.
func Render(tpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
