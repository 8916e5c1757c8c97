package app

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MAKRANE-cpu/monographie/adapters/export"
	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal"
	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/MAKRANE-cpu/monographie/models"
	"github.com/MAKRANE-cpu/monographie/ports"
)

// ExcerptMode selects how much of each table is sent to the model
type ExcerptMode string

const (
	ExcerptHead ExcerptMode = "head"
	ExcerptFull ExcerptMode = "full"
)

// DefaultExcerptRows is the number of rows per table in head mode
const DefaultExcerptRows = 20

// ParseExcerptMode maps "full" to ExcerptFull and anything else to head mode
func ParseExcerptMode(s string) ExcerptMode {
	if strings.EqualFold(strings.TrimSpace(s), string(ExcerptFull)) {
		return ExcerptFull
	}
	return ExcerptHead
}

// BuildExcerpt renders every table as CSV under a "### <worksheet>" heading,
// in load order. Head mode keeps the first headRows rows of each table.
func BuildExcerpt(c *sheet.Collection, mode ExcerptMode, headRows int) string {
	if headRows <= 0 {
		headRows = DefaultExcerptRows
	}

	var b strings.Builder
	for i, t := range c.Tables() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### %s\n", t.Name)

		part := t
		if mode != ExcerptFull && len(t.Rows) > headRows {
			part = t.Head(headRows)
		}

		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, part); err != nil {
			continue
		}
		b.Write(buf.Bytes())
		if part != t {
			fmt.Fprintf(&b, "(%d autres lignes non affichées)\n", len(t.Rows)-len(part.Rows))
		}
	}
	return b.String()
}

// PromptOptions controls the data part of a question prompt
type PromptOptions struct {
	Mode     ExcerptMode
	HeadRows int
}

// BuildQuestionPrompt assembles the expert context, the available worksheets,
// the data excerpt and the question into one prompt.
func BuildQuestionPrompt(c *sheet.Collection, question string, opts PromptOptions) string {
	names := c.Names()
	available := "aucune"
	if len(names) > 0 {
		available = strings.Join(names, ", ")
	}

	var b strings.Builder
	b.WriteString("Vous êtes un assistant expert en agriculture pour la province de Chefchaouen, Maroc.\n\n")
	fmt.Fprintf(&b, "Données disponibles dans les feuilles : %s\n\n", available)
	b.WriteString("Si une information n'est pas disponible dans les données fournies, utilisez vos connaissances générales ")
	b.WriteString("sur l'agriculture au Maroc, la région du Rif et Chefchaouen pour compléter votre réponse. ")
	b.WriteString("Précisez toujours quand vous utilisez des connaissances générales plutôt que les données du fichier.\n\n")

	if c.Len() > 0 {
		b.WriteString("Extrait des données (CSV, une section par feuille, la section indique la feuille source) :\n\n")
		b.WriteString(BuildExcerpt(c, opts.Mode, opts.HeadRows))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question : %s\n", strings.TrimSpace(question))
	return b.String()
}

// AssistantConfig holds model settings for question answering
type AssistantConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Excerpt     PromptOptions
}

// AssistantService answers free-text questions about the loaded tables
type AssistantService struct {
	llm    ports.LLMClient
	config AssistantConfig
	logger *internal.Logger
	now    func() time.Time
}

// NewAssistantService creates the service. A nil llm means no API key was
// configured; Ask then fails with CONFIG_INVALID.
func NewAssistantService(llm ports.LLMClient, config AssistantConfig, logger *internal.Logger) *AssistantService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AssistantService{llm: llm, config: config, logger: logger.With("Assistant"), now: time.Now}
}

// Enabled reports whether a model is available
func (s *AssistantService) Enabled() bool {
	return s.llm != nil
}

// Ask records the question on the session, queries the model and records
// its verbatim answer. On failure only the question is recorded.
func (s *AssistantService) Ask(ctx context.Context, sess *models.Session, tables *sheet.Collection, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.InvalidInput("empty question")
	}
	if s.llm == nil {
		return "", errors.ConfigInvalid("OPENAI_API_KEY is not set; the assistant is disabled")
	}

	sess.Append(models.RoleUser, question, s.now())

	answer, err := s.llm.ChatCompletion(ctx, ports.ChatRequest{
		Model:       s.config.Model,
		Prompt:      BuildQuestionPrompt(tables, question, s.config.Excerpt),
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		s.logger.Warn("question failed for session %s: %v", sess.ID, err)
		return "", errors.Wrap(err, "assistant request failed")
	}

	sess.Append(models.RoleAssistant, answer, s.now())
	s.logger.Debug("answered session %s (%d chars)", sess.ID, len(answer))
	return answer, nil
}
