package app

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal"
	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/MAKRANE-cpu/monographie/models"
	"github.com/MAKRANE-cpu/monographie/ports"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// sampleRows is the number of rows quoted per worksheet in a data summary
const sampleRows = 5

// SheetSummary is what the model learns about one worksheet
type SheetSummary struct {
	Columns    []string                 `json:"columns"`
	Summary    map[string]Summary       `json:"summary"`
	SampleData []map[string]interface{} `json:"sample_data"`
}

// BuildDataSummary describes every non-empty table: its columns, the
// statistics of each measure column and its first rows.
func BuildDataSummary(c *sheet.Collection) map[string]SheetSummary {
	out := make(map[string]SheetSummary, c.Len())
	for _, t := range c.Tables() {
		if len(t.Rows) == 0 || len(t.Columns) == 0 {
			continue
		}

		head := t.Head(sampleRows)
		samples := make([]map[string]interface{}, 0, len(head.Rows))
		for _, r := range head.Rows {
			record := make(map[string]interface{}, len(t.Columns)+1)
			record[t.IDColumn] = r.ID
			for i, col := range t.Columns {
				record[col] = r.Values[i]
			}
			samples = append(samples, record)
		}

		out[t.Name] = SheetSummary{
			Columns:    t.Header(),
			Summary:    DescribeTable(t),
			SampleData: samples,
		}
	}
	return out
}

// MonographSystemMessage frames the model for report writing
const MonographSystemMessage = "Vous êtes un expert en géographie et développement rural au Maroc."

// BuildMonographPrompt lays out the four-part report structure followed by
// the data summary as indented JSON.
func BuildMonographPrompt(c *sheet.Collection) (string, error) {
	summary, err := json.MarshalIndent(BuildDataSummary(c), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize data summary")
	}

	var b strings.Builder
	b.WriteString(`Vous êtes un expert en géographie, agriculture et développement rural au Maroc.

Génère une monographie complète et structurée de la Province de Chefchaouen en suivant cette structure :

1. CADRE GÉOGRAPHIQUE
   - Localisation et limites administratives
   - Topographie (relief montagneux du Rif)
   - Climat et précipitations
   - Hydrographie et ressources en eau
   - Végétation naturelle

2. POTENTIEL AGRICOLE ACTUEL (basé sur les données fournies)
   - Analyse des cultures principales selon les données
   - Superficies cultivées
   - Productions et rendements
   - Systèmes de production (pluvial/irrigué)
   - Spécificités locales (arboriculture, cannabis légal/industriel si applicable)

3. DIAGNOSTIC SWOT
   - Forces (avantages naturels, savoir-faire local)
   - Faiblesses (contraintes topographiques, accès limité, etc.)
   - Opportunités (marchés, programmes de développement)
   - Menaces (changement climatique, érosion, etc.)

4. RECOMMANDATIONS POUR LE DÉVELOPPEMENT RURAL
   - Stratégies d'amélioration de la productivité
   - Diversification des cultures
   - Gestion durable des ressources
   - Valorisation des produits locaux
   - Intégration des nouvelles technologies

Données disponibles dans le fichier :
`)
	b.Write(summary)
	b.WriteString(`

Si certaines données sont manquantes, utilisez vos connaissances générales sur Chefchaouen et le Rif marocain.
Intégrez les spécificités de la région : topographie montagneuse, culture pluviale dominante,
arboriculture (oliviers, figuiers), et le contexte du développement du cannabis légal/industriel.

Format de sortie : texte structuré en Markdown avec titres et sous-titres clairs, en français.
`)
	return b.String(), nil
}

// MonographConfig holds model settings for report generation
type MonographConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// DefaultMonographTemperature leaves the model room for prose
const DefaultMonographTemperature = 0.7

// MonographService writes the provincial monograph from the loaded tables
type MonographService struct {
	llm    ports.LLMClient
	config MonographConfig
	logger *internal.Logger
}

// NewMonographService creates the service; a nil llm disables generation
func NewMonographService(llm ports.LLMClient, config MonographConfig, logger *internal.Logger) *MonographService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MonographService{llm: llm, config: config, logger: logger.With("Monograph")}
}

// Enabled reports whether a model is available
func (s *MonographService) Enabled() bool {
	return s.llm != nil
}

// Generate asks the model for the monograph and stores it on the session.
// A failed generation leaves any previous monograph in place.
func (s *MonographService) Generate(ctx context.Context, sess *models.Session, tables *sheet.Collection) (string, error) {
	if s.llm == nil {
		return "", errors.ConfigInvalid("OPENAI_API_KEY is not set; monograph generation is disabled")
	}

	prompt, err := BuildMonographPrompt(tables)
	if err != nil {
		return "", err
	}

	start := time.Now()
	text, err := s.llm.ChatCompletion(ctx, ports.ChatRequest{
		Model:       s.config.Model,
		System:      MonographSystemMessage,
		Prompt:      prompt,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		s.logger.Warn("generation failed for session %s: %v", sess.ID, err)
		return "", errors.Wrap(err, "monograph generation failed")
	}

	sess.Monograph = text
	s.logger.Info("monograph generated for session %s in %v (%d chars)", sess.ID, time.Since(start), len(text))
	return text, nil
}

// RenderHTML converts the Markdown monograph to HTML for display
func RenderHTML(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return template.HTML(markdown.ToHTML([]byte(md), p, renderer))
}

// MonographFileName is the download name of a monograph generated at now
func MonographFileName(now time.Time) string {
	return fmt.Sprintf("Monographie_Chefchaouen_%s.txt", now.Format("20060102"))
}
