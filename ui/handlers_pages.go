package ui

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/MAKRANE-cpu/monographie/app"
	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/MAKRANE-cpu/monographie/models"

	"github.com/gin-gonic/gin"
)

const previewRows = 10

type tableCard struct {
	Name    string
	Kind    app.SheetKind
	Rows    int
	Columns int
	Preview *sheet.Table
}

func (s *Server) handleOverview(c *gin.Context) {
	sess := currentSession(c)
	tables, report, err := s.tables(c.Request.Context())
	if err != nil {
		s.pageError(c, err)
		return
	}
	s.visit(c, sess, models.PageOverview)

	cards := make([]tableCard, 0, tables.Len())
	for _, t := range tables.Tables() {
		cards = append(cards, tableCard{
			Name:    t.Name,
			Kind:    app.ClassifySheet(t.Name),
			Rows:    len(t.Rows),
			Columns: len(t.Columns),
			Preview: t.Head(previewRows),
		})
	}

	loadedAt, _ := s.loader.LoadedAt(s.spreadsheetID)
	s.renderTemplate(c, http.StatusOK, "overview.html", gin.H{
		"Title":    "Vue d'ensemble",
		"Page":     models.PageOverview,
		"Tables":   cards,
		"Skipped":  report.Skipped,
		"LoadedAt": loadedAt,
	})
}

// defaultColumn picks the column most relevant to the kind of sheet
func defaultColumn(t *sheet.Table) string {
	var keywords []string
	switch app.ClassifySheet(t.Name) {
	case app.SheetKindAgricultural:
		keywords = app.SurfaceKeywords
	case app.SheetKindClimate:
		keywords = app.RainfallKeywords
	}
	if col, ok := app.PickColumn(t, keywords...); ok && len(keywords) > 0 {
		return col
	}
	if len(t.Columns) > 0 {
		return t.Columns[0]
	}
	return ""
}

func (s *Server) handleAnalysis(c *gin.Context) {
	sess := currentSession(c)
	tables, _, err := s.tables(c.Request.Context())
	if err != nil {
		s.pageError(c, err)
		return
	}

	name := c.Query("sheet")
	if name == "" {
		name = sess.SelectedSheet
	}
	if _, ok := tables.Get(name); !ok {
		if c.Query("sheet") != "" {
			s.pageError(c, errors.NotFound(fmt.Sprintf("sheet %q", name)))
			return
		}
		name = ""
		if names := tables.Names(); len(names) > 0 {
			name = names[0]
		}
	}

	data := gin.H{
		"Title":  "Analyse",
		"Page":   models.PageAnalysis,
		"Sheets": tables.Names(),
		"Sheet":  name,
	}

	t, ok := tables.Get(name)
	if !ok {
		s.visit(c, sess, models.PageAnalysis)
		s.renderTemplate(c, http.StatusOK, "analysis.html", data)
		return
	}
	sess.SelectedSheet = name
	s.visit(c, sess, models.PageAnalysis)

	column := c.Query("column")
	if column == "" {
		column = defaultColumn(t)
	}
	data["Kind"] = app.ClassifySheet(name)
	data["Columns"] = t.Columns
	data["Column"] = column

	if column != "" {
		summary, err := app.Describe(t, column)
		if err != nil {
			s.pageError(c, err)
			return
		}
		series, _ := t.Series(column)

		q := url.Values{}
		q.Set("column", column)
		data["Summary"] = summary
		data["Series"] = app.TopN(series, len(series))
		data["BarURL"] = "/api/tables/" + url.PathEscape(name) + "/chart.png?" + q.Encode()
		q.Set("kind", "pie")
		data["PieURL"] = "/api/tables/" + url.PathEscape(name) + "/chart.png?" + q.Encode()
	}

	s.renderTemplate(c, http.StatusOK, "analysis.html", data)
}

func (s *Server) assistantPage(sess *models.Session, question, errMsg string) gin.H {
	return gin.H{
		"Title":    "Assistant",
		"Page":     models.PageAssistant,
		"History":  sess.History,
		"Enabled":  s.assistant.Enabled(),
		"Question": question,
		"Error":    errMsg,
	}
}

func (s *Server) handleAssistant(c *gin.Context) {
	sess := currentSession(c)
	s.visit(c, sess, models.PageAssistant)
	s.renderTemplate(c, http.StatusOK, "assistant.html", s.assistantPage(sess, "", ""))
}

func (s *Server) handleAsk(c *gin.Context) {
	sess := currentSession(c)
	question := strings.TrimSpace(c.PostForm("question"))

	tables, _, err := s.tables(c.Request.Context())
	if err != nil {
		s.pageError(c, err)
		return
	}

	_, askErr := s.assistant.Ask(c.Request.Context(), sess, tables, question)
	s.visit(c, sess, models.PageAssistant)

	if askErr != nil {
		log.Printf("[Assistant] Question failed for session %s: %v", sess.ID, askErr)
		s.renderTemplate(c, http.StatusOK, "assistant.html", s.assistantPage(sess, question, askErr.Error()))
		return
	}
	s.renderTemplate(c, http.StatusOK, "assistant.html", s.assistantPage(sess, "", ""))
}

func (s *Server) handleAssistantReset(c *gin.Context) {
	sess := currentSession(c)
	if _, err := s.sessions.Reset(c.Request.Context(), sess.ID); err != nil {
		s.pageError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/assistant")
}

func (s *Server) monographPage(sess *models.Session, errMsg string) gin.H {
	return gin.H{
		"Title":     "Monographie",
		"Page":      models.PageMonograph,
		"Enabled":   s.monograph.Enabled(),
		"Monograph": app.RenderHTML(sess.Monograph),
		"HasText":   sess.Monograph != "",
		"Error":     errMsg,
	}
}

func (s *Server) handleMonograph(c *gin.Context) {
	sess := currentSession(c)
	s.visit(c, sess, models.PageMonograph)
	s.renderTemplate(c, http.StatusOK, "monograph.html", s.monographPage(sess, ""))
}

func (s *Server) handleGenerateMonograph(c *gin.Context) {
	sess := currentSession(c)
	tables, _, err := s.tables(c.Request.Context())
	if err != nil {
		s.pageError(c, err)
		return
	}

	_, genErr := s.monograph.Generate(c.Request.Context(), sess, tables)
	s.visit(c, sess, models.PageMonograph)

	errMsg := ""
	if genErr != nil {
		log.Printf("[Monograph] Generation failed for session %s: %v", sess.ID, genErr)
		errMsg = genErr.Error()
	}
	s.renderTemplate(c, http.StatusOK, "monograph.html", s.monographPage(sess, errMsg))
}

func (s *Server) handleMonographDownload(c *gin.Context) {
	sess := currentSession(c)
	if sess.Monograph == "" {
		c.String(http.StatusNotFound, "Aucune monographie générée")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", app.MonographFileName(s.now())))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(sess.Monograph))
}

func (s *Server) handleRefresh(c *gin.Context) {
	_, report, err := s.loader.Refresh(c.Request.Context(), s.spreadsheetID)
	if err != nil {
		s.pageError(c, err)
		return
	}
	log.Printf("[UI] Refreshed %d tables (%d skipped)", len(report.Loaded), len(report.Skipped))
	c.Redirect(http.StatusSeeOther, "/")
}
