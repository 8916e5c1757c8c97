package ui

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/MAKRANE-cpu/monographie/adapters/datareadiness/coercer"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

// frenchNumber formats with a space thousands separator and a decimal comma
const frenchNumber = "# ###,##"

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"num": formatNumber,
		"raw": coercer.Format,
		"add": func(a, b int) int { return a + b },
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("02/01/2006 15:04")
		},
	}
}

func formatNumber(v float64) string {
	return humanize.FormatFloat(frenchNumber, v)
}

// renderTemplate executes a template into a buffer first so that a failing
// template never leaves a half-written page
func (s *Server) renderTemplate(c *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("[Template] Error rendering %s: %v", name, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("[Template] Error writing %s: %v", name, err)
	}
}
