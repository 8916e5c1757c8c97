package ui

import (
	"log"
	"net/http"
	"time"

	"github.com/MAKRANE-cpu/monographie/internal/errors"

	"github.com/gin-gonic/gin"
)

// statusFor maps application error codes to HTTP statuses
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeNotFound, errors.CodeHeaderNotFound, errors.CodeNoIdentifier:
		return http.StatusNotFound
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeEmptySeries:
		return http.StatusUnprocessableEntity
	case errors.CodeConfigInvalid:
		return http.StatusServiceUnavailable
	case errors.CodeSourceUnavailable, errors.CodeExternalService, errors.CodeUnauthorized:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) jsonError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

// pageError renders the error page; loaded tables are left untouched
func (s *Server) pageError(c *gin.Context, err error) {
	status := statusFor(err)
	log.Printf("[UI] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	s.renderTemplate(c, status, "error.html", gin.H{
		"Title":   "Erreur",
		"Page":    "",
		"Message": err.Error(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status":    "ok",
		"assistant": s.assistant.Enabled(),
	}
	if at, ok := s.loader.LoadedAt(s.spreadsheetID); ok {
		resp["loaded_at"] = at.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}
