package ui

import (
	"log"
	"net/http"

	"github.com/MAKRANE-cpu/monographie/models"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "session_id"
	sessionKey    = "session"

	// a week, refreshed on every visit
	sessionMaxAge = 7 * 24 * 60 * 60
)

// sessionMiddleware binds the dashboard session named by the session_id
// cookie, creating one when the cookie is missing or stale
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(sessionCookie)

		sess, created, err := s.sessions.Resolve(c.Request.Context(), raw)
		if err != nil {
			log.Printf("[Session] Failed to resolve session %q: %v", raw, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}
		if created {
			log.Printf("[Session] Started session %s", sess.ID)
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, sess.ID.String(), sessionMaxAge, "/", "", false, true)
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// currentSession returns the session bound by sessionMiddleware
func currentSession(c *gin.Context) *models.Session {
	return c.MustGet(sessionKey).(*models.Session)
}

// visit records the page on the session; failures only cost the breadcrumb
func (s *Server) visit(c *gin.Context, sess *models.Session, page string) {
	sess.Page = page
	if err := s.sessions.Save(c.Request.Context(), sess); err != nil {
		log.Printf("[Session] Failed to save session %s: %v", sess.ID, err)
	}
}
