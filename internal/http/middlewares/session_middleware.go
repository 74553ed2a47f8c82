package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const SessionCookie = "impact_session"

// SessionIssuer mints and checks the signed session cookie.
type SessionIssuer interface {
	Issue() (raw string, sid string, err error)
	IssueFor(sid string) (string, error)
	Verify(raw string) (string, error)
}

type SessionMiddleware struct {
	sessions SessionIssuer
	maxAge   int
	secure   bool
}

func NewSessionMiddleware(sessions SessionIssuer, maxAgeSeconds int, secure bool) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, maxAge: maxAgeSeconds, secure: secure}
}

// Ensure attaches a session id to every request, starting a new session when
// the cookie is missing or no longer valid. The cookie is re-issued on each
// request so an active visitor's session slides forward.
func (m *SessionMiddleware) Ensure() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sid string
		if raw, err := c.Cookie(SessionCookie); err == nil && raw != "" {
			if id, err := m.sessions.Verify(raw); err == nil {
				sid = id
			}
		}

		var (
			raw string
			err error
		)
		if sid == "" {
			raw, sid, err = m.sessions.Issue()
		} else {
			raw, err = m.sessions.IssueFor(sid)
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Could not start session",
				},
			})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, raw, m.maxAge, "/", "", m.secure, true)
		c.Set(CtxSessionID, sid)

		c.Next()
	}
}

// Expire drops the cookie; used on sign-out.
func (m *SessionMiddleware) Expire(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", m.secure, true)
}

func SessionIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxSessionID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
