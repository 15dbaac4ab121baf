package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "b3view_session"
	SessionKey    = "session_id"

	sessionNewKey = "session_new"
)

// Session gives each browser a dashboard session id, kept in the
// b3view_session cookie and exposed to handlers under SessionKey.
//
// The cookie is HttpOnly and lives for maxAge; it is refreshed on every
// request so an active tab never loses its state. Values that are not UUIDs
// are discarded and replaced. A request that did not present a valid cookie
// is marked new; see SessionIsNew.
func Session(maxAge time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil {
			id = ""
		}
		isNew := false
		if _, perr := uuid.Parse(id); perr != nil {
			id = uuid.NewString()
			isNew = true
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, int(maxAge.Seconds()), "/", "", false, true)
		c.Set(SessionKey, id)
		c.Set(sessionNewKey, isNew)

		c.Next()
	}
}

// SessionID returns the id set by Session, or "" when the middleware did not run.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}

// SessionIsNew reports whether the id was minted for this request. Clients
// that never send the cookie back get a new id every time.
func SessionIsNew(c *gin.Context) bool {
	return c.GetBool(sessionNewKey)
}
