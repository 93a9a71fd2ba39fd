package http

import (
	"net/http"
	"strings"

	"squircle/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	principalContextKey    = "principal"
	sessionTokenContextKey = "session_token"
)

// requireSession is the authentication half of the request gate. The 401
// body is identical for every failure mode (missing cookie, provider
// rejection, insufficient factors, upstream failure); the distinction only
// reaches the server-side log.
func (s *Server) requireSession(c *gin.Context) (domain.Principal, bool) {
	if s.authInitErr != nil || s.authenticator == nil {
		writeErrorCode(c, http.StatusInternalServerError, "AUTH_CONFIG_ERROR", "auth configuration error")
		return domain.Principal{}, false
	}

	token, err := c.Cookie(s.sessionCookieName())
	if err != nil || strings.TrimSpace(token) == "" {
		// No credential: reject locally, no identity-service call.
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return domain.Principal{}, false
	}

	principal, err := s.authenticator.Authenticate(c.Request.Context(), token)
	if err != nil {
		s.log.Debug().Err(err).Str("path", c.FullPath()).Msg("session authentication failed")
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return domain.Principal{}, false
	}

	c.Set(principalContextKey, principal)
	c.Set(sessionTokenContextKey, token)
	return principal, true
}

// requirePermission is the authorization half of the gate, applied only to
// privilege-gated routes after requireSession has admitted the request.
func (s *Server) requirePermission(c *gin.Context, principal domain.Principal, resourceType, action string) bool {
	if s.authorizer == nil {
		writeErrorCode(c, http.StatusForbidden, "MISSING_PERMISSION", "missing permission")
		return false
	}
	if !s.authorizer.IsAuthorized(c.Request.Context(), sessionToken(c), principal, resourceType, action) {
		writeErrorCode(c, http.StatusForbidden, "MISSING_PERMISSION", "missing permission")
		return false
	}
	return true
}

func (s *Server) sessionCookieName() string {
	if s.cfg.SessionCookieName != "" {
		return s.cfg.SessionCookieName
	}
	return "stytch_session"
}

func sessionToken(c *gin.Context) string {
	raw, ok := c.Get(sessionTokenContextKey)
	if !ok {
		return ""
	}
	token, _ := raw.(string)
	return token
}
