package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/oponion/oponion-api/internal/services"
)

const (
	userIDCtxKey    = "user_id"
	sessionIDCtxKey = "session_id"
)

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Error().Msg("authorization header required")
		h.abort(c, http.StatusUnauthorized, "auth.unauthorized")
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		h.logger.Error().Msg("invalid authorization header")
		h.abort(c, http.StatusUnauthorized, "auth.unauthorized")
		return
	}

	claims, err := h.auth.ParseJWTToken(parts[1])
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			h.logger.Error().
				Err(err).
				Msg("failed to parse token")
			h.abort(c, http.StatusUnauthorized, "auth.unauthorized")
			return
		}

		refreshToken, cookieErr := c.Cookie(refreshTokenCookie)
		if cookieErr != nil {
			h.logger.Error().
				Err(cookieErr).
				Msg("access token expired and no refresh cookie")
			h.abort(c, http.StatusUnauthorized, "session.expired")
			return
		}

		result, ok := h.refresh(c, refreshToken)
		if !ok {
			return
		}

		claims, err = h.auth.ParseJWTToken(result.AccessToken)
		if err != nil {
			h.logger.Error().
				Err(err).
				Msg("failed to parse fresh token")
			h.abort(c, http.StatusUnauthorized, "auth.unauthorized")
			return
		}
	}

	session, err := h.sessions.GetSessionByID(c, claims.Subject)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			h.abort(c, http.StatusUnauthorized, "session.not_found")
			return
		}
		h.abort(c, http.StatusInternalServerError, "internal")
		return
	}

	browserFingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		h.abort(c, http.StatusInternalServerError, "internal")
		return
	}

	if browserFingerprint != session.Fingerprint {
		h.logger.Error().
			Str("session_id", session.ID).
			Msg("fingerprint mismatch")
		h.abort(c, http.StatusUnauthorized, "auth.unauthorized")
		return
	}

	c.Set(userIDCtxKey, session.UserID)
	c.Set(sessionIDCtxKey, session.ID)
	c.Next()
}

// requireUserID returns the authenticated user id or aborts with 401.
func (h *handlerImpl) requireUserID(c *gin.Context) (string, bool) {
	userID, ok := getStringFromContext(c, userIDCtxKey)
	if !ok || userID == "" {
		h.logger.Error().Msg("no user id found in context")
		h.abort(c, http.StatusUnauthorized, "auth.unauthorized")
		return "", false
	}
	return userID, true
}

func getStringFromContext(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}
