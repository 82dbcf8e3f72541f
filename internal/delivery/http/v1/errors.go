package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/oponion/oponion-api/internal/services"
)

const localeCtxKey = "locale"

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type serviceError struct {
	err    error
	status int
	key    string
}

var serviceErrors = []serviceError{
	{services.ErrMissingCredentials, http.StatusBadRequest, "auth.credentials_required"},
	{services.ErrUserNotFound, http.StatusNotFound, "user.not_found"},
	{services.ErrUsernameTaken, http.StatusConflict, "user.username_taken"},
	{services.ErrEmailTaken, http.StatusConflict, "user.email_taken"},
	{services.ErrUserPasswordMismatch, http.StatusUnauthorized, "auth.invalid_credentials"},
	{services.ErrUserInfoNotFound, http.StatusNotFound, "user.info_not_found"},
	{services.ErrMissingSearchParams, http.StatusBadRequest, "user.search_params_required"},
	{services.ErrSessionNotFound, http.StatusUnauthorized, "session.not_found"},
	{services.ErrSessionExpired, http.StatusUnauthorized, "session.expired"},
	{services.ErrForbidden, http.StatusForbidden, "access.forbidden"},
	{services.ErrProjectNotFound, http.StatusNotFound, "project.not_found"},
	{services.ErrInvalidProject, http.StatusBadRequest, "project.invalid"},
	{services.ErrTaskNotFound, http.StatusNotFound, "task.not_found"},
	{services.ErrInvalidTask, http.StatusBadRequest, "task.invalid"},
	{services.ErrInvalidTaskStatus, http.StatusBadRequest, "task.invalid_status"},
	{services.ErrInvitationNotFound, http.StatusNotFound, "invitation.not_found"},
	{services.ErrInvalidInvitationToken, http.StatusNotFound, "invitation.invalid_token"},
	{services.ErrInvalidInvitationStatus, http.StatusBadRequest, "invitation.invalid_status"},
	{services.ErrNotificationFailed, http.StatusBadGateway, "invitation.notification_failed"},
	{services.ErrTimeEntryNotFound, http.StatusNotFound, "time_entry.not_found"},
	{services.ErrInvalidTimeEntryType, http.StatusBadRequest, "time_entry.invalid_type"},
	{services.ErrTimerAlreadyRunning, http.StatusConflict, "timer.already_running"},
	{services.ErrTimerNotRunning, http.StatusConflict, "timer.not_running"},
}

func (h *handlerImpl) HandleLocaleMiddleware(c *gin.Context) {
	c.Set(localeCtxKey, h.catalog.Match(c.GetHeader("Accept-Language")))
	c.Next()
}

func (h *handlerImpl) localize(c *gin.Context, key string, args ...any) string {
	tag := h.catalog.Fallback()
	if value, exists := c.Get(localeCtxKey); exists {
		if t, ok := value.(language.Tag); ok {
			tag = t
		}
	}
	return h.catalog.Sprintf(tag, key, args...)
}

func (h *handlerImpl) abort(c *gin.Context, status int, key string, args ...any) {
	c.AbortWithStatusJSON(status, apiError{
		Code:    status,
		Message: h.localize(c, key, args...),
	})
}

func (h *handlerImpl) abortInvalidBody(c *gin.Context, err error) {
	h.logger.Error().
		Err(err).
		Msg("failed to bind request")
	h.abort(c, http.StatusBadRequest, "request.invalid_body")
}

func (h *handlerImpl) abortInvalidQuery(c *gin.Context, err error) {
	h.logger.Error().
		Err(err).
		Msg("failed to bind query")
	h.abort(c, http.StatusBadRequest, "request.invalid_query")
}

// abortWithError translates a service error into an api error.
// Unknown errors become 500 responses.
func (h *handlerImpl) abortWithError(c *gin.Context, err error) {
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			h.abort(c, se.status, se.key)
			return
		}
	}
	h.abort(c, http.StatusInternalServerError, "internal")
}
