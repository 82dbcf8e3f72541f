package v1

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/services"
)

var errInvalidSince = errors.New("invalid since")

type getTimeEntriesQuery struct {
	Since     string `form:"since"`
	ProjectID string `form:"project_id"`
	TaskID    string `form:"task_id"`
	UserID    string `form:"user_id"`
}

func (h *handlerImpl) HandleGetTimeEntries(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var query getTimeEntriesQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.abortInvalidQuery(c, err)
		return
	}
	if query.Since == "" {
		h.abort(c, http.StatusBadRequest, "time_entry.since_required")
		return
	}
	since, err := parseSince(query.Since)
	if err != nil {
		h.logger.Error().
			Str("since", query.Since).
			Msg("invalid since")
		h.abort(c, http.StatusBadRequest, "time_entry.invalid_since")
		return
	}

	entries, err := h.timeEntries.ListTimeEntries(c, services.ListTimeEntriesParams{
		RequesterID: userID,
		Since:       since,
		ProjectID:   query.ProjectID,
		TaskID:      query.TaskID,
		UserID:      query.UserID,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	resp := make([]timeEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, newTimeEntryResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

type createTimeEntryRequest struct {
	ProjectID flexibleID `json:"project_id" binding:"required"`
	TaskID    flexibleID `json:"task_id"`
	Type      string     `json:"type" binding:"required"`
}

func (h *handlerImpl) HandleCreateTimeEntry(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req createTimeEntryRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}

	entry, err := h.timeEntries.CreateTimeEntry(c, services.CreateTimeEntryParams{
		UserID:    userID,
		ProjectID: string(req.ProjectID),
		TaskID:    string(req.TaskID),
		Type:      models.TimeEntryType(req.Type),
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTimeEntryResponse(entry))
}

type updateTimeEntryRequest struct {
	Type      *string    `json:"type"`
	Timestamp *time.Time `json:"timestamp"`
}

func (h *handlerImpl) HandleUpdateTimeEntry(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req updateTimeEntryRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}

	params := services.UpdateTimeEntryParams{
		ID:        c.Param("id"),
		UserID:    userID,
		Timestamp: req.Timestamp,
	}
	if req.Type != nil {
		typ := models.TimeEntryType(*req.Type)
		params.Type = &typ
	}

	entry, err := h.timeEntries.UpdateTimeEntry(c, params)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTimeEntryResponse(entry))
}

func (h *handlerImpl) HandleDeleteTimeEntry(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	err := h.timeEntries.DeleteTimeEntry(c, c.Param("id"), userID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseSince accepts RFC 3339 timestamps and, for clients that omit the
// zone, local date-times and plain dates interpreted as UTC.
func parseSince(value string) (time.Time, error) {
	// An unescaped "+" in the query string arrives as a space.
	value = strings.ReplaceAll(strings.TrimSpace(value), " ", "+")

	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		time.DateOnly,
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errInvalidSince
}
