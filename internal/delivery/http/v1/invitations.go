package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/services"
)

type getInvitationsQuery struct {
	ProjectID string `form:"project_id"`
	Accepted  bool   `form:"accepted"`
	SentByMe  bool   `form:"sent_by_me"`
}

func (h *handlerImpl) HandleGetInvitations(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var query getInvitationsQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.abortInvalidQuery(c, err)
		return
	}
	if query.ProjectID == "" {
		h.abort(c, http.StatusBadRequest, "invitation.project_required")
		return
	}

	invitations, err := h.invitations.ListInvitations(c, services.ListInvitationsParams{
		ProjectID:       query.ProjectID,
		RequesterID:     userID,
		AcceptedOnly:    query.Accepted,
		SentByRequester: query.SentByMe,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	resp := make([]invitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		resp = append(resp, newInvitationResponse(inv))
	}
	c.JSON(http.StatusOK, resp)
}

type sendInvitationRequest struct {
	ToUserID  flexibleID `json:"to_user_id" binding:"required"`
	ProjectID flexibleID `json:"project_id" binding:"required"`
}

type invitationMessageResponse struct {
	Message    string             `json:"message"`
	Invitation invitationResponse `json:"invitation"`
}

func (h *handlerImpl) HandleSendInvitation(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req sendInvitationRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}

	invitation, err := h.invitations.SendInvitation(c, services.SendInvitationParams{
		FromUserID: userID,
		ToUserID:   string(req.ToUserID),
		ProjectID:  string(req.ProjectID),
	})
	if err != nil {
		if errors.Is(err, services.ErrNotificationFailed) && invitation != nil {
			h.logger.Warn().
				Str("invitation_id", invitation.ID).
				Msg("invitation stored without notification")
		}
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitationMessageResponse{
		Message:    h.localize(c, "invitation.sent"),
		Invitation: newInvitationResponse(invitation),
	})
}

type setInvitationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handlerImpl) HandleSetInvitationStatus(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req setInvitationStatusRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}

	invitation, err := h.invitations.SetInvitationStatus(c, services.SetInvitationStatusParams{
		ID:     c.Param("id"),
		UserID: userID,
		Status: models.InvitationStatus(req.Status),
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitationMessageResponse{
		Message:    h.localize(c, "invitation.updated", invitation.Status),
		Invitation: newInvitationResponse(invitation),
	})
}

func (h *handlerImpl) HandleConfirmInvitation(c *gin.Context) {
	_, err := h.invitations.ConfirmInvitation(c, c.Param("token"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{
		Message: h.localize(c, "invitation.confirmed"),
	})
}
