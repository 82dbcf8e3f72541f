package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oponion/oponion-api/internal/services"
)

type searchUsersQuery struct {
	Query  string `form:"q"`
	UserID string `form:"user_id"`
}

func (h *handlerImpl) HandleSearchUsers(c *gin.Context) {
	var query searchUsersQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.abortInvalidQuery(c, err)
		return
	}

	users, err := h.users.SearchUsers(c, query.Query, query.UserID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponses(users))
}

func (h *handlerImpl) HandleGetSelectableUsers(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	users, err := h.users.ListSelectableUsers(c, userID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponses(users))
}

func (h *handlerImpl) HandleGetUserInfo(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	info, err := h.users.GetUserInfo(c, userID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserInfoResponse(info))
}

type userInfoRequest struct {
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
	Job       *string `json:"job" binding:"omitempty,max=150"`
	Location  *string `json:"location" binding:"omitempty,max=150"`
	Timezone  *string `json:"timezone" binding:"omitempty,max=64"`
	Languages *string `json:"languages" binding:"omitempty,max=255"`
	Bio       *string `json:"bio"`
}

func (h *handlerImpl) HandleReplaceUserInfo(c *gin.Context) {
	h.updateUserInfo(c, false)
}

func (h *handlerImpl) HandlePatchUserInfo(c *gin.Context) {
	h.updateUserInfo(c, true)
}

func (h *handlerImpl) updateUserInfo(c *gin.Context, partial bool) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req userInfoRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}

	info, err := h.users.UpdateUserInfo(c, services.UpdateUserInfoParams{
		UserID:    userID,
		Partial:   partial,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Job:       req.Job,
		Location:  req.Location,
		Timezone:  req.Timezone,
		Languages: req.Languages,
		Bio:       req.Bio,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserInfoResponse(info))
}
