package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/services"
)

type getProjectsQuery struct {
	Name string `form:"name"`
}

func (h *handlerImpl) HandleGetProjects(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var query getProjectsQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.abortInvalidQuery(c, err)
		return
	}

	if query.Name != "" {
		project, err := h.projects.GetProjectByName(c, query.Name)
		if err != nil {
			h.abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, newProjectResponse(project))
		return
	}

	projects, err := h.projects.ListProjects(c, userID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProjectResponses(projects))
}

type createProjectRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description"`
	Status      string  `json:"status" binding:"omitempty,oneof=active paused completed"`
	Progress    int     `json:"progress" binding:"min=0,max=100"`
	Deadline    *string `json:"deadline"`
	Color       string  `json:"color" binding:"omitempty,hexcolor,max=7"`
}

func (h *handlerImpl) HandleCreateProject(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req createProjectRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}

	project, err := h.projects.CreateProject(c, services.CreateProjectParams{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectStatus(req.Status),
		Progress:    req.Progress,
		Deadline:    deadline,
		Color:       req.Color,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newProjectResponse(project))
}

func (h *handlerImpl) HandleGetProject(c *gin.Context) {
	project, err := h.projects.GetProject(c, c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProjectResponse(project))
}

type updateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=active paused completed"`
	Progress    *int    `json:"progress" binding:"omitempty,min=0,max=100"`
	Deadline    *string `json:"deadline"`
	Color       *string `json:"color" binding:"omitempty,hexcolor,max=7"`
}

func (h *handlerImpl) HandleUpdateProject(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req updateProjectRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}

	params := services.UpdateProjectParams{
		ID:          c.Param("id"),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Progress:    req.Progress,
		Deadline:    deadline,
		Color:       req.Color,
	}
	if req.Status != nil {
		status := models.ProjectStatus(*req.Status)
		params.Status = &status
	}

	project, err := h.projects.UpdateProject(c, params)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProjectResponse(project))
}

func (h *handlerImpl) HandleDeleteProject(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	err := h.projects.DeleteProject(c, c.Param("id"), userID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleGetInvitedUsers(c *gin.Context) {
	invited, err := h.invitations.ListInvitedUsers(c, c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	resp := make([]invitedUserResponse, 0, len(invited))
	for _, u := range invited {
		resp = append(resp, invitedUserResponse{
			ID:               u.ID,
			Email:            u.Email,
			Name:             u.Name,
			InvitationStatus: string(u.InvitationStatus),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func parseDeadline(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	deadline, err := time.Parse(time.DateOnly, *value)
	if err != nil {
		return nil, err
	}
	return &deadline, nil
}
