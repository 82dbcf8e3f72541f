package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oponion/oponion-api/internal/models"
	"github.com/oponion/oponion-api/internal/services"
)

type getTasksQuery struct {
	ProjectID string `form:"project_id"`
	Offset    uint32 `form:"offset"`
	Limit     uint32 `form:"limit" binding:"max=100"`
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var query getTasksQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.abortInvalidQuery(c, err)
		return
	}

	tasks, err := h.tasks.ListTasks(c, services.ListTasksParams{
		UserID:    userID,
		ProjectID: query.ProjectID,
		Offset:    query.Offset,
		Limit:     query.Limit,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, newTaskResponse(task))
	}
	c.JSON(http.StatusOK, resp)
}

type createTaskRequest struct {
	ProjectID  flexibleID `json:"project_id" binding:"required"`
	AssignedTo flexibleID `json:"assigned_to"`
	Text       string     `json:"text" binding:"required,max=255"`
	Status     string     `json:"status"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		UserID:     userID,
		ProjectID:  string(req.ProjectID),
		AssignedTo: string(req.AssignedTo),
		Text:       req.Text,
		Status:     models.TaskStatus(req.Status),
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c, c.Param("id"), userID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

type updateTaskRequest struct {
	Status string  `json:"status" binding:"required"`
	Text   *string `json:"text" binding:"omitempty,max=255"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}

	task, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		ID:     c.Param("id"),
		UserID: userID,
		Status: models.TaskStatus(req.Status),
		Text:   req.Text,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	err := h.tasks.DeleteTask(c, c.Param("id"), userID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
