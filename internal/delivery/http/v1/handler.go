package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/oponion/oponion-api/internal/i18n"
	"github.com/oponion/oponion-api/internal/services"
)

type Handler interface {
	HandleLocaleMiddleware(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)

	HandleSearchUsers(c *gin.Context)
	HandleGetSelectableUsers(c *gin.Context)
	HandleGetUserInfo(c *gin.Context)
	HandleReplaceUserInfo(c *gin.Context)
	HandlePatchUserInfo(c *gin.Context)

	HandleGetProjects(c *gin.Context)
	HandleCreateProject(c *gin.Context)
	HandleGetProject(c *gin.Context)
	HandleUpdateProject(c *gin.Context)
	HandleDeleteProject(c *gin.Context)
	HandleGetInvitedUsers(c *gin.Context)

	HandleGetTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleGetInvitations(c *gin.Context)
	HandleSendInvitation(c *gin.Context)
	HandleSetInvitationStatus(c *gin.Context)
	HandleConfirmInvitation(c *gin.Context)

	HandleGetTimeEntries(c *gin.Context)
	HandleCreateTimeEntry(c *gin.Context)
	HandleUpdateTimeEntry(c *gin.Context)
	HandleDeleteTimeEntry(c *gin.Context)
}

type Services struct {
	Auth        services.AuthService
	Sessions    services.SessionService
	Users       services.UserService
	Projects    services.ProjectService
	Tasks       services.TaskService
	Invitations services.InvitationService
	TimeEntries services.TimeEntryService
}

type handlerImpl struct {
	logger      zerolog.Logger
	catalog     *i18n.Catalog
	auth        services.AuthService
	sessions    services.SessionService
	users       services.UserService
	projects    services.ProjectService
	tasks       services.TaskService
	invitations services.InvitationService
	timeEntries services.TimeEntryService
}

func New(
	logger zerolog.Logger,
	catalog *i18n.Catalog,
	svc Services,
) Handler {
	return &handlerImpl{
		logger:      logger,
		catalog:     catalog,
		auth:        svc.Auth,
		sessions:    svc.Sessions,
		users:       svc.Users,
		projects:    svc.Projects,
		tasks:       svc.Tasks,
		invitations: svc.Invitations,
		timeEntries: svc.TimeEntries,
	}
}

// RegisterRoutes mounts every v1 endpoint under /api/v1.
func RegisterRoutes(router gin.IRouter, h Handler) {
	api := router.Group("/api/v1", h.HandleLocaleMiddleware)

	authRouter := api.Group("/auth")
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/login", h.HandleLogin)
	authRouter.POST("/refresh", h.HandleRefresh)
	authRouter.POST("/logout", h.HandleAuthMiddleware, h.HandleLogout)

	// The confirmation link is opened from an email, so it carries no session.
	api.GET("/invitations/confirm/:token", h.HandleConfirmInvitation)

	protected := api.Group("", h.HandleAuthMiddleware)

	usersRouter := protected.Group("/users")
	usersRouter.GET("/search", h.HandleSearchUsers)
	usersRouter.GET("/selectable", h.HandleGetSelectableUsers)
	usersRouter.GET("/me/info", h.HandleGetUserInfo)
	usersRouter.PUT("/me/info", h.HandleReplaceUserInfo)
	usersRouter.PATCH("/me/info", h.HandlePatchUserInfo)

	projectsRouter := protected.Group("/projects")
	projectsRouter.GET("", h.HandleGetProjects)
	projectsRouter.POST("", h.HandleCreateProject)
	projectsRouter.GET("/:id", h.HandleGetProject)
	projectsRouter.PATCH("/:id", h.HandleUpdateProject)
	projectsRouter.DELETE("/:id", h.HandleDeleteProject)
	projectsRouter.GET("/:id/invited-users", h.HandleGetInvitedUsers)

	tasksRouter := protected.Group("/tasks")
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.PATCH("/:id", h.HandleUpdateTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)

	invitationsRouter := protected.Group("/invitations")
	invitationsRouter.GET("", h.HandleGetInvitations)
	invitationsRouter.POST("/send", h.HandleSendInvitation)
	invitationsRouter.PATCH("/:id", h.HandleSetInvitationStatus)

	entriesRouter := protected.Group("/time-entries")
	entriesRouter.GET("", h.HandleGetTimeEntries)
	entriesRouter.POST("", h.HandleCreateTimeEntry)
	entriesRouter.PATCH("/:id", h.HandleUpdateTimeEntry)
	entriesRouter.DELETE("/:id", h.HandleDeleteTimeEntry)
}
