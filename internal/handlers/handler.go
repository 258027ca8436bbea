package handlers

import (
	"traceper/internal/logger"
	"traceper/internal/tabs"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to the open tabs and logging.
type Handler struct {
	tabs *tabs.Registry
	log  *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(reg *tabs.Registry, log *logger.Logger) *Handler {
	return &Handler{tabs: reg, log: logger.OrNop(log)}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(loadTemplates())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// A fresh window gets its own tab.
	router.GET("/", h.openTab)

	h.registerTabRoutes(router)

	// Re-render channel, one socket per tab.
	router.GET("/ws/:tab", h.tabMiddleware, h.wsConnect)

	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerTabRoutes(r *gin.Engine) {
	tab := r.Group("/t/:tab", h.tabMiddleware)
	{
		tab.GET("/*path", h.page)

		actions := tab.Group("/actions")
		{
			actions.POST("/login", h.login)
			actions.POST("/register", h.register)
			actions.POST("/logout", h.logout)
		}

		tab.POST("/records/:resource/:id/delete", h.deleteRecord)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/tabs/:tab", h.tabMiddleware, h.tabStatus)
	}
}
