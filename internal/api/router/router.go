package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/recurring-notifier/internal/api/handlers/notification"
	"github.com/aliskhannn/recurring-notifier/internal/middlewares"
)

func New(handler *notification.Handler) *ginext.Engine {
	e := ginext.New()
	e.Use(middlewares.CORSMiddleware())
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	api := e.Group("/api/notifications")
	{
		api.POST("", handler.Create)
		api.GET("", handler.GetAll)
		api.GET("/:id", handler.Get)
		api.GET("/:id/status", handler.GetStatus)
		api.DELETE("/:id", handler.Cancel)
	}

	return e
}
