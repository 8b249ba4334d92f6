package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dasom-care/dasom-backend/internal/api/handlers"
	"github.com/dasom-care/dasom-backend/internal/api/middleware"
)

type Deps struct {
	User    *handlers.UserHandler
	Welfare *handlers.WelfareHandler
	Call    *handlers.CallHandler
	WS      *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/auth/register", d.User.Register)
	r.POST("/auth/login", d.User.Login)

	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.GET("/users/me", d.User.Me)
	auth.PUT("/users/me", d.User.Update)

	auth.GET("/welfare/search", d.Welfare.Search)
	auth.GET("/welfare", d.Welfare.List)
	auth.POST("/welfare", middleware.RequireAdmin(), d.Welfare.Upsert)

	auth.GET("/calls", d.Call.List)
	auth.GET("/calls/:session_id/messages", d.Call.Messages)

	// signaling websocket
	auth.GET("/ws/call", d.WS.CallWS)
}
