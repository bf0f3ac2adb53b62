package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(chat *ChatHandler, allowedOrigins []string, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger), CORSMiddleware(allowedOrigins, false))

	router.GET("/ping", Ping)
	router.GET("/", Root)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/openapi.json", OpenAPIDoc)

	api := router.Group("/api/v1/chat")
	{
		api.POST("/sessions", chat.CreateSession)
		api.GET("/sessions/:id", chat.GetSession)
		api.DELETE("/sessions/:id", chat.DeleteSession)
		api.POST("/sessions/:id/messages", chat.SendMessage)
		api.GET("/sessions/:id/incidents", chat.ListIncidents)
	}

	return router
}
