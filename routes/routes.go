package routes

import (
	"time"

	"calbook/handlers"
	"calbook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterServiceRoutes registers the root and health endpoints.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/", hb.RootHandler)
	r.GET("/health", hb.HealthHandler)
}

// RegisterCalendarRoutes registers event and availability endpoints.
func RegisterCalendarRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/events", middleware.RateLimit("create_event", hb.Limits.Events), hb.CreateEventHandler)
	r.GET("/events/:event_id", middleware.RateLimit("get_event", hb.Limits.GetEvent), hb.GetEventHandler)
	r.DELETE("/events/:event_id", middleware.RateLimit("cancel_event", hb.Limits.CancelEvent), hb.CancelEventHandler)
	r.GET("/availability", middleware.RateLimit("availability", hb.Limits.Availability), hb.AvailabilityHandler)
	r.GET("/suggest-slots", middleware.RateLimit("suggest_slots", hb.Limits.Suggest), hb.SuggestSlotsHandler)
}

// RegisterChatRoutes registers the booking conversation endpoints.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	chat := r.Group("/chat")
	chat.Use(middleware.RateLimit("chat", hb.Limits.Chat))
	{
		chat.POST("", hb.ChatHandler)
		chat.DELETE("/:conversation_id", hb.CancelChatHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	RegisterServiceRoutes(r, hb)
	RegisterCalendarRoutes(r, hb)
	RegisterChatRoutes(r, hb)
}
