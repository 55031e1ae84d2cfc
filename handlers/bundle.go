package handlers

import (
	"github.com/gin-gonic/gin"
)

// RouteLimits are per-minute, per-client request caps.
type RouteLimits struct {
	Events       int
	Availability int
	Suggest      int
	GetEvent     int
	CancelEvent  int
	Chat         int
}

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Limits RouteLimits

	// Service endpoints
	RootHandler   gin.HandlerFunc
	HealthHandler gin.HandlerFunc

	// Calendar endpoints
	CreateEventHandler  gin.HandlerFunc
	AvailabilityHandler gin.HandlerFunc
	SuggestSlotsHandler gin.HandlerFunc
	GetEventHandler     gin.HandlerFunc
	CancelEventHandler  gin.HandlerFunc

	// Chat endpoints
	ChatHandler       gin.HandlerFunc
	CancelChatHandler gin.HandlerFunc
}
