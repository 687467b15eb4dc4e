package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/smarteats/backend/tracking"
	"github.com/smarteats/backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type TrackingController struct {
	Hub *tracking.Hub
}

func NewTrackingController(hub *tracking.Hub) *TrackingController {
	return &TrackingController{Hub: hub}
}

// TrackingHandler -> GET /ws. Soft auth: a missing or invalid token still
// gets a connection, but it is marked unauthenticated and can only
// subscribe; location updates from it are dropped by the hub.
func (tc *TrackingController) TrackingHandler(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}

	var (
		userID        uint
		role          string
		authenticated bool
	)
	if token != "" {
		if claims, err := utils.ParseToken(token); err == nil {
			userID = claims.UserID
			role = claims.Role
			authenticated = true
		} else {
			utils.ErrorLogger.Warnf("socket auth failed: %v", err)
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	tc.Hub.HandleConn(conn, userID, role, authenticated)
}
