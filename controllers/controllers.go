// Package controllers holds the HTTP handlers. Each controller is a struct
// carrying its database handle plus the side channels it emits on (tracking
// hub, order-events queue); everything is injected from main.
package controllers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/smarteats/backend/queue"
	"github.com/smarteats/backend/tracking"
	"github.com/smarteats/backend/utils"
)

var ErrNoPermission = errors.New("you do not have permission to perform this action")

// currentUser reads the identity the auth middleware put on the context.
func currentUser(c *gin.Context) (uint, string) {
	id, _ := c.Get("user_id")
	role, _ := c.Get("role")
	uid, _ := id.(uint)
	r, _ := role.(string)
	return uid, r
}

// emit broadcasts on the hub, logging and swallowing any failure. Socket
// delivery never decides the outcome of a request.
func emit(h *tracking.Hub, room, event string, data interface{}) {
	if err := h.Emit(room, event, data); err != nil {
		utils.ErrorLogger.Errorf("socket emit error (%s -> %s): %v", event, room, err)
	}
}

// publish sends an order event to the queue, logging and swallowing any
// failure. Queue delivery never decides the outcome of a request.
func publish(p queue.Publisher, ev queue.Event) {
	if err := p.Publish(context.Background(), ev); err != nil {
		utils.ErrorLogger.Errorf("queue publish failed (%s): %v", ev.Type, err)
	}
}
