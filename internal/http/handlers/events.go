package handlers

import (
	"net/http"

	"github.com/geocoder89/impactfest/internal/domain/event"
	"github.com/gin-gonic/gin"
)

type EventsHandler struct{}

func NewEventsHandler() *EventsHandler {
	return &EventsHandler{}
}

// ListEvents serves the fixed catalogue the registration form offers.
func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	items := make([]string, len(event.Catalogue))
	copy(items, event.Catalogue)

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
