package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/impactfest/internal/domain/contact"
	"github.com/geocoder89/impactfest/internal/flows"
	"github.com/geocoder89/impactfest/internal/notifications"
	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	sets *FlowSets
}

func NewContactHandler(sets *FlowSets) *ContactHandler {
	return &ContactHandler{sets: sets}
}

func (h *ContactHandler) Submit(ctx *gin.Context) {
	var req contact.Form
	if !BindJSON(ctx, &req) {
		return
	}

	set, ok := h.sets.setFor(ctx)
	if !ok {
		return
	}
	flow := set.Contact

	for name, value := range map[string]string{
		"name":    req.Name,
		"email":   req.Email,
		"subject": req.Subject,
		"message": req.Message,
	} {
		if err := flow.UpdateField(name, value); err != nil {
			RespondInternal(ctx, "Could not update contact form")
			return
		}
	}

	cctx, collected := notifications.Collect(ctx.Request.Context())
	err := flow.Submit(cctx)
	notices := collected()

	if err == nil {
		ctx.JSON(http.StatusCreated, gin.H{"message": lastText(notices), "notices": nonNil(notices)})
		return
	}

	if errors.Is(err, flows.ErrSubmitInFlight) {
		respondFlowError(ctx, http.StatusConflict, "submit_in_flight", "A message is already being sent", nil, notices)
		return
	}

	var failure *flows.Failure
	if errors.As(err, &failure) && failure.Kind == flows.FailureValidation {
		respondFlowError(ctx, http.StatusUnprocessableEntity, "validation_failed", failure.Message, nil, notices)
		return
	}

	_ = ctx.Error(err)
	msg := "Failed to send message. Please try again."
	if failure != nil {
		msg = failure.Message
	}
	respondFlowError(ctx, http.StatusServiceUnavailable, "store_unavailable", msg, nil, notices)
}
