package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/impactfest/internal/backend"
	"github.com/geocoder89/impactfest/internal/flows"
	"github.com/geocoder89/impactfest/internal/notifications"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	sets *FlowSets
}

func NewAdminHandler(sets *FlowSets) *AdminHandler {
	return &AdminHandler{sets: sets}
}

// Missing credentials are the flow's call, so nothing is required here.
type adminSignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AdminHandler) SignIn(ctx *gin.Context) {
	var req adminSignInRequest
	if !BindJSON(ctx, &req) {
		return
	}

	set, ok := h.sets.setFor(ctx)
	if !ok {
		return
	}

	cctx, collected := notifications.Collect(ctx.Request.Context())
	err := set.Admin.SignIn(cctx, req.Email, req.Password)
	notices := collected()

	if err == nil {
		ctx.JSON(http.StatusOK, gin.H{"message": "Admin login successful", "notices": nonNil(notices)})
		return
	}

	if errors.Is(err, flows.ErrSubmitInFlight) {
		respondFlowError(ctx, http.StatusConflict, "submit_in_flight", "A sign-in is already in progress", nil, notices)
		return
	}

	var failure *flows.Failure
	if !errors.As(err, &failure) {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Login failed")
		return
	}

	switch {
	case failure.Kind == flows.FailureValidation:
		respondFlowError(ctx, http.StatusUnprocessableEntity, "validation_failed", failure.Message, nil, notices)
	case errors.Is(err, backend.ErrUnauthorized):
		respondFlowError(ctx, http.StatusUnauthorized, "invalid_credentials", failure.Message, nil, notices)
	default:
		_ = ctx.Error(err)
		respondFlowError(ctx, http.StatusBadGateway, "upstream_"+string(failure.Kind), failure.Message, nil, notices)
	}
}
