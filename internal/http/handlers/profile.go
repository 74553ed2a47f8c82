package handlers

import (
	"net/http"

	"github.com/geocoder89/impactfest/internal/flows"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	sets *FlowSets
}

func NewProfileHandler(sets *FlowSets) *ProfileHandler {
	return &ProfileHandler{sets: sets}
}

func (h *ProfileHandler) Get(ctx *gin.Context) {
	set, ok := h.sets.setFor(ctx)
	if !ok {
		return
	}

	res := set.Profile.Load(ctx.Request.Context())

	switch res.Outcome {
	case flows.ProfileLoaded:
		ctx.JSON(http.StatusOK, gin.H{
			"user":          res.Profile.User,
			"registrations": res.Profile.Registrations,
		})
	case flows.ProfileAccessDenied, flows.ProfileUnauthorized:
		RespondError(ctx, http.StatusUnauthorized, string(res.Outcome), res.Message, nil)
	default:
		RespondError(ctx, http.StatusBadGateway, "upstream_error", res.Message, nil)
	}
}
