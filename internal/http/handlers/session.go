package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sets   *FlowSets
	expire func(*gin.Context)
}

// NewSessionHandler; expire drops the session cookie on sign-out.
func NewSessionHandler(sets *FlowSets, expire func(*gin.Context)) *SessionHandler {
	return &SessionHandler{sets: sets, expire: expire}
}

type attachTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// Attach stores the participant's bearer token for this session.
func (h *SessionHandler) Attach(ctx *gin.Context) {
	var req attachTokenRequest
	if !BindJSON(ctx, &req) {
		return
	}

	set, ok := h.sets.setFor(ctx)
	if !ok {
		return
	}

	if err := set.UserTokens.SetToken(ctx.Request.Context(), req.Token); err != nil {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not store token")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// Detach forgets both the participant and admin tokens.
func (h *SessionHandler) Detach(ctx *gin.Context) {
	set, ok := h.sets.setFor(ctx)
	if !ok {
		return
	}

	rctx := ctx.Request.Context()
	if err := set.UserTokens.ClearToken(rctx); err != nil {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not clear session")
		return
	}
	if err := set.AdminTokens.ClearToken(rctx); err != nil {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not clear session")
		return
	}

	h.sets.Forget(set.SessionID)
	if h.expire != nil {
		h.expire(ctx)
	}
	ctx.Status(http.StatusNoContent)
}
