package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/impactfest/internal/domain/contact"
	"github.com/geocoder89/impactfest/internal/session"
	"github.com/geocoder89/impactfest/internal/utils"
	"github.com/gin-gonic/gin"
)

type ContactLister interface {
	ListRecent(ctx context.Context, limit int, after *utils.MessageCursor) ([]contact.Message, error)
}

// InboxHandler lets a signed-in organiser page through contact messages.
type InboxHandler struct {
	repo ContactLister
	sets *FlowSets
}

func NewInboxHandler(repo ContactLister, sets *FlowSets) *InboxHandler {
	return &InboxHandler{repo: repo, sets: sets}
}

func parseIntDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// GET /api/admin/contact-messages?limit=20&cursor=...
func (h *InboxHandler) List(ctx *gin.Context) {
	set, ok := h.sets.setFor(ctx)
	if !ok {
		return
	}
	if _, err := set.AdminTokens.Token(ctx.Request.Context()); err != nil {
		if !errors.Is(err, session.ErrNoToken) {
			_ = ctx.Error(err)
		}
		RespondError(ctx, http.StatusUnauthorized, "admin_required", "Admin sign-in required", nil)
		return
	}

	limit := parseIntDefault(ctx.Query("limit"), 20)
	if limit < 1 || limit > 100 {
		RespondBadRequest(ctx, "limit must be between 1 and 100", nil)
		return
	}

	var after *utils.MessageCursor
	if raw := ctx.Query("cursor"); raw != "" {
		cur, err := utils.DecodeMessageCursor(raw)
		if err != nil {
			RespondBadRequest(ctx, "cursor is invalid", nil)
			return
		}
		after = &cur
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	// one extra row tells us whether another page exists
	items, err := h.repo.ListRecent(cctx, limit+1, after)
	if err != nil {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not list contact messages")
		return
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var next *string
	if hasMore {
		last := items[len(items)-1]
		c, err := utils.EncodeMessageCursor(last.CreatedAt, last.ID)
		if err != nil {
			RespondInternal(ctx, "Could not list contact messages")
			return
		}
		next = &c
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"limit":      limit,
		"count":      len(items),
		"items":      items,
		"hasMore":    hasMore,
		"nextCursor": next,
	})
}
