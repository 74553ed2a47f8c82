package handlers

import (
	"time"

	"github.com/geocoder89/impactfest/internal/cache"
	"github.com/geocoder89/impactfest/internal/flows"
	"github.com/geocoder89/impactfest/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// FlowSets hands out one flows.Set per session. Idle sets are evicted after
// ttl; the tokens they point at live on in the session store.
type FlowSets struct {
	sets *cache.Cache[*flows.Set]
	deps flows.SetDeps
}

func NewFlowSets(ttl time.Duration, deps flows.SetDeps) *FlowSets {
	return &FlowSets{
		sets: cache.New[*flows.Set](ttl),
		deps: deps,
	}
}

func (f *FlowSets) For(sid string) *flows.Set {
	return f.sets.GetOrCreate(sid, func() *flows.Set {
		return flows.NewSet(sid, f.deps)
	})
}

func (f *FlowSets) Forget(sid string) {
	f.sets.Delete(sid)
}

// setFor resolves the caller's flows, answering 500 when the session
// middleware did not run.
func (f *FlowSets) setFor(ctx *gin.Context) (*flows.Set, bool) {
	sid, ok := middlewares.SessionIDFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Session unavailable")
		return nil, false
	}
	return f.For(sid), true
}
