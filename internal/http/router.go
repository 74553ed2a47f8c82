package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/impactfest/internal/http/handlers"
	"github.com/geocoder89/impactfest/internal/http/middlewares"
	"github.com/geocoder89/impactfest/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	jsonBodyLimit         = 64 << 10
	registrationBodyLimit = 12 << 20
)

type RouterDeps struct {
	Log      *slog.Logger
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Sessions middlewares.SessionIssuer
	// SessionTTL sets the cookie max-age.
	SessionTTL   time.Duration
	SecureCookie bool
	FlowSets     *handlers.FlowSets
	// Inbox backs the organiser contact-message listing; nil disables it.
	Inbox       handlers.ContactLister
	Checks      map[string]handlers.Check
	CORSOrigins []string
	RateLimiter *middlewares.RateLimiter
	Debug       bool
}

func NewRouter(d RouterDeps) *gin.Engine {
	if !d.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.CORSOrigins))
	r.Use(otelgin.Middleware(observability.ServiceName))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	h := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	rl := d.RateLimiter
	if rl == nil {
		rl = middlewares.NewRateLimiter(60, time.Minute)
	}
	sm := middlewares.NewSessionMiddleware(d.Sessions, int(d.SessionTTL.Seconds()), d.SecureCookie)

	api := r.Group("/api")
	api.GET("/events", handlers.NewEventsHandler().ListEvents)

	visitor := api.Group("")
	visitor.Use(sm.Ensure())
	visitor.Use(rl.RateLimiterMiddleware(middlewares.KeyBySessionOrIP))

	sessionHandler := handlers.NewSessionHandler(d.FlowSets, sm.Expire)
	registrationHandler := handlers.NewRegistrationHandler(d.FlowSets)
	profileHandler := handlers.NewProfileHandler(d.FlowSets)
	adminHandler := handlers.NewAdminHandler(d.FlowSets)
	contactHandler := handlers.NewContactHandler(d.FlowSets)

	jsonOnly := []gin.HandlerFunc{middlewares.MaxBodyBytes(jsonBodyLimit), middlewares.RequireJSON()}

	visitor.POST("/session", append(jsonOnly, sessionHandler.Attach)...)
	visitor.DELETE("/session", sessionHandler.Detach)

	visitor.GET("/registration", registrationHandler.Status)
	visitor.POST("/registration",
		middlewares.MaxBodyBytes(registrationBodyLimit),
		middlewares.RequireMultipart(),
		registrationHandler.Submit,
	)
	visitor.POST("/registration/reset", registrationHandler.Reset)

	visitor.GET("/profile", profileHandler.Get)
	visitor.POST("/admin/signin", append(jsonOnly, adminHandler.SignIn)...)
	visitor.POST("/contact", append(jsonOnly, contactHandler.Submit)...)

	if d.Inbox != nil {
		visitor.GET("/admin/contact-messages", handlers.NewInboxHandler(d.Inbox, d.FlowSets).List)
	}

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondError(ctx, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}
