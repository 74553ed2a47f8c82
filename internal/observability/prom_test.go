package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordOutcome(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	p.RecordOutcome("registration", "success")
	p.RecordOutcome("registration", "success")
	p.RecordOutcome("registration", "network")

	if got := testutil.ToFloat64(p.FlowOutcomes.WithLabelValues("registration", "success")); got != 2 {
		t.Fatalf("success count = %v", got)
	}
	if got := testutil.ToFloat64(p.FlowOutcomes.WithLabelValues("registration", "network")); got != 1 {
		t.Fatalf("network count = %v", got)
	}
}

func TestGinHandleMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewProm(prometheus.NewRegistry())

	r := gin.New()
	r.Use(p.GinHandleMiddleware())
	r.GET("/api/events", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	if got := testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "/api/events", "200")); got != 1 {
		t.Fatalf("requests_total = %v", got)
	}
}

func TestObserveDB_ClassifiesErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	_ = p.ObserveDB("contact.insert", func() error { return &pgconn.PgError{Code: "23505"} })
	_ = p.ObserveDB("contact.insert", func() error { return errors.New("dial tcp: connection refused") })
	_ = p.ObserveDB("contact.insert", func() error { return nil })

	if got := testutil.ToFloat64(p.DBErrorsTotal.WithLabelValues("contact.insert", "unique_violation")); got != 1 {
		t.Fatalf("unique_violation = %v", got)
	}
	if got := testutil.ToFloat64(p.DBErrorsTotal.WithLabelValues("contact.insert", "connection")); got != 1 {
		t.Fatalf("connection = %v", got)
	}
}
