package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/api/curves/{curveType}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/curves/{curveType}", "418"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/curves/mixed", nil))

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/curves/{curveType}", "418"))
	assert.Equal(t, before+1, after)
}

func TestObserveStage(t *testing.T) {
	before := testutil.CollectAndCount(BuildDuration)
	ObserveStage("test_stage", time.Now().Add(-time.Second))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(BuildDuration), before)
}

func TestHandlerServesMetrics(t *testing.T) {
	QuotesAccepted.Add(1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fwdcurve_quotes_accepted_total")
}
