package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandler_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/api/journals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/journals/{id}", "404"))

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/journals/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/journals/{id}", "404"))
	assert.Equal(t, float64(2), after-before)
}

func TestRecordRewrite(t *testing.T) {
	before := testutil.ToFloat64(rewriteRequests.WithLabelValues("fallback"))
	RecordRewrite("fallback", 300*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(rewriteRequests.WithLabelValues("fallback"))-before)
}

func TestHandler_ExposesRegistry(t *testing.T) {
	RecordRewrite("ok", time.Second)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "dadkeeper_rewrite_requests_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
