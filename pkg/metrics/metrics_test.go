package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveAPICall(t *testing.T) {
	c := New("test")

	c.ObserveAPICall("signup", OutcomeSuccess, 20*time.Millisecond)
	c.ObserveAPICall("signup", OutcomeUpstream, 10*time.Millisecond)
	c.ObserveAPICall("signup", OutcomeUpstream, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiTotal.WithLabelValues("signup", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.apiTotal.WithLabelValues("signup", OutcomeUpstream)))
}

func TestCollector_Counters(t *testing.T) {
	c := New("")

	c.IncMessage("success")
	c.IncRender("failed")
	c.IncRender("failed")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.messages.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.renders.WithLabelValues("failed")))
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveAPICall("list", OutcomeSuccess, time.Millisecond)
		c.IncMessage("error")
		c.IncRender("rendered")
	})
}

func TestCollector_Handler(t *testing.T) {
	c := New("board")
	c.IncMessage("error")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `board_status_messages_total{kind="error"} 1`))
}
