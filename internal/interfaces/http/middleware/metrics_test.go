package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type observed struct {
	method, route string
	status        int
}

type recordingObserver struct {
	started  int
	observed []observed
}

func (r *recordingObserver) RequestStarted() { r.started++ }

func (r *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	r.observed = append(r.observed, observed{method, route, status})
}

func TestMetrics(t *testing.T) {
	obs := &recordingObserver{}
	router := gin.New()
	router.Use(Metrics(obs))
	router.GET("/items/:id", okHandler)

	for _, path := range []string{"/items/1", "/items/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 3, obs.started)
	assert.Equal(t, []observed{
		{http.MethodGet, "/items/:id", http.StatusOK},
		{http.MethodGet, "/items/:id", http.StatusOK},
		{http.MethodGet, "unknown", http.StatusNotFound},
	}, obs.observed)
}
