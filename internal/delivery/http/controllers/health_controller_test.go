package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHealthController(t *testing.T) {
	rr := httptest.NewRecorder()
	(&HealthController{DB: fakePinger{}}).Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope[HealthResponse](t, rr)
	assert.Equal(t, HealthResponse{Status: "ok", Database: "ok"}, env.Data)

	rr = httptest.NewRecorder()
	(&HealthController{DB: fakePinger{err: errors.New("dial tcp: refused")}}).Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	env = decodeEnvelope[HealthResponse](t, rr)
	assert.Equal(t, "degraded", env.Data.Status)
}
