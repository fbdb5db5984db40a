package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomz197/glider/internal/config"
)

func TestHandler_LandingPage(t *testing.T) {
	var s config.Settings
	s.Web.DisplayHost = "glider.example.com"
	s.SSH.Port = "2222"

	rec := httptest.NewRecorder()
	newHandler(s, zerolog.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "ssh -t -p 2222 glider.example.com")
	assert.NotContains(t, rec.Body.String(), "{{.")
}

func TestHandler_DefaultPortOmitted(t *testing.T) {
	var s config.Settings
	s.Web.DisplayHost = "glider.example.com"
	s.SSH.Port = "22"

	rec := httptest.NewRecorder()
	newHandler(s, zerolog.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "ssh -t glider.example.com")
}

func TestHandler_HealthAndNotFound(t *testing.T) {
	h := newHandler(config.Settings{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
