package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"starnav.teamgannon.org/internal/appconf"
)

func newTestApplication(keys ...string) *Application {
	return &Application{Config: appconf.Config{ApiKeys: keys}}
}

func TestIsInvalidAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		configKeys []string
		key        string
		invalid    bool
	}{
		{"first configured key", []string{"navigator", "cartographer"}, "navigator", false},
		{"second configured key", []string{"navigator", "cartographer"}, "cartographer", false},
		{"unknown key", []string{"navigator"}, "pilot", true},
		{"empty key", []string{"navigator"}, "", true},
		{"empty key with empty key configured", []string{""}, "", true},
		{"surrounding whitespace is not trimmed", []string{"navigator"}, " navigator ", true},
		{"comparison is case sensitive", []string{"Navigator"}, "navigator", true},
		{"no keys configured", nil, "navigator", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.invalid, newTestApplication(tt.configKeys...).IsInvalidAPIKey(tt.key))
		})
	}
}

func TestRequestHasInvalidAPIKey(t *testing.T) {
	app := newTestApplication("navigator", "cartographer")

	tests := []struct {
		name    string
		target  string
		invalid bool
	}{
		{"valid key", "/api/stats?key=cartographer", false},
		{"invalid key", "/api/stats?key=pilot", true},
		{"blank key", "/api/stats?key=", true},
		{"no query", "/api/stats", true},
		{"key under another name", "/api/stats?apiKey=navigator", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.invalid, app.RequestHasInvalidAPIKey(req))
		})
	}
}
