package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStarsHandlerRequiresValidApiKey(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/stars")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, model.Code)
	assert.Equal(t, "permission denied", model.Text)

	resp, _ = serveApiAndRetrieveEndpoint(t, api, "/api/stars?key=invalid")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStarsHandlerEndToEnd(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/stars?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 200, model.Code)
	assert.Equal(t, "OK", model.Text)
	assert.Equal(t, "public, max-age=60", resp.Header.Get("Cache-Control"))

	list := listOf(t, model)
	assert.Equal(t, []string{"sol", "alpha", "barnard", "wolf", "vega"}, collectAllIdsFromObjects(t, list, "id"))
	assert.Equal(t, false, model.Data.(map[string]interface{})["limitExceeded"])

	sol := list[0].(map[string]interface{})
	assert.Equal(t, "Sol", sol["name"])
	assert.Equal(t, "G2V", sol["spectralClass"])
}

func TestStarsHandlerMaxCount(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	_, model := serveApiAndRetrieveEndpoint(t, api, "/api/stars?key=TEST&maxCount=2")
	assert.Len(t, listOf(t, model), 2)
	assert.Equal(t, true, model.Data.(map[string]interface{})["limitExceeded"])

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/stars?key=TEST&maxCount=-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fieldErrorsOf(t, model), "maxCount")
}

func TestStarHandler(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/stars/barnard?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entry := entryOf(t, model)
	assert.Equal(t, "barnard", entry["id"])
	assert.Equal(t, "Barnard's Star", entry["name"])

	position := entry["position"].(map[string]interface{})
	assert.InDelta(t, 4.5, position["y"], 1e-9)

	resp, model = serveApiAndRetrieveEndpoint(t, api, "/api/stars/nowhere?key=TEST")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "resource not found", model.Text)
}

func TestNearestStarsHandler(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/stars/nearest?key=TEST&x=0.5&y=0&z=0&count=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := listOf(t, model)
	require.Len(t, list, 2)
	first := list[0].(map[string]interface{})
	assert.Equal(t, "sol", first["star"].(map[string]interface{})["id"])
	assert.InDelta(t, 0.5, first["distance"], 1e-9)
	second := list[1].(map[string]interface{})
	assert.Equal(t, "alpha", second["star"].(map[string]interface{})["id"])
}

func TestNearestStarsHandlerValidation(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	tests := []struct {
		name     string
		endpoint string
		fields   []string
	}{
		{"missing coordinates", "/api/stars/nearest?key=TEST", []string{"x", "y", "z"}},
		{"bad coordinate", "/api/stars/nearest?key=TEST&x=east&y=0&z=0", []string{"x"}},
		{"count too small", "/api/stars/nearest?key=TEST&x=0&y=0&z=0&count=0", []string{"count"}},
		{"count too large", "/api/stars/nearest?key=TEST&x=0&y=0&z=0&count=251", []string{"count"}},
		{"count not a number", "/api/stars/nearest?key=TEST&x=0&y=0&z=0&count=many", []string{"count"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, model := serveApiAndRetrieveEndpoint(t, api, tt.endpoint)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "validation error", model.Text)
			fieldErrors := fieldErrorsOf(t, model)
			for _, field := range tt.fields {
				assert.Contains(t, fieldErrors, field)
			}
		})
	}
}

func TestStarsWithinHandler(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/stars/within?key=TEST&x=0&y=0&z=0&radius=4.5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.ElementsMatch(t, []string{"sol", "alpha", "barnard"}, collectAllIdsFromObjects(t, listOf(t, model), "id"))

	resp, model = serveApiAndRetrieveEndpoint(t, api, "/api/stars/within?key=TEST&x=0&y=0&z=0&radius=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fieldErrorsOf(t, model), "radius")

	resp, _ = serveApiAndRetrieveEndpoint(t, api, "/api/stars/within?key=TEST&x=0&y=0&z=0&radius=5001")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
