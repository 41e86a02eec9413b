package restapi

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addTestRoute plots sol, alpha and wolf and returns the new route id.
func addTestRoute(t *testing.T, api *RestAPI) string {
	t.Helper()
	body := `{"name":"Patrol","color":"#ff0000","starIds":["sol","alpha","wolf"]}`
	resp, model := serveApiAndSendRequest(t, api, http.MethodPost, "/api/routes?key=TEST", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Created", model.Text)

	route, ok := model.Data.(map[string]interface{})
	require.True(t, ok)
	return route["id"].(string)
}

func TestAddRouteHandler(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	id := addTestRoute(t, api)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/routes/"+id+"?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := entryOf(t, model)
	assert.Equal(t, "Patrol", entry["name"])
	assert.Equal(t, "#ff0000", entry["color"])
	assert.Equal(t, []interface{}{"sol", "alpha", "wolf"}, entry["starIds"])
	assert.Len(t, entry["polylines"], 1)
	// 4 from sol to alpha plus sqrt(18) on to wolf.
	assert.InDelta(t, 8.2426, entry["totalLength"], 1e-3)
}

func TestAddRouteHandlerWithUnknownStar(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	body := `{"starIds":["sol","alpha","ghost","barnard","wolf"]}`
	resp, model := serveApiAndSendRequest(t, api, http.MethodPost, "/api/routes?key=TEST", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	route := model.Data.(map[string]interface{})
	assert.Equal(t, "sol to wolf", route["name"])
	coords := route["coordinates"].([]interface{})
	require.Len(t, coords, 5)
	assert.Nil(t, coords[2])
	// One polyline either side of the gap.
	assert.Len(t, route["polylines"], 2)
}

func TestAddRouteHandlerValidation(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	resp, model := serveApiAndSendRequest(t, api, http.MethodPost, "/api/routes?key=TEST", `{"starIds":["sol"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fieldErrorsOf(t, model), "starIds")

	resp, _ = serveApiAndSendRequest(t, api, http.MethodPost, "/api/routes?key=TEST", `{"stars":["sol","alpha"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, api.Manager.Routes())
}

func TestRoutesHandler(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	_, model := serveApiAndRetrieveEndpoint(t, api, "/api/routes?key=TEST")
	assert.Empty(t, listOf(t, model))

	id := addTestRoute(t, api)
	_, model = serveApiAndRetrieveEndpoint(t, api, "/api/routes?key=TEST")
	assert.Equal(t, []string{id}, collectAllIdsFromObjects(t, listOf(t, model), "id"))
}

func TestRouteHandlerErrors(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/routes/not-a-uuid?key=TEST")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fieldErrorsOf(t, model), "id")

	resp, model = serveApiAndRetrieveEndpoint(t, api, "/api/routes/"+uuid.NewString()+"?key=TEST")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, model.Text, "route not found")

	resp, _ = serveApiAndRetrieveEndpoint(t, api, "/api/routes/"+uuid.NewString())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRemoveRouteHandler(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	id := addTestRoute(t, api)

	resp, model := serveApiAndSendRequest(t, api, http.MethodDelete, "/api/routes/"+id+"?key=TEST", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", model.Text)
	assert.Empty(t, api.Manager.Routes())

	resp, _ = serveApiAndSendRequest(t, api, http.MethodDelete, "/api/routes/"+id+"?key=TEST", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouteSpatialQueries(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	id := addTestRoute(t, api)

	t.Run("visible", func(t *testing.T) {
		_, model := serveApiAndRetrieveEndpoint(t, api, "/api/routes/visible?key=TEST&x=2&y=0&z=0&radius=0.1")
		assert.Equal(t, []string{id}, collectAllIdsFromObjects(t, listOf(t, model), "id"))

		_, model = serveApiAndRetrieveEndpoint(t, api, "/api/routes/visible?key=TEST&x=30&y=0&z=0&radius=1")
		assert.Empty(t, listOf(t, model))
	})

	t.Run("nearest", func(t *testing.T) {
		resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/routes/nearest?key=TEST&x=2&y=0.5&z=0")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, id, entryOf(t, model)["id"])
	})

	t.Run("box", func(t *testing.T) {
		_, model := serveApiAndRetrieveEndpoint(t, api, "/api/routes/box?key=TEST&minX=1&minY=-1&minZ=-1&maxX=3&maxY=1&maxZ=1")
		assert.Equal(t, []string{id}, collectAllIdsFromObjects(t, listOf(t, model), "id"))

		// Corners may be given in any order.
		_, model = serveApiAndRetrieveEndpoint(t, api, "/api/routes/box?key=TEST&minX=3&minY=1&minZ=1&maxX=1&maxY=-1&maxZ=-1")
		assert.Len(t, listOf(t, model), 1)

		_, model = serveApiAndRetrieveEndpoint(t, api, "/api/routes/box?key=TEST&minX=20&minY=20&minZ=20&maxX=25&maxY=25&maxZ=25")
		assert.Empty(t, listOf(t, model))

		resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/routes/box?key=TEST&minX=1")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, fieldErrorsOf(t, model), "maxZ")
	})
}

func TestNearestRouteHandlerWithoutRoutes(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/routes/nearest?key=TEST&x=0&y=0&z=0")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "resource not found", model.Text)
}

func TestFindRoutesHandler(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	body := `{"origin":"sol","destination":"wolf","upperBound":5,"numPaths":2}`
	resp, model := serveApiAndSendRequest(t, api, http.MethodPost, "/api/routes/find?key=TEST", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := listOf(t, model)
	require.Len(t, list, 1)
	route := list[0].(map[string]interface{})
	assert.EqualValues(t, 1, route["rank"])
	assert.Equal(t, []interface{}{"sol", "alpha", "wolf"}, route["starIds"])
	assert.EqualValues(t, 2, route["segmentCount"])
	assert.NotEmpty(t, route["polyline"])
	assert.Empty(t, api.Manager.Routes())
}

func TestFindRoutesHandlerSave(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	// numPaths falls back to the configured default.
	body := `{"origin":"sol","destination":"wolf","upperBound":5,"save":true}`
	resp, model := serveApiAndSendRequest(t, api, http.MethodPost, "/api/routes/find?key=TEST", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	found := collectAllIdsFromObjects(t, listOf(t, model), "id")
	saved := api.Manager.Routes()
	require.Len(t, saved, 1)
	assert.Equal(t, found[0], saved[0].ID.String())
	assert.Equal(t, "Sol to wolf #1", saved[0].Name)
}

func TestFindRoutesHandlerErrors(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"same origin and destination", `{"origin":"sol","destination":"sol","upperBound":5}`, http.StatusBadRequest},
		{"inverted bounds", `{"origin":"sol","destination":"wolf","lowerBound":5,"upperBound":4}`, http.StatusBadRequest},
		{"too many paths", `{"origin":"sol","destination":"wolf","upperBound":5,"numPaths":21}`, http.StatusBadRequest},
		{"unknown origin", `{"origin":"ghost","destination":"wolf","upperBound":5}`, http.StatusNotFound},
		{"not connected", `{"origin":"sol","destination":"vega","upperBound":5}`, http.StatusUnprocessableEntity},
		{"unknown field", `{"origin":"sol","destination":"wolf","upperBound":5,"via":"alpha"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, model := serveApiAndSendRequest(t, api, http.MethodPost, "/api/routes/find?key=TEST", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.status, model.Code)
		})
	}
}
