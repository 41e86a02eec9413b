package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectedHandler(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	tests := []struct {
		from, to  string
		connected bool
	}{
		{"sol", "wolf", true},
		{"barnard", "alpha", true},
		{"sol", "vega", false},
		{"sol", "ghost", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"-"+tt.to, func(t *testing.T) {
			resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/graph/connected?key=TEST&from="+tt.from+"&to="+tt.to)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.connected, entryOf(t, model)["connected"])
		})
	}

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/graph/connected?key=TEST&from=sol")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fieldErrorsOf(t, model), "to")
}

func TestEdgeWeightHandler(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/graph/edge-weight?key=TEST&from=sol&to=alpha")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 4.0, entryOf(t, model)["weight"], 1e-9)

	// Edges are undirected.
	_, model = serveApiAndRetrieveEndpoint(t, api, "/api/graph/edge-weight?key=TEST&from=alpha&to=sol")
	assert.InDelta(t, 4.0, entryOf(t, model)["weight"], 1e-9)

	resp, _ = serveApiAndRetrieveEndpoint(t, api, "/api/graph/edge-weight?key=TEST&from=sol&to=vega")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEdgeWeightHandlerTrimsOnlySource(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/graph/edge-weight?key=TEST&from=%20sol%20&to=alpha")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sol", entryOf(t, model)["from"])
	assert.InDelta(t, 4.0, entryOf(t, model)["weight"], 1e-9)

	resp, _ = serveApiAndRetrieveEndpoint(t, api, "/api/graph/edge-weight?key=TEST&from=sol&to=alpha%20")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, model = serveApiAndRetrieveEndpoint(t, api, "/api/graph/edge-weight?key=TEST&from=sol&to=%20")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fieldErrorsOf(t, model), "to")
}

func TestPathsHandler(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/graph/paths?key=TEST&from=sol&to=wolf")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := listOf(t, model)
	require.Len(t, list, 3)
	assert.Equal(t, []interface{}{"sol", "wolf"}, list[0].(map[string]interface{})["starIds"])
	assert.EqualValues(t, 1, list[0].(map[string]interface{})["hops"])
	assert.Equal(t, []string{"sol", "wolf", "sol", "alpha", "wolf", "sol", "barnard", "wolf"},
		collectAllNestedIdsFromObjects(t, list, "starIds"))

	_, model = serveApiAndRetrieveEndpoint(t, api, "/api/graph/paths?key=TEST&from=sol&to=wolf&k=1")
	assert.Len(t, listOf(t, model), 1)
}

func TestPathsHandlerErrors(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/graph/paths?key=TEST&from=sol&to=wolf&k=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fieldErrorsOf(t, model), "k")

	resp, _ = serveApiAndRetrieveEndpoint(t, api, "/api/graph/paths?key=TEST&from=sol&to=wolf&k=21")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = serveApiAndRetrieveEndpoint(t, api, "/api/graph/paths?key=TEST&from=sol&to=ghost")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
