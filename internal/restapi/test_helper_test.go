package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"starnav.teamgannon.org/internal/app"
	"starnav.teamgannon.org/internal/appconf"
	"starnav.teamgannon.org/internal/clock"
	"starnav.teamgannon.org/internal/models"
	"starnav.teamgannon.org/internal/starmap"
)

const testCatalog = "../../testdata/stars.json"

var testTime = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

func createTestApi(t *testing.T) *RestAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	manager, err := starmap.InitManager(context.Background(), starmap.Config{CatalogPath: testCatalog}, logger)
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)

	application := &app.Application{
		Config: appconf.Config{
			Env:             appconf.Test,
			ApiKeys:         []string{"TEST"},
			RateLimit:       1000,
			DefaultNumPaths: 3,
		},
		StarmapConfig: starmap.Config{CatalogPath: testCatalog},
		Logger:        logger,
		Manager:       manager,
		Clock:         clock.NewMockClock(testTime),
	}
	return NewRestAPI(application)
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	return serveApiAndSendRequest(t, api, http.MethodGet, endpoint, "")
}

func serveApiAndSendRequest(t *testing.T, api *RestAPI, method, endpoint, body string) (*http.Response, models.ResponseModel) {
	t.Helper()
	server := httptest.NewServer(api.SetupAPIRoutes())
	defer server.Close()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, server.URL+endpoint, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var model models.ResponseModel
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &model), "body: %s", raw)
	}
	return resp, model
}

func entryOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok)
	entry, ok := data["entry"].(map[string]interface{})
	require.True(t, ok)
	return entry
}

func listOf(t *testing.T, model models.ResponseModel) []interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok)
	list, ok := data["list"].([]interface{})
	require.True(t, ok)
	return list
}

func fieldErrorsOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok)
	fieldErrors, ok := data["fieldErrors"].(map[string]interface{})
	require.True(t, ok)
	return fieldErrors
}

func collectAllIdsFromObjects(t *testing.T, list []interface{}, key string) (ids []string) {
	t.Helper()
	for _, object := range list {
		object, ok := object.(map[string]interface{})
		require.True(t, ok)
		ids = append(ids, object[key].(string))
	}
	return ids
}

func collectAllNestedIdsFromObjects(t *testing.T, list []interface{}, key string) (ids []string) {
	t.Helper()
	for _, object := range list {
		object, ok := object.(map[string]interface{})
		require.True(t, ok)
		for _, id := range object[key].([]interface{}) {
			ids = append(ids, id.(string))
		}
	}
	return ids
}
