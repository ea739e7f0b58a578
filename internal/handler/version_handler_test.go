package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionDeleteIsolation(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	createAsset(t, router, "a1", "model")
	publishVersion(t, router, "a1")
	publishVersion(t, router, "a1")
	uploadFile(t, router, "a1", 1, "old.fbx", "v1 data")
	uploadFile(t, router, "a1", 2, "new.fbx", "v2 data")

	resp := doRequest(t, router, http.MethodDelete, "/api/assets/a1/versions/1", "demo-admin", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)

	// The other version still downloads.
	resp = doRequest(t, router, http.MethodGet, "/api/assets/a1/download?version=2", "", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "v2 data", resp.Body.String())

	resp = doRequest(t, router, http.MethodGet, "/api/assets/a1/download?version=1", "", nil, "")
	require.Equal(t, http.StatusNotFound, resp.Code)

	// Deleting it again is a 404.
	resp = doRequest(t, router, http.MethodDelete, "/api/assets/a1/versions/1", "demo-admin", nil, "")
	require.Equal(t, http.StatusNotFound, resp.Code)

	// The freed number is not reassigned.
	v3 := publishVersion(t, router, "a1")
	require.Equal(t, 3, v3)
}

func TestVersionArchive(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	createAsset(t, router, "a1", "model")
	publishVersion(t, router, "a1")

	resp := doRequest(t, router, http.MethodPost, "/api/assets/a1/versions/1/archive", "demo-edit", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(t, router, http.MethodGet, "/api/assets/a1", "demo-view", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var detail struct {
		Versions []struct {
			Version  int `json:"version"`
			Archived int `json:"archived"`
		} `json:"versions"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	require.Len(t, detail.Versions, 1)
	require.Equal(t, 1, detail.Versions[0].Archived)

	resp = doRequest(t, router, http.MethodPost, "/api/assets/a1/versions/9/archive", "demo-edit", nil, "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	resp = doRequest(t, router, http.MethodPost, "/api/assets/a1/versions/zero/archive", "demo-edit", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStatsAndHome(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	resp := doRequest(t, router, http.MethodGet, "/api/stats", "", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &stats))
	require.Equal(t, true, stats["ok"])

	// The landing page wants a key.
	resp = doRequest(t, router, http.MethodGet, "/", "", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	resp = doRequest(t, router, http.MethodGet, "/", "demo-view", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestUIBrowsable(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	createAsset(t, router, "a1", "model")

	resp := doRequest(t, router, http.MethodGet, "/ui", "", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "a1")

	resp = doRequest(t, router, http.MethodGet, "/ui/assets/a1", "", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(t, router, http.MethodGet, "/ui/assets/missing", "", nil, "")
	require.Equal(t, http.StatusNotFound, resp.Code)
}
