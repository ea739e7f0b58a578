package handler_test

import (
	"archive/zip"
	"bytes"
	"mime/multipart"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func uploadExpectingStatus(t *testing.T, router http.Handler, assetID string, version int, filename, content string) int {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("asset_id", assetID))
	require.NoError(t, mw.WriteField("version", strconv.Itoa(version)))
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp := doRequest(t, router, http.MethodPost, "/api/upload", "demo-edit", &buf, mw.FormDataContentType())
	return resp.Code
}

func newThumbnailForm(t *testing.T, buf *bytes.Buffer, version int, content string) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("version", strconv.Itoa(version)))
	part, err := mw.CreateFormFile("file", "thumb.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType()
}

func TestUploadDownloadFlow(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	createAsset(t, router, "a1", "model")
	version := publishVersion(t, router, "a1")
	uploadFile(t, router, "a1", version, "hero.fbx", "fbx bytes")
	uploadFile(t, router, "a1", version, "hero.obj", "obj bytes")

	// Downloads need no key.
	resp := doRequest(t, router, http.MethodGet, "/api/assets/a1/download?version=1&format=obj", "", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "obj bytes", resp.Body.String())
	require.Contains(t, resp.Header().Get("Content-Disposition"), "hero.obj")

	// No format picks any file of the version.
	resp = doRequest(t, router, http.MethodGet, "/api/assets/a1/download?version=1", "", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(t, router, http.MethodGet, "/api/assets/a1/download?version=1&format=abc", "", nil, "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	resp = doRequest(t, router, http.MethodGet, "/api/assets/missing/download?version=1", "", nil, "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	resp = doRequest(t, router, http.MethodGet, "/api/assets/a1/download?version=zero", "", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUploadRejectsBadRequests(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	createAsset(t, router, "a1", "rig")
	publishVersion(t, router, "a1")

	// Rigs only accept maya files.
	resp := uploadExpectingStatus(t, router, "a1", 1, "hero.fbx", "x")
	require.Equal(t, http.StatusBadRequest, resp)

	// Unknown version.
	resp = uploadExpectingStatus(t, router, "a1", 9, "hero.ma", "x")
	require.Equal(t, http.StatusNotFound, resp)

	// Missing multipart file field.
	r := doRequest(t, router, http.MethodPost, "/api/upload", "demo-edit", bytes.NewReader(nil), "multipart/form-data; boundary=x")
	require.Equal(t, http.StatusBadRequest, r.Code)
}

func TestPackageEndpoint(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	createAsset(t, router, "a1", "model")
	publishVersion(t, router, "a1")
	uploadFile(t, router, "a1", 1, "hero.ma", "scene data")

	resp := doRequest(t, router, http.MethodGet, "/api/assets/a1/package?version=1", "", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "application/zip", resp.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(resp.Body.Bytes()), int64(resp.Body.Len()))
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	require.True(t, names["metadata.json"])
	require.True(t, names["files/hero.ma"])

	// A version with no files still packages its metadata.
	publishVersion(t, router, "a1")
	resp = doRequest(t, router, http.MethodGet, "/api/assets/a1/package?version=2", "", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	zr, err = zip.NewReader(bytes.NewReader(resp.Body.Bytes()), int64(resp.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)

	resp = doRequest(t, router, http.MethodGet, "/api/assets/missing/package?version=1", "", nil, "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	resp = doRequest(t, router, http.MethodGet, "/api/assets/a1/package?version=99", "", nil, "")
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestThumbnailEndpoints(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	createAsset(t, router, "a1", "model")
	publishVersion(t, router, "a1")

	resp := doRequest(t, router, http.MethodGet, "/api/assets/a1/thumbnail?version=1", "", nil, "")
	require.Equal(t, http.StatusNotFound, resp.Code)

	var buf bytes.Buffer
	mw := newThumbnailForm(t, &buf, 1, "fake jpeg")
	resp = doRequest(t, router, http.MethodPost, "/api/assets/a1/thumbnail", "demo-edit", &buf, mw)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = doRequest(t, router, http.MethodGet, "/api/assets/a1/thumbnail?version=1", "", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "image/jpeg", resp.Header().Get("Content-Type"))
	require.Equal(t, "fake jpeg", resp.Body.String())

	// Viewer role cannot upload thumbnails.
	var buf2 bytes.Buffer
	mw = newThumbnailForm(t, &buf2, 1, "x")
	resp = doRequest(t, router, http.MethodPost, "/api/assets/a1/thumbnail", "demo-view", &buf2, mw)
	require.Equal(t, http.StatusForbidden, resp.Code)
}
