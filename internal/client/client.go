package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"asset-server/internal/middleware"
	"asset-server/internal/model"
)

// Client talks to a running asset server. All calls carry the configured
// API key in the request header.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 5 * time.Minute},
	}
}

type UpsertAssetRequest struct {
	AssetID     string   `json:"asset_id"`
	Name        string   `json:"name"`
	Family      string   `json:"family"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type PublishResult struct {
	AssetID string `json:"asset_id"`
	Version int    `json:"version"`
}

func (c *Client) UpsertAsset(ctx context.Context, req *UpsertAssetRequest) (*model.Asset, error) {
	asset := &model.Asset{}
	if err := c.postJSON(ctx, "/api/assets", req, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// Publish asks the server for the next version number of the asset.
func (c *Client) Publish(ctx context.Context, assetID string, metadata json.RawMessage) (*PublishResult, error) {
	body := map[string]interface{}{}
	if len(metadata) > 0 {
		body["metadata"] = metadata
	}
	res := &PublishResult{}
	if err := c.postJSON(ctx, "/api/assets/"+url.PathEscape(assetID)+"/publish", body, res); err != nil {
		return nil, err
	}
	return res, nil
}

// UploadFile streams a local file into the given asset version.
func (c *Client) UploadFile(ctx context.Context, assetID string, version int, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer pw.Close()
		_ = mw.WriteField("asset_id", assetID)
		_ = mw.WriteField("version", strconv.Itoa(version))
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, nil)
}

func (c *Client) GetAsset(ctx context.Context, assetID string) (*model.AssetDetail, error) {
	detail := &model.AssetDetail{}
	if err := c.getJSON(ctx, "/api/assets/"+url.PathEscape(assetID), detail); err != nil {
		return nil, err
	}
	return detail, nil
}

type changesResponse struct {
	Items []model.Change `json:"items"`
	Count int            `json:"count"`
}

// Changes returns feed entries with id greater than sinceID, oldest first.
func (c *Client) Changes(ctx context.Context, sinceID int64, limit int) ([]model.Change, error) {
	path := fmt.Sprintf("/api/changes?since=%d&limit=%d", sinceID, limit)
	res := &changesResponse{}
	if err := c.getJSON(ctx, path, res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

// DownloadPackage writes the version zip to dst.
func (c *Client) DownloadPackage(ctx context.Context, assetID string, version int, dst io.Writer) error {
	path := fmt.Sprintf("/api/assets/%s/package?version=%d", url.PathEscape(assetID), version)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setAuth(req)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	_, err = io.Copy(dst, resp.Body)
	return err
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	c.setAuth(req)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set(middleware.HeaderAPIKey, c.apiKey)
	}
}

func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
	if body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
