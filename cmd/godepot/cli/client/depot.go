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

	"github.com/mwantia/godepot/pkg/files"
)

// DepotClient is a thin HTTP client for the Godepot API.
type DepotClient struct {
	base string
	http *http.Client
}

func NewDepotClient(base string) *DepotClient {
	return &DepotClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *DepotClient) List(ctx context.Context, user string, page, limit int) (*Listing, error) {
	query := url.Values{}
	if user != "" {
		query.Set("user", user)
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var listing Listing
	if err := c.getJSON(ctx, "/api/files?"+query.Encode(), &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *DepotClient) Stats(ctx context.Context) (*files.Stats, error) {
	var stats files.Stats
	if err := c.getJSON(ctx, "/api/files/stats/summary", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *DepotClient) Upload(ctx context.Context, path, uploadedBy, description, tags string) (*files.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if uploadedBy != "" {
		form.WriteField("uploadedBy", uploadedBy)
	}
	if description != "" {
		form.WriteField("description", description)
	}
	if tags != "" {
		form.WriteField("tags", tags)
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/files/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var envelope struct {
		File files.FileInfo `json:"file"`
	}
	if err := c.do(req, &envelope); err != nil {
		return nil, err
	}
	return &envelope.File, nil
}

func (c *DepotClient) Remove(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/api/files/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *DepotClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *DepotClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", c.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, resp.Body)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode server response: %w", err)
	}
	return nil
}

func decodeError(status int, body io.Reader) error {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("server responded with %d: %s", status, envelope.Error.Message)
	}
	return fmt.Errorf("server responded with status %d", status)
}
