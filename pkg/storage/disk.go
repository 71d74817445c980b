package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultDiskBaseURL is the cloud disk REST API root.
const DefaultDiskBaseURL = "https://cloud-api.yandex.net/v1/disk"

// listLimit caps how many children a single listing request returns.
const listLimit = 200

// DiskBackend implements Backend against the cloud disk REST API.
// Uploads and downloads are two-step: the API hands out a one-time href,
// and the payload moves through that href.
type DiskBackend struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// DiskConfig configures the disk backend.
type DiskConfig struct {
	// Token is the OAuth token (required).
	Token string
	// BaseURL overrides the API root (default: DefaultDiskBaseURL).
	BaseURL string
	// Timeout is the per-request HTTP timeout (default: 30s).
	Timeout time.Duration
}

// NewDiskBackend creates a backend for the cloud disk REST API.
func NewDiskBackend(cfg DiskConfig) (*DiskBackend, error) {
	if cfg.Token == "" {
		return nil, errors.New("disk token is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultDiskBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &DiskBackend{
		baseURL: baseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type diskResource struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
	MD5      string `json:"md5"`
	MimeType string `json:"mime_type"`
	Embedded *struct {
		Items []diskResource `json:"items"`
	} `json:"_embedded"`
}

type diskLink struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

type diskAPIError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	ErrorID     string `json:"error"`
}

// GetMeta retrieves metadata for a remote path.
func (d *DiskBackend) GetMeta(ctx context.Context, path string) (*Meta, error) {
	q := url.Values{}
	q.Set("path", path)
	q.Set("fields", "name,path,type,size,md5,mime_type")

	var res diskResource
	if err := d.getJSON(ctx, "meta", path, "/resources?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	return resourceMeta(&res), nil
}

// ListChildren returns the direct children of a remote directory.
func (d *DiskBackend) ListChildren(ctx context.Context, path string) ([]Meta, error) {
	q := url.Values{}
	q.Set("path", path)
	q.Set("limit", fmt.Sprintf("%d", listLimit))
	q.Set("fields", "_embedded.items.name,_embedded.items.path,_embedded.items.type")

	var res diskResource
	if err := d.getJSON(ctx, "list", path, "/resources?"+q.Encode(), &res); err != nil {
		return nil, err
	}

	if res.Embedded == nil {
		return []Meta{}, nil
	}
	children := make([]Meta, 0, len(res.Embedded.Items))
	for i := range res.Embedded.Items {
		children = append(children, *resourceMeta(&res.Embedded.Items[i]))
	}
	return children, nil
}

// Mkdir creates a single directory.
func (d *DiskBackend) Mkdir(ctx context.Context, path string) error {
	q := url.Values{}
	q.Set("path", path)

	req, err := d.newRequest(ctx, http.MethodPut, "/resources?"+q.Encode(), nil)
	if err != nil {
		return NewError(CodeInternal, "mkdir", path, err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return transportError("mkdir", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusCreated {
		return nil
	}
	return d.statusError("mkdir", path, resp)
}

// Upload writes data to a remote path, overwriting existing content.
func (d *DiskBackend) Upload(ctx context.Context, path string, data []byte) error {
	q := url.Values{}
	q.Set("path", path)
	q.Set("overwrite", "true")

	var link diskLink
	if err := d.getJSON(ctx, "upload", path, "/resources/upload?"+q.Encode(), &link); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, link.Href, bytes.NewReader(data))
	if err != nil {
		return NewError(CodeInternal, "upload", path, err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return transportError("upload", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return d.statusError("upload", path, resp)
}

// Download retrieves the content of a remote file.
func (d *DiskBackend) Download(ctx context.Context, path string) ([]byte, error) {
	q := url.Values{}
	q.Set("path", path)

	var link diskLink
	if err := d.getJSON(ctx, "download", path, "/resources/download?"+q.Encode(), &link); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.Href, nil)
	if err != nil {
		return nil, NewError(CodeInternal, "download", path, err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, transportError("download", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, d.statusError("download", path, resp)
	}
	return io.ReadAll(resp.Body)
}

// Ping verifies the API is reachable and the token is accepted.
func (d *DiskBackend) Ping(ctx context.Context) error {
	req, err := d.newRequest(ctx, http.MethodGet, "?fields=total_space", nil)
	if err != nil {
		return NewError(CodeInternal, "ping", "/", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return transportError("ping", "/", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return d.statusError("ping", "/", resp)
	}
	return nil
}

func (d *DiskBackend) newRequest(ctx context.Context, method, pathAndQuery string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+pathAndQuery, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "OAuth "+d.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (d *DiskBackend) getJSON(ctx context.Context, op, path, pathAndQuery string, out any) error {
	req, err := d.newRequest(ctx, http.MethodGet, pathAndQuery, nil)
	if err != nil {
		return NewError(CodeInternal, op, path, err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return transportError(op, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return d.statusError(op, path, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewError(CodeInternal, op, path, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// statusError maps an HTTP status to the storage error taxonomy.
func (d *DiskBackend) statusError(op, path string, resp *http.Response) *Error {
	var apiErr diskAPIError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)

	code := CodeInternal
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		code = CodeInvalidRequest
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		code = CodePermissionDenied
	case resp.StatusCode == http.StatusNotFound:
		code = CodeNotFound
	case resp.StatusCode == http.StatusConflict:
		code = CodeConflict
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusLocked:
		code = CodeConnection
	case resp.StatusCode >= 500:
		code = CodeConnection
	}

	msg := apiErr.Message
	if msg == "" {
		msg = resp.Status
	}
	return &Error{Code: code, Op: op, Path: path, Message: msg}
}

// transportError classifies a failed HTTP round trip.
func transportError(op, path string, err error) *Error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return NewError(CodeTimeout, op, path, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(CodeTimeout, op, path, err)
	}
	return NewError(CodeConnection, op, path, err)
}

func resourceMeta(r *diskResource) *Meta {
	return &Meta{
		Name: r.Name,
		Path: r.Path,
		Type: r.Type,
		Size: r.Size,
		MD5:  r.MD5,
		Mime: r.MimeType,
	}
}
