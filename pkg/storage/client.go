package storage

import (
	"context"
	"log"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/visitlog-dev/visitlog/pkg/observability"
	"github.com/visitlog-dev/visitlog/pkg/pathutil"
)

// ClientConfig configures the retrying client.
type ClientConfig struct {
	// MaxAttempts is the total number of tries per operation (default: 3).
	MaxAttempts int
	// RetryDelay is the fixed wait between attempts (default: 2s).
	RetryDelay time.Duration
	// RequestsPerSecond caps the backend call rate (0 = unlimited).
	RequestsPerSecond float64
	// Burst is the rate limiter burst size (default: 1 when limited).
	Burst int
}

// Client wraps a Backend with retries, rate limiting, and metrics.
// Only transient failures (connection, timeout) are retried; definitive
// errors surface immediately. Client is safe for concurrent use.
type Client struct {
	backend     Backend
	maxAttempts int
	retryDelay  time.Duration
	limiter     *rate.Limiter
}

// NewClient creates a retrying client over the given backend.
func NewClient(backend Backend, cfg ClientConfig) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		backend:     backend,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		limiter:     limiter,
	}
}

// do runs fn with the client's retry policy.
func (c *Client) do(ctx context.Context, op, path string, fn func(context.Context) error) error {
	start := time.Now()
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if c.limiter != nil {
			if lerr := c.limiter.Wait(ctx); lerr != nil {
				observability.RecordStorageOp(op, "canceled", time.Since(start))
				return lerr
			}
		}

		err = fn(ctx)
		if err == nil {
			observability.RecordStorageOp(op, "ok", time.Since(start))
			return nil
		}
		if !IsRetryable(err) {
			break
		}
		if attempt < c.maxAttempts {
			log.Printf("storage: %s %s attempt %d/%d failed: %v", op, path, attempt, c.maxAttempts, err)
			observability.RecordStorageRetry(op)
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				observability.RecordStorageOp(op, "canceled", time.Since(start))
				return ctx.Err()
			}
		}
	}
	observability.RecordStorageOp(op, "error", time.Since(start))
	return err
}

// ListChildDirs returns the child directories of path as descriptors.
// A missing path is an empty listing, not an error: navigation must stay
// resilient to races with concurrent deletion.
func (c *Client) ListChildDirs(ctx context.Context, path string) ([]Folder, error) {
	path = pathutil.Normalize(path)

	var children []Meta
	err := c.do(ctx, "list", path, func(ctx context.Context) error {
		var lerr error
		children, lerr = c.backend.ListChildren(ctx, path)
		return lerr
	})
	if err != nil {
		if IsNotFound(err) {
			return []Folder{}, nil
		}
		return nil, err
	}

	dirs := make([]Folder, 0, len(children))
	for _, child := range children {
		if !child.IsDir() {
			continue
		}
		dirs = append(dirs, Folder{
			Name: child.Name,
			Path: pathutil.Join(path, child.Name),
		})
	}
	return dirs, nil
}

// GetMeta retrieves metadata for a remote path, with retries.
func (c *Client) GetMeta(ctx context.Context, path string) (*Meta, error) {
	path = pathutil.Normalize(path)

	var meta *Meta
	err := c.do(ctx, "meta", path, func(ctx context.Context) error {
		var merr error
		meta, merr = c.backend.GetMeta(ctx, path)
		return merr
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// PathExists reports whether a remote path exists.
func (c *Client) PathExists(ctx context.Context, path string) (bool, error) {
	_, err := c.GetMeta(ctx, path)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MakeDir creates path and any missing ancestors, shallowest first.
// Creating a directory that already exists succeeds silently.
func (c *Client) MakeDir(ctx context.Context, path string) error {
	path = pathutil.Normalize(path)
	if path == "/" {
		return nil
	}

	segments := strings.Split(path[1:], "/")
	current := ""
	for _, seg := range segments {
		current = current + "/" + seg

		exists, err := c.PathExists(ctx, current)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		target := current
		err = c.do(ctx, "mkdir", target, func(ctx context.Context) error {
			return c.backend.Mkdir(ctx, target)
		})
		if err != nil && !IsConflict(err) {
			return err
		}
	}
	return nil
}

// UploadBytes writes data to a remote path, overwriting existing content.
func (c *Client) UploadBytes(ctx context.Context, path string, data []byte) error {
	path = pathutil.Normalize(path)
	return c.do(ctx, "upload", path, func(ctx context.Context) error {
		return c.backend.Upload(ctx, path, data)
	})
}

// DownloadBytes retrieves the content of a remote file.
func (c *Client) DownloadBytes(ctx context.Context, path string) ([]byte, error) {
	path = pathutil.Normalize(path)

	var data []byte
	err := c.do(ctx, "download", path, func(ctx context.Context) error {
		var derr error
		data, derr = c.backend.Download(ctx, path)
		return derr
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteText creates or replaces a remote text file.
func (c *Client) WriteText(ctx context.Context, path, text string) error {
	return c.UploadBytes(ctx, path, []byte(text))
}

// AppendText appends text to a remote file, creating it when absent.
// The append is a read-modify-write: download, extend locally, re-upload.
func (c *Client) AppendText(ctx context.Context, path, text string) error {
	path = pathutil.Normalize(path)

	exists, err := c.PathExists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return c.WriteText(ctx, path, text)
	}

	data, err := c.DownloadBytes(ctx, path)
	if err != nil {
		return err
	}
	return c.UploadBytes(ctx, path, append(data, []byte(text)...))
}
