// Package images downloads Notion-hosted images into the site tree so
// pages never depend on expiring file URLs.
package images

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rodriguezjordyc/website/internal/logger"
)

const defaultExt = ".png"

// Cache stores images on disk keyed by block ID
type Cache struct {
	dir        string
	publicPath string
	client     *http.Client

	mu       sync.Mutex
	inflight map[string]*download
}

type download struct {
	done chan struct{}
	path string
	err  error
}

// New creates a Cache writing to dir and returning root-relative paths
// under publicPath.
func New(dir, publicPath string, timeout time.Duration) *Cache {
	return &Cache{
		dir:        dir,
		publicPath: "/" + strings.Trim(publicPath, "/"),
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		inflight: make(map[string]*download),
	}
}

// Filename returns the on-disk name for an image: block ID plus the URL
// path's extension, ".png" when it has none.
func Filename(rawURL, blockID string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid image url: %w", err)
	}
	ext := path.Ext(u.Path)
	if ext == "" {
		ext = defaultExt
	}
	return blockID + ext, nil
}

// Resolve returns the public path of the image for blockID, downloading it
// when it is not on disk yet.
func (c *Cache) Resolve(ctx context.Context, rawURL string, blockID string) (string, error) {
	name, err := Filename(rawURL, blockID)
	if err != nil {
		return "", err
	}
	publicPath := path.Join(c.publicPath, name)
	localPath := filepath.Join(c.dir, name)

	if _, err := os.Stat(localPath); err == nil {
		return publicPath, nil
	}

	c.mu.Lock()
	if d, ok := c.inflight[name]; ok {
		c.mu.Unlock()
		select {
		case <-d.done:
			return d.path, d.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	d := &download{done: make(chan struct{})}
	c.inflight[name] = d
	c.mu.Unlock()

	d.err = c.fetch(ctx, rawURL, localPath)
	if d.err == nil {
		d.path = publicPath
	}
	close(d.done)

	c.mu.Lock()
	delete(c.inflight, name)
	c.mu.Unlock()

	return d.path, d.err
}

func (c *Cache) fetch(ctx context.Context, rawURL, localPath string) error {
	logger.Info("Downloading image", map[string]interface{}{
		"url": rawURL,
	})

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create images directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(c.dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := os.Rename(tmp.Name(), localPath); err != nil {
		return fmt.Errorf("failed to store image: %w", err)
	}

	logger.Info("Saved image", map[string]interface{}{
		"path": localPath,
	})
	return nil
}
