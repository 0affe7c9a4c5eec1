package blog

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rodriguezjordyc/website/internal/export"
	"github.com/rodriguezjordyc/website/internal/models"
)

// JSONSource reads the blog-content.json written by the fetch command,
// either from disk or over HTTP.
type JSONSource struct {
	Location string
	Client   *http.Client
}

// NewJSONSource creates a source for a file path or an http(s) URL
func NewJSONSource(location string, timeout time.Duration) *JSONSource {
	return &JSONSource{
		Location: location,
		Client: &http.Client{
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
	}
}

func (s *JSONSource) Load(ctx context.Context) ([]models.Post, error) {
	var (
		content models.BlogContent
		err     error
	)
	if isURL(s.Location) {
		content, err = s.fetch(ctx)
	} else {
		content, err = export.ReadFile(s.Location)
	}
	if err != nil {
		return nil, err
	}

	slugs := make([]string, 0, len(content.Posts))
	for slug := range content.Posts {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	posts := make([]models.Post, 0, len(slugs))
	for _, slug := range slugs {
		posts = append(posts, content.Posts[slug])
	}
	models.SortByDate(posts)

	return posts, nil
}

func (s *JSONSource) fetch(ctx context.Context) (models.BlogContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Location, nil)
	if err != nil {
		return models.BlogContent{}, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return models.BlogContent{}, fmt.Errorf("failed to fetch blog content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.BlogContent{}, fmt.Errorf("failed to fetch blog content: status %d", resp.StatusCode)
	}
	return export.Decode(resp.Body)
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
