// Package site serves the blog and exports it as static HTML.
package site

import (
	"context"
	"strings"

	"github.com/rodriguezjordyc/website/internal/models"
)

// Library is the post store the views read from
type Library interface {
	Posts(ctx context.Context) ([]models.Post, error)
	Post(ctx context.Context, slug string) (models.Post, bool, error)
}

// Options configures the files the site exposes next to its pages
type Options struct {
	SiteTitle string

	// AboutURL is linked from the nav and the unavailable notice when set
	AboutURL string

	// ContentFile is served at /blog-content.json when set
	ContentFile string

	ImagesDir        string
	ImagesPublicPath string

	// PostsDir holds markdown posts and their assets, served under PostsURLPrefix
	PostsDir       string
	PostsURLPrefix string

	CorsAllowedOrigins []string
}

// Site renders the blog from a Library
type Site struct {
	lib   Library
	views *views
	opts  Options
}

// New creates a Site. It fails only when the embedded templates are broken.
func New(lib Library, opts Options) (*Site, error) {
	v, err := newViews(opts.SiteTitle, opts.AboutURL)
	if err != nil {
		return nil, err
	}
	opts.ImagesPublicPath = strings.Trim(opts.ImagesPublicPath, "/")
	opts.PostsURLPrefix = strings.Trim(opts.PostsURLPrefix, "/")
	return &Site{
		lib:   lib,
		views: v,
		opts:  opts,
	}, nil
}

func hasContent(post models.Post) bool {
	return strings.TrimSpace(post.Content) != ""
}
