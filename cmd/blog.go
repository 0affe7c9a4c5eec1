package main

import (
	"github.com/rodriguezjordyc/website/internal/blog"
	"github.com/rodriguezjordyc/website/internal/config"
	"github.com/rodriguezjordyc/website/internal/parser"
	"github.com/rodriguezjordyc/website/internal/site"
)

// newLibrary picks the post source configured under blog.source
func newLibrary(cfg config.Config) *blog.Library {
	var src blog.Source
	switch cfg.Blog.Source {
	case config.SourceMarkdown:
		src = blog.NewMarkdownSource(cfg.Blog.PostsDir, cfg.Blog.PostFiles, parser.New(cfg.Blog.PostsURLPrefix))
	default:
		src = blog.NewJSONSource(contentLocation(cfg), cfg.Blog.FetchTimeout)
	}
	return blog.NewLibrary(src)
}

// contentLocation is the remote content URL when set, the local content file otherwise
func contentLocation(cfg config.Config) string {
	if cfg.Blog.ContentURL != "" {
		return cfg.Blog.ContentURL
	}
	return cfg.Output.ContentFile
}

func siteOptions(cfg config.Config) site.Options {
	opts := site.Options{
		SiteTitle:          cfg.Blog.SiteTitle,
		AboutURL:           cfg.Blog.AboutURL,
		ContentFile:        cfg.Output.ContentFile,
		ImagesDir:          cfg.Output.ImagesDir,
		ImagesPublicPath:   cfg.Output.ImagesPublicPath,
		CorsAllowedOrigins: cfg.Server.CorsAllowedOrigins,
	}
	if cfg.Blog.Source == config.SourceMarkdown {
		opts.PostsDir = cfg.Blog.PostsDir
		opts.PostsURLPrefix = cfg.Blog.PostsURLPrefix
	}
	return opts
}
