// Package blog loads the posts shown by the viewer.
package blog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rodriguezjordyc/website/internal/logger"
	"github.com/rodriguezjordyc/website/internal/models"
)

// ErrUnavailable is returned when the configured source cannot be loaded
var ErrUnavailable = errors.New("blog content unavailable")

// Source loads every post, newest first
type Source interface {
	Load(ctx context.Context) ([]models.Post, error)
}

// Library caches the posts of a Source until invalidated
type Library struct {
	source Source

	mu     sync.RWMutex
	posts  []models.Post
	bySlug map[string]models.Post
	loaded bool
}

// NewLibrary creates a Library backed by source
func NewLibrary(source Source) *Library {
	return &Library{source: source}
}

// Posts returns the cached posts, loading them on first use. When the source
// fails the result is an empty list and an error wrapping ErrUnavailable.
func (l *Library) Posts(ctx context.Context) ([]models.Post, error) {
	l.mu.RLock()
	if l.loaded {
		posts := l.posts
		l.mu.RUnlock()
		return posts, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return l.posts, nil
	}

	posts, err := l.source.Load(ctx)
	if err != nil {
		logger.Error("Failed to load blog posts", err)
		return []models.Post{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if posts == nil {
		posts = []models.Post{}
	}

	l.posts = posts
	l.bySlug = make(map[string]models.Post, len(posts))
	for _, p := range posts {
		if _, dup := l.bySlug[p.Slug]; !dup {
			l.bySlug[p.Slug] = p
		}
	}
	l.loaded = true

	logger.Info("Loaded blog posts", map[string]interface{}{
		"count": len(posts),
	})
	return posts, nil
}

// Post looks up a single post by slug. ok is false when no post matches.
func (l *Library) Post(ctx context.Context, slug string) (post models.Post, ok bool, err error) {
	if _, err := l.Posts(ctx); err != nil {
		return models.Post{}, false, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	post, ok = l.bySlug[slug]
	return post, ok, nil
}

// Invalidate drops the cache so the next call reloads from the source
func (l *Library) Invalidate() {
	l.mu.Lock()
	l.posts = nil
	l.bySlug = nil
	l.loaded = false
	l.mu.Unlock()

	logger.Debug("Blog cache invalidated")
}
