// Package export reads and writes blog-content.json.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rodriguezjordyc/website/internal/models"
)

// ErrInvalidContent is returned when a content file has no posts object
var ErrInvalidContent = errors.New("invalid blog data structure")

// WriteFile stores content as indented JSON, replacing path atomically
func WriteFile(path string, content models.BlogContent) error {
	if content.Posts == nil {
		content.Posts = map[string]models.Post{}
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode blog content: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".blog-content-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write blog content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write blog content: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write blog content: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save blog content: %w", err)
	}

	return nil
}

// ReadFile loads a content file written by WriteFile
func ReadFile(path string) (models.BlogContent, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.BlogContent{}, fmt.Errorf("failed to open blog content: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses blog content and fills in each post's slug and date
func Decode(r io.Reader) (models.BlogContent, error) {
	var raw struct {
		Posts       *map[string]models.Post `json:"posts"`
		LastUpdated string                  `json:"lastUpdated"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return models.BlogContent{}, fmt.Errorf("failed to parse blog content: %w", err)
	}
	if raw.Posts == nil {
		return models.BlogContent{}, ErrInvalidContent
	}

	content := models.BlogContent{
		Posts:       make(map[string]models.Post, len(*raw.Posts)),
		LastUpdated: models.ParseDate(raw.LastUpdated),
	}
	for slug, post := range *raw.Posts {
		post.Slug = slug
		post.Date = models.ParseDate(post.PublishedDate)
		post.Source = models.SourceNotion
		content.Posts[slug] = post
	}

	return content, nil
}
