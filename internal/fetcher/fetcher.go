// Package fetcher builds blog-content.json from the Notion database.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rodriguezjordyc/website/internal/export"
	"github.com/rodriguezjordyc/website/internal/logger"
	"github.com/rodriguezjordyc/website/internal/models"
	"github.com/rodriguezjordyc/website/internal/notion"
)

// PageSource is the part of the Notion client the fetcher needs
type PageSource interface {
	QueryPublished(ctx context.Context) ([]notionapi.Page, error)
	GetChildren(ctx context.Context, id notionapi.BlockID) ([]notionapi.Block, error)
}

// Converter renders a page's blocks to HTML
type Converter interface {
	Convert(ctx context.Context, blocks []notionapi.Block) (string, error)
}

// Service fetches, converts and saves posts
type Service struct {
	source    PageSource
	converter Converter
	status    string
	blogTypes map[string]bool
	now       func() time.Time
}

// New creates a Service. Only pages whose Status equals status and whose
// Blog select is one of blogTypes are published.
func New(source PageSource, converter Converter, status string, blogTypes []string, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	types := make(map[string]bool, len(blogTypes))
	for _, t := range blogTypes {
		types[t] = true
	}
	return &Service{
		source:    source,
		converter: converter,
		status:    status,
		blogTypes: types,
		now:       now,
	}
}

// FetchPosts returns the published posts keyed by slug
func (s *Service) FetchPosts(ctx context.Context) (map[string]models.Post, error) {
	logger.Info("Fetching posts from Notion API")

	pages, err := s.source.QueryPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}

	posts := make(map[string]models.Post)
	for _, page := range pages {
		fields := notion.ExtractFields(page)
		if fields.Status != s.status || !s.blogTypes[fields.Blog] {
			logger.Debug("Skipping page", map[string]interface{}{
				"title":  fields.Title,
				"status": fields.Status,
				"blog":   fields.Blog,
			})
			continue
		}

		slug := uniqueSlug(posts, models.Slugify(fields.Title), string(page.ID))
		logger.Info("Processing post", map[string]interface{}{
			"title": fields.Title,
			"slug":  slug,
		})

		content, err := s.fetchContent(ctx, page.ID)
		if err != nil {
			return nil, err
		}

		date := models.ParseDate(fields.Published)
		posts[slug] = models.Post{
			ID:            string(page.ID),
			Slug:          slug,
			Title:         fields.Title,
			Status:        fields.Status,
			PublishedDate: fields.Published,
			BlogType:      fields.Blog,
			URL:           page.URL,
			Content:       content,
			Excerpt:       models.FormatShortDate(date),
			Date:          date,
			Source:        models.SourceNotion,
		}
	}

	logger.Info(fmt.Sprintf("Total processed posts: %d", len(posts)))
	return posts, nil
}

// fetchContent returns "" when the page's blocks cannot be loaded; only
// context cancellation is an error.
func (s *Service) fetchContent(ctx context.Context, id notionapi.ObjectID) (string, error) {
	blocks, err := s.source.GetChildren(ctx, notionapi.BlockID(id))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		logger.Error("Failed to fetch content", err, map[string]interface{}{
			"page_id": id,
		})
		return "", nil
	}
	return s.converter.Convert(ctx, blocks)
}

// Run fetches all posts and writes them to outputPath
func (s *Service) Run(ctx context.Context, outputPath string) (int, error) {
	posts, err := s.FetchPosts(ctx)
	if err != nil {
		return 0, err
	}

	updated := s.now().UTC()
	if err := export.WriteFile(outputPath, models.BlogContent{
		Posts:       posts,
		LastUpdated: updated,
	}); err != nil {
		return 0, err
	}

	logger.Info("Blog content saved", map[string]interface{}{
		"path":       outputPath,
		"posts":      len(posts),
		"updated_at": updated.Format(time.RFC3339),
	})
	return len(posts), nil
}

func uniqueSlug(posts map[string]models.Post, slug, fallback string) string {
	if slug == "" {
		slug = fallback
	}
	if _, taken := posts[slug]; !taken {
		return slug
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", slug, n)
		if _, taken := posts[candidate]; !taken {
			logger.Warn("Duplicate slug renamed", map[string]interface{}{
				"slug":    slug,
				"renamed": candidate,
			})
			return candidate
		}
	}
}
