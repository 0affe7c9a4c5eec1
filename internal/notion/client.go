package notion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rodriguezjordyc/website/internal/config"
	"github.com/rodriguezjordyc/website/internal/logger"
)

// Database property names
const (
	PropertyTitle     = "Title"
	PropertyStatus    = "Status"
	PropertyPublished = "Published"
	PropertyBlog      = "Blog"
)

var (
	ErrMissingAPIKey     = errors.New("NOTION_API_KEY is not set")
	ErrMissingDatabaseID = errors.New("notion database ID is not set")
)

// Client wraps the Notion API client
type Client struct {
	client     NotionClient
	databaseID notionapi.DatabaseID
	status     string
	retries    int
	retryDelay time.Duration
}

// New creates a new Notion client
func New(cfg config.Notion) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.DatabaseID == "" {
		return nil, ErrMissingDatabaseID
	}

	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}
	status := cfg.StatusValue
	if status == "" {
		status = "Published"
	}

	notionClient := notionapi.NewClient(notionapi.Token(cfg.APIKey))
	return &Client{
		client:     newNotionClientAdapter(notionClient),
		databaseID: notionapi.DatabaseID(cfg.DatabaseID),
		status:     status,
		retries:    retries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// NewWithClient builds a Client on top of an existing NotionClient
func NewWithClient(client NotionClient, cfg config.Notion) (*Client, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	c.client = client
	return c, nil
}

// QueryPublished returns every page whose Status is the published value,
// newest Published date first.
func (c *Client) QueryPublished(ctx context.Context) ([]notionapi.Page, error) {
	logger.Debug("Querying Notion database", map[string]interface{}{
		"database_id": c.databaseID,
		"status":      c.status,
	})

	var pages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			Filter: &notionapi.PropertyFilter{
				Property: PropertyStatus,
				Select: &notionapi.SelectFilterCondition{
					Equals: c.status,
				},
			},
			Sorts: []notionapi.SortObject{
				{
					Property:  PropertyPublished,
					Direction: notionapi.SortOrderDESC,
				},
			},
			StartCursor: cursor,
		}

		var resp *notionapi.DatabaseQueryResponse
		err := c.withRetry(ctx, "database query", func() error {
			var err error
			resp, err = c.client.Database().Query(ctx, c.databaseID, req)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query database %s: %w", c.databaseID, err)
		}

		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}

	logger.Info(fmt.Sprintf("Fetched %d pages from Notion", len(pages)), nil)
	return pages, nil
}

// GetChildren returns all child blocks of a page or block
func (c *Client) GetChildren(ctx context.Context, id notionapi.BlockID) ([]notionapi.Block, error) {
	var blocks []notionapi.Block
	var cursor notionapi.Cursor

	for {
		var resp *notionapi.GetChildrenResponse
		err := c.withRetry(ctx, "get children", func() error {
			var err error
			resp, err = c.client.Block().GetChildren(ctx, id, &notionapi.Pagination{
				StartCursor: cursor,
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch children of %s: %w", id, err)
		}

		blocks = append(blocks, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}

	return blocks, nil
}

func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == c.retries {
			break
		}
		logger.Debug("Retrying Notion request", map[string]interface{}{
			"op":      op,
			"attempt": attempt,
			"error":   err.Error(),
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, c.retries, err)
}

// PageFields holds the database properties a post is built from
type PageFields struct {
	Title     string
	Status    string
	Published string
	Blog      string
}

// ExtractFields reads the post properties of a database page
func ExtractFields(page notionapi.Page) PageFields {
	fields := PageFields{Title: "Untitled"}

	for name, prop := range page.Properties {
		switch name {
		case PropertyTitle:
			if title := titleText(prop); title != "" {
				fields.Title = title
			}
		case PropertyStatus:
			fields.Status = selectName(prop)
		case PropertyBlog:
			fields.Blog = selectName(prop)
		case PropertyPublished:
			fields.Published = dateStart(prop)
		}
	}

	return fields
}

func titleText(prop notionapi.Property) string {
	var runs []notionapi.RichText
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		runs = p.Title
	case notionapi.TitleProperty:
		runs = p.Title
	}
	if len(runs) == 0 {
		return ""
	}
	if runs[0].PlainText != "" {
		return runs[0].PlainText
	}
	if runs[0].Text != nil {
		return runs[0].Text.Content
	}
	return ""
}

func selectName(prop notionapi.Property) string {
	switch p := prop.(type) {
	case *notionapi.SelectProperty:
		return p.Select.Name
	case notionapi.SelectProperty:
		return p.Select.Name
	}
	return ""
}

func dateStart(prop notionapi.Property) string {
	var date *notionapi.DateObject
	switch p := prop.(type) {
	case *notionapi.DateProperty:
		date = p.Date
	case notionapi.DateProperty:
		date = p.Date
	}
	if date == nil || date.Start == nil {
		return ""
	}
	t := time.Time(*date.Start)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
