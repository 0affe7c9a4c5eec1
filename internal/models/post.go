package models

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Source values for Post.Source
const (
	SourceNotion   = "notion"
	SourceMarkdown = "markdown"
)

// Post is a single blog post as stored in blog-content.json
type Post struct {
	ID            string `json:"id,omitempty"`
	Slug          string `json:"-"`
	Title         string `json:"title"`
	Status        string `json:"status,omitempty"`
	PublishedDate string `json:"published_date"`
	BlogType      string `json:"blog_type,omitempty"`
	URL           string `json:"url,omitempty"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt"`

	// Not serialized
	Date     time.Time `json:"-"`
	Source   string    `json:"-"`
	Path     string    `json:"-"`
	Markdown string    `json:"-"`
}

// BlogContent is the root of blog-content.json
type BlogContent struct {
	Posts       map[string]Post `json:"posts"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// Epoch is the fallback date for posts without a usable publish date
var Epoch = time.Unix(0, 0).UTC()

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"January 2006",
	"01/02/2006",
}

// ParseDate parses the loosely formatted publish dates found in posts.
// Empty or unrecognised input yields Epoch.
func ParseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return Epoch
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}
	return Epoch
}

// FormatShortDate renders dates as "Jan 2, 2006", or "" for Epoch
func FormatShortDate(t time.Time) string {
	if t.IsZero() || t.Equal(Epoch) {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// FormatLongDate renders dates as "January 2, 2006", or "" for Epoch
func FormatLongDate(t time.Time) string {
	if t.IsZero() || t.Equal(Epoch) {
		return ""
	}
	return t.Format("January 2, 2006")
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChar   = regexp.MustCompile(`[^\w-]`)
	nonAlnumRun   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify builds the key used for Notion posts: lower case, whitespace
// runs become "-", anything outside [A-Za-z0-9_-] is dropped.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = whitespaceRun.ReplaceAllString(s, "-")
	return nonSlugChar.ReplaceAllString(s, "")
}

// HashSlug builds the key used for markdown posts: lower case with every
// run of non-alphanumerics collapsed to "-".
func HashSlug(title string) string {
	return nonAlnumRun.ReplaceAllString(strings.ToLower(title), "-")
}

// SortByDate orders posts newest first. Equal dates keep their input order.
func SortByDate(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
}
