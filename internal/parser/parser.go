package parser

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/rodriguezjordyc/website/internal/logger"
	"github.com/rodriguezjordyc/website/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	titleScanLines     = 10
	publishedScanLines = 15
)

var (
	publishedLabel = regexp.MustCompile(`(?i)published:`)
	publishedLine  = regexp.MustCompile(`(?mi)^Published:.*$`)
)

// Parser turns markdown post files into posts
type Parser struct {
	urlPrefix string
}

// New creates a Parser. urlPrefix is the public path the posts directory
// is served under and is used to rebase images of posts in sub-folders.
func New(urlPrefix string) *Parser {
	return &Parser{urlPrefix: strings.Trim(urlPrefix, "/")}
}

// Metadata is what a post's header tells us about it
type Metadata struct {
	Title         string
	PublishedDate string
	Date          time.Time
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Date      string `yaml:"date"`
	Published string `yaml:"published"`
}

// ParseMetadata extracts the title and publish date of a post. YAML front
// matter wins when present; otherwise the first "# " heading within the
// first 10 lines and the first "published:" line within the first 15 are
// used. Without a title the file name is used, without a date Epoch.
func (p *Parser) ParseMetadata(markdown []byte, filename string) Metadata {
	fm, body := splitFrontMatter(markdown, filename)

	meta := Metadata{
		Title:         strings.TrimSpace(fm.Title),
		PublishedDate: strings.TrimSpace(fm.Published),
	}
	if meta.PublishedDate == "" {
		meta.PublishedDate = strings.TrimSpace(fm.Date)
	}

	lines := strings.Split(string(body), "\n")
	if meta.Title == "" {
		for i := 0; i < len(lines) && i < titleScanLines; i++ {
			if strings.HasPrefix(lines[i], "# ") {
				meta.Title = strings.TrimSpace(strings.TrimPrefix(lines[i], "# "))
				break
			}
		}
	}
	if meta.PublishedDate == "" {
		for i := 0; i < len(lines) && i < publishedScanLines; i++ {
			if strings.Contains(strings.ToLower(lines[i]), "published:") {
				meta.PublishedDate = strings.TrimSpace(publishedLabel.ReplaceAllString(lines[i], ""))
				break
			}
		}
	}

	if meta.Title == "" {
		meta.Title = TitleFromFilename(filename)
	}
	meta.Date = models.ParseDate(meta.PublishedDate)

	return meta
}

// TitleFromFilename turns "modern-stewardship.md" into "Modern Stewardship"
func TitleFromFilename(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(strings.TrimSpace(name))
}

// Render converts a post body to HTML. relPath is the post's path inside
// the posts directory; relative image sources, markdown or raw HTML, are
// rebased onto the post's folder under the posts URL prefix.
func (p *Parser) Render(markdown []byte, relPath string) (string, error) {
	_, body := splitFrontMatter(markdown, relPath)

	cleaned := body
	if loc := publishedLine.FindIndex(body); loc != nil {
		cleaned = append(append([]byte{}, body[:loc[0]]...), body[loc[1]:]...)
	}
	cleaned = bytes.TrimSpace(cleaned)

	base := p.imageBase(relPath)

	var buf bytes.Buffer
	if err := p.engine(base).Convert(cleaned, &buf); err != nil {
		return "", fmt.Errorf("markdown parse: %w", err)
	}
	return rebaseHTMLImages(buf.String(), base), nil
}

// imageBase is the root-relative URL of the folder holding the post
func (p *Parser) imageBase(relPath string) string {
	base := "/" + path.Join(p.urlPrefix, path.Dir(filepath.ToSlash(relPath)))
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

func (p *Parser) engine(imageBase string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			gmparser.WithAutoHeadingID(),
			gmparser.WithASTTransformers(
				util.Prioritized(&imageBaseTransformer{base: imageBase}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(),
		),
	)
}

// ParseFile reads root/relPath and builds the post
func (p *Parser) ParseFile(root, relPath string) (models.Post, error) {
	logger.Debug("Reading markdown post", map[string]interface{}{
		"filepath": relPath,
	})

	data, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		return models.Post{}, fmt.Errorf("failed to read file: %w", err)
	}

	meta := p.ParseMetadata(data, relPath)
	content, err := p.Render(data, relPath)
	if err != nil {
		return models.Post{}, err
	}

	return models.Post{
		Slug:          models.HashSlug(meta.Title),
		Title:         meta.Title,
		PublishedDate: meta.PublishedDate,
		Date:          meta.Date,
		Content:       content,
		Excerpt:       models.FormatShortDate(meta.Date),
		Source:        models.SourceMarkdown,
		Path:          filepath.ToSlash(relPath),
		Markdown:      string(data),
	}, nil
}

// splitFrontMatter returns the YAML header and the remaining body. Files
// without a header, or with one that does not parse, are returned whole.
func splitFrontMatter(markdown []byte, filename string) (frontMatter, []byte) {
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(markdown), &fm)
	if err != nil {
		logger.Debug("Ignoring unreadable front matter", map[string]interface{}{
			"filepath": filename,
			"error":    err.Error(),
		})
		return frontMatter{}, markdown
	}
	return fm, body
}
