package site

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/rodriguezjordyc/website/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Message is a full-page notice shown instead of content
type Message struct {
	Heading  string
	Text     string
	Href     string
	LinkText string
}

var (
	MessageUnavailable = Message{
		Heading:  "Blog Temporarily Unavailable",
		Text:     "We're having trouble loading the blog content. Please try refreshing the page or check back later.",
		Href:     "/",
		LinkText: "← Back",
	}
	MessageNoContent = Message{
		Heading:  "Content not available",
		Text:     "This post content is not currently available. Please try refreshing the page.",
		Href:     "/",
		LinkText: "← Back",
	}
	MessageNotFound = Message{
		Heading:  "Post not found",
		Text:     "The post you are looking for does not exist or has been moved.",
		Href:     "/",
		LinkText: "← Back",
	}
)

type pageData struct {
	SiteTitle string
	AboutURL  string
	Title     string
	Theme     string
	NextTheme string
	Dynamic   bool

	Posts    []models.Post
	Post     models.Post
	Markdown bool
	LongDate string
	Body     template.HTML
	Message  Message
}

type views struct {
	siteTitle string
	aboutURL  string
	pages     map[string]*template.Template
}

func newViews(siteTitle, aboutURL string) (*views, error) {
	v := &views{
		siteTitle: siteTitle,
		aboutURL:  aboutURL,
		pages:     make(map[string]*template.Template),
	}
	for _, name := range []string{"index", "post", "message"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		v.pages[name] = tmpl
	}
	return v, nil
}

func (v *views) base(theme string, dynamic bool) pageData {
	next := ThemeLight
	if theme == ThemeLight {
		next = ThemeDark
	}
	return pageData{
		SiteTitle: v.siteTitle,
		AboutURL:  v.aboutURL,
		Theme:     theme,
		NextTheme: next,
		Dynamic:   dynamic,
	}
}

func (v *views) index(w io.Writer, theme string, dynamic bool, posts []models.Post) error {
	data := v.base(theme, dynamic)
	data.Posts = posts
	return v.render(w, "index", data)
}

// post renders a post page, or the "not available" notice when it has no body
func (v *views) post(w io.Writer, theme string, dynamic bool, post models.Post) error {
	if !hasContent(post) {
		return v.message(w, theme, dynamic, post.Title, MessageNoContent)
	}

	data := v.base(theme, dynamic)
	data.Title = post.Title
	data.Post = post
	data.Markdown = post.Source == models.SourceMarkdown
	data.LongDate = models.FormatLongDate(post.Date)
	// Content is produced by our own renderers
	data.Body = template.HTML(post.Content)
	return v.render(w, "post", data)
}

// unavailable is MessageUnavailable pointing back to the about page when one is configured
func (v *views) unavailable() Message {
	msg := MessageUnavailable
	if v.aboutURL != "" {
		msg.Href = v.aboutURL
		msg.LinkText = "← Return to About"
	}
	return msg
}

func (v *views) message(w io.Writer, theme string, dynamic bool, title string, msg Message) error {
	data := v.base(theme, dynamic)
	data.Title = title
	data.Message = msg
	return v.render(w, "message", data)
}

func (v *views) render(w io.Writer, name string, data pageData) error {
	tmpl, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
