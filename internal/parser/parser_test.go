package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rodriguezjordyc/website/internal/models"
)

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		filename string
		expected Metadata
	}{
		{
			name:     "Front matter",
			markdown: "---\ntitle: Modern Stewardship\ndate: 2025-09-29\n---\n# Ignored Heading\n\nBody\n",
			filename: "stewardship.md",
			expected: Metadata{
				Title:         "Modern Stewardship",
				PublishedDate: "2025-09-29",
				Date:          time.Date(2025, 9, 29, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:     "Published wins over date",
			markdown: "---\ntitle: Notes\ndate: 2024-01-01\npublished: March 3, 2025\n---\nBody\n",
			filename: "notes.md",
			expected: Metadata{
				Title:         "Notes",
				PublishedDate: "March 3, 2025",
				Date:          time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:     "Heading and published line",
			markdown: "# AI Literacy\n\nPublished: September 29, 2025\n\nBody text\n",
			filename: "ai-literacy.md",
			expected: Metadata{
				Title:         "AI Literacy",
				PublishedDate: "September 29, 2025",
				Date:          time.Date(2025, 9, 29, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:     "Published line is case insensitive",
			markdown: "# Log\n\nPUBLISHED: Jan 5, 2025\n",
			filename: "log.md",
			expected: Metadata{
				Title:         "Log",
				PublishedDate: "Jan 5, 2025",
				Date:          time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:     "Heading beyond the scan window",
			markdown: strings.Repeat("text\n", 12) + "# Too Late\n",
			filename: "late_title.md",
			expected: Metadata{
				Title: "Late Title",
				Date:  models.Epoch,
			},
		},
		{
			name:     "Malformed front matter",
			markdown: "---\ntitle: [unclosed\n---\nBody\n",
			filename: "my-first_post.md",
			expected: Metadata{
				Title: "My First Post",
				Date:  models.Epoch,
			},
		},
		{
			name:     "No metadata",
			markdown: "Just some text\n",
			filename: "field-notes.md",
			expected: Metadata{
				Title: "Field Notes",
				Date:  models.Epoch,
			},
		},
		{
			name:     "Unparseable date",
			markdown: "# Someday\n\nPublished: soon\n",
			filename: "someday.md",
			expected: Metadata{
				Title:         "Someday",
				PublishedDate: "soon",
				Date:          models.Epoch,
			},
		},
	}

	p := New("posts")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ParseMetadata([]byte(tt.markdown), tt.filename)
			if got.Title != tt.expected.Title {
				t.Errorf("Title = %q, want %q", got.Title, tt.expected.Title)
			}
			if got.PublishedDate != tt.expected.PublishedDate {
				t.Errorf("PublishedDate = %q, want %q", got.PublishedDate, tt.expected.PublishedDate)
			}
			if !got.Date.Equal(tt.expected.Date) {
				t.Errorf("Date = %v, want %v", got.Date, tt.expected.Date)
			}
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := map[string]string{
		"modern-stewardship.md":   "Modern Stewardship",
		"posts/ai_literacy.md":    "Ai Literacy",
		"essays/2025/on-teams.md": "On Teams",
		"single.md":               "Single",
	}
	for in, want := range tests {
		if got := TitleFromFilename(in); got != want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRender(t *testing.T) {
	markdown := "---\ntitle: Front\n---\n" +
		"# Heading One\n\n" +
		"Published: September 29, 2025\n\n" +
		"line one\nline two\n\n" +
		"![chart](chart.png)\n\n" +
		"![remote](https://cdn.example.com/a.png)\n\n" +
		"![absolute](/images/b.png)\n\n" +
		"<div class=\"note\">raw</div>\n\n" +
		"<img src=\"diagram.svg\" alt=\"diagram\">\n\n" +
		"<img src='https://cdn.example.com/c.png'>\n"

	p := New("/posts/")

	t.Run("Post in a sub-folder", func(t *testing.T) {
		got, err := p.Render([]byte(markdown), "essays/ai.md")
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}

		for _, want := range []string{
			`<h1 id="heading-one">Heading One</h1>`,
			"line one<br>",
			`src="/posts/essays/chart.png"`,
			`src="/posts/essays/diagram.svg"`,
			`src='https://cdn.example.com/c.png'`,
			`src="https://cdn.example.com/a.png"`,
			`src="/images/b.png"`,
			`<div class="note">raw</div>`,
		} {
			if !strings.Contains(got, want) {
				t.Errorf("Render() missing %q in\n%s", want, got)
			}
		}
		for _, unwanted := range []string{"Published:", "title: Front"} {
			if strings.Contains(got, unwanted) {
				t.Errorf("Render() should not contain %q:\n%s", unwanted, got)
			}
		}
	})

	t.Run("Top-level post images resolve under the prefix", func(t *testing.T) {
		got, err := p.Render([]byte(markdown), "ai.md")
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		for _, want := range []string{`src="/posts/chart.png"`, `src="/posts/diagram.svg"`, `src="/images/b.png"`} {
			if !strings.Contains(got, want) {
				t.Errorf("Render() missing %q in\n%s", want, got)
			}
		}
	})

	t.Run("Only the first published line is removed", func(t *testing.T) {
		got, err := p.Render([]byte("Published: Jan 1, 2025\n\nPublished: again\n"), "x.md")
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if strings.Count(got, "Published:") != 1 {
			t.Errorf("Render() = %s", got)
		}
	})
}

func TestParseFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "essays"), 0755); err != nil {
		t.Fatal(err)
	}
	content := "# AI Literacy: Part 1\n\nPublished: September 29, 2025\n\nHello\n\n![chart](chart.png)\n"
	if err := os.WriteFile(filepath.Join(root, "essays", "ai.md"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p := New("posts")

	post, err := p.ParseFile(root, filepath.Join("essays", "ai.md"))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if post.Slug != "ai-literacy-part-1" {
		t.Errorf("Slug = %q", post.Slug)
	}
	if post.Title != "AI Literacy: Part 1" {
		t.Errorf("Title = %q", post.Title)
	}
	if post.Excerpt != "Sep 29, 2025" {
		t.Errorf("Excerpt = %q", post.Excerpt)
	}
	if post.Source != models.SourceMarkdown || post.Path != "essays/ai.md" {
		t.Errorf("Unexpected source info: %q %q", post.Source, post.Path)
	}
	if post.Markdown != content {
		t.Error("Expected raw markdown to be kept")
	}
	if !strings.Contains(post.Content, `src="/posts/essays/chart.png"`) {
		t.Errorf("Content = %s", post.Content)
	}

	if _, err := p.ParseFile(root, "missing.md"); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}
