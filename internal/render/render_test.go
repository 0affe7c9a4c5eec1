package render

import (
	"context"
	"errors"
	"testing"

	"github.com/jomei/notionapi"
)

type fakeChildren map[notionapi.BlockID][]notionapi.Block

func (f fakeChildren) GetChildren(_ context.Context, id notionapi.BlockID) ([]notionapi.Block, error) {
	children, ok := f[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return children, nil
}

type fakeImages struct {
	calls []string
	fail  bool
}

func (f *fakeImages) Resolve(_ context.Context, rawURL string, blockID string) (string, error) {
	f.calls = append(f.calls, blockID)
	if f.fail {
		return "", errors.New("status 403")
	}
	return "/images/" + blockID + ".png", nil
}

func text(s string) []notionapi.RichText {
	return []notionapi.RichText{{PlainText: s}}
}

func basic(id string, typ string, hasChildren bool) notionapi.BasicBlock {
	return notionapi.BasicBlock{
		Object:      "block",
		ID:          notionapi.BlockID(id),
		Type:        notionapi.BlockType(typ),
		HasChildren: hasChildren,
	}
}

func paragraph(id, s string) *notionapi.ParagraphBlock {
	return &notionapi.ParagraphBlock{
		BasicBlock: basic(id, "paragraph", false),
		Paragraph:  notionapi.Paragraph{RichText: text(s)},
	}
}

func bullet(id, s string, hasChildren bool) *notionapi.BulletedListItemBlock {
	return &notionapi.BulletedListItemBlock{
		BasicBlock:       basic(id, "bulleted_list_item", hasChildren),
		BulletedListItem: notionapi.ListItem{RichText: text(s)},
	}
}

func numbered(id, s string) *notionapi.NumberedListItemBlock {
	return &notionapi.NumberedListItemBlock{
		BasicBlock:       basic(id, "numbered_list_item", false),
		NumberedListItem: notionapi.ListItem{RichText: text(s)},
	}
}

func row(id string, cells ...string) *notionapi.TableRowBlock {
	r := &notionapi.TableRowBlock{BasicBlock: basic(id, "table_row", false)}
	for _, c := range cells {
		r.TableRow.Cells = append(r.TableRow.Cells, text(c))
	}
	return r
}

func table(id string, columnHeader, rowHeader bool) *notionapi.TableBlock {
	return &notionapi.TableBlock{
		BasicBlock: basic(id, "table", true),
		Table: notionapi.Table{
			TableWidth:      2,
			HasColumnHeader: columnHeader,
			HasRowHeader:    rowHeader,
		},
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		blocks   []notionapi.Block
		children fakeChildren
		expected string
	}{
		{
			name: "Paragraphs and headings",
			blocks: []notionapi.Block{
				&notionapi.Heading1Block{BasicBlock: basic("h1", "heading_1", false), Heading1: notionapi.Heading{RichText: text("Title")}},
				&notionapi.Heading2Block{BasicBlock: basic("h2", "heading_2", false), Heading2: notionapi.Heading{RichText: text("Section")}},
				&notionapi.Heading3Block{BasicBlock: basic("h3", "heading_3", false), Heading3: notionapi.Heading{RichText: text("Sub")}},
				paragraph("p1", "Hello"),
				paragraph("p2", "   "),
			},
			expected: "<h1>Title</h1><h2>Section</h2><h3>Sub</h3><p>Hello</p>",
		},
		{
			name: "Consecutive list items share one list",
			blocks: []notionapi.Block{
				bullet("b1", "one", false),
				bullet("b2", "two", false),
				numbered("n1", "first"),
				numbered("n2", "second"),
				bullet("b3", "three", false),
			},
			expected: "<ul><li>one</li><li>two</li></ul><ol><li>first</li><li>second</li></ol><ul><li>three</li></ul>",
		},
		{
			name: "Nested list children render inside the item",
			blocks: []notionapi.Block{
				bullet("b1", "parent", true),
				bullet("b2", "sibling", false),
			},
			children: fakeChildren{
				"b1": {bullet("c1", "child a", false), bullet("c2", "child b", false)},
			},
			expected: "<ul><li>parent<ul><li>child a</li><li>child b</li></ul></li><li>sibling</li></ul>",
		},
		{
			name: "Failed child fetch keeps the item",
			blocks: []notionapi.Block{
				bullet("b1", "orphan", true),
			},
			children: fakeChildren{},
			expected: "<ul><li>orphan</li></ul>",
		},
		{
			name: "Quote, divider and unsupported blocks",
			blocks: []notionapi.Block{
				&notionapi.QuoteBlock{BasicBlock: basic("q", "quote", false), Quote: notionapi.Quote{RichText: text("Wise words")}},
				&notionapi.DividerBlock{BasicBlock: basic("d", "divider", false)},
				&notionapi.ToDoBlock{BasicBlock: basic("t", "to_do", false)},
			},
			expected: "<blockquote><p>Wise words</p></blockquote><hr>",
		},
		{
			name:   "Table with column and row headers",
			blocks: []notionapi.Block{table("t1", true, true)},
			children: fakeChildren{
				"t1": {
					row("r0", "Metric", "Value"),
					row("r1", "Goals", "3"),
					row("r2", "Assists", "5"),
				},
			},
			expected: `<table data-has-column-header="true" data-has-row-header="true">` +
				`<thead><tr><th>Metric</th><th>Value</th></tr></thead>` +
				`<tbody><tr><th>Goals</th><td data-label="Value">3</td></tr>` +
				`<tr><th>Assists</th><td data-label="Value">5</td></tr></tbody></table>`,
		},
		{
			name:   "Table without headers",
			blocks: []notionapi.Block{table("t2", false, false)},
			children: fakeChildren{
				"t2": {row("r0", "a", "b"), row("r1", "c", "d")},
			},
			expected: `<table><tbody><tr><td>a</td><td>b</td></tr><tr><td>c</td><td>d</td></tr></tbody></table>`,
		},
		{
			name:     "Table without rows is dropped",
			blocks:   []notionapi.Block{table("t3", true, false)},
			children: fakeChildren{"t3": {}},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConverter(tt.children, nil)
			got, err := c.Convert(context.Background(), tt.blocks)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Convert() =\n%s\nwant\n%s", got, tt.expected)
			}
		})
	}
}

func TestConvertImages(t *testing.T) {
	image := &notionapi.ImageBlock{
		BasicBlock: basic("img-1", "image", false),
		Image: notionapi.Image{
			Type:    "file",
			File:    &notionapi.FileObject{URL: "https://s3.example.com/a/photo.jpg?X-Amz=1"},
			Caption: text(`Pitch "map"`),
		},
	}
	external := &notionapi.ImageBlock{
		BasicBlock: basic("img-2", "image", false),
		Image: notionapi.Image{
			Type:     "external",
			External: &notionapi.FileObject{URL: "https://cdn.example.com/chart"},
		},
	}
	empty := &notionapi.ImageBlock{BasicBlock: basic("img-3", "image", false)}

	t.Run("Resolved images point at the cache", func(t *testing.T) {
		images := &fakeImages{}
		c := NewConverter(nil, images)
		got, err := c.Convert(context.Background(), []notionapi.Block{image, external, empty})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		expected := `<img src="/images/img-1.png" alt="Pitch &#34;map&#34;" />` +
			`<img src="/images/img-2.png" alt="" />`
		if got != expected {
			t.Errorf("Convert() = %s, want %s", got, expected)
		}
		if len(images.calls) != 2 {
			t.Errorf("Expected 2 resolve calls, got %v", images.calls)
		}
	})

	t.Run("Failed downloads drop the image", func(t *testing.T) {
		c := NewConverter(nil, &fakeImages{fail: true})
		got, err := c.Convert(context.Background(), []notionapi.Block{image, paragraph("p", "after")})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if got != "<p>after</p>" {
			t.Errorf("Convert() = %s", got)
		}
	})
}

func TestConvertCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConverter(nil, nil)
	if _, err := c.Convert(ctx, []notionapi.Block{paragraph("p", "x")}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRichText(t *testing.T) {
	tests := []struct {
		name     string
		runs     []notionapi.RichText
		expected string
	}{
		{
			name:     "Plain text is escaped",
			runs:     text("a < b & c"),
			expected: "a &lt; b &amp; c",
		},
		{
			name: "Annotations nest bold, italic, code",
			runs: []notionapi.RichText{{
				PlainText:   "all",
				Annotations: &notionapi.Annotations{Bold: true, Italic: true, Code: true},
			}},
			expected: "<code><em><strong>all</strong></em></code>",
		},
		{
			name: "Links wrap formatted text",
			runs: []notionapi.RichText{
				{PlainText: "see "},
				{
					PlainText:   "docs",
					Href:        "https://example.com/?a=1&b=2",
					Annotations: &notionapi.Annotations{Bold: true},
				},
			},
			expected: `see <a href="https://example.com/?a=1&amp;b=2" target="_blank" rel="noopener noreferrer"><strong>docs</strong></a>`,
		},
		{
			name:     "Falls back to text content",
			runs:     []notionapi.RichText{{Text: &notionapi.Text{Content: "raw"}}},
			expected: "raw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RichText(tt.runs); got != tt.expected {
				t.Errorf("RichText() = %q, want %q", got, tt.expected)
			}
		})
	}
}
