// Package render converts Notion blocks into the HTML stored in
// blog-content.json.
package render

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rodriguezjordyc/website/internal/logger"
)

const (
	typeBulletedListItem notionapi.BlockType = "bulleted_list_item"
	typeNumberedListItem notionapi.BlockType = "numbered_list_item"
)

// ChildFetcher loads the children of a block
type ChildFetcher interface {
	GetChildren(ctx context.Context, id notionapi.BlockID) ([]notionapi.Block, error)
}

// ImageResolver turns a remote image into a path the site can serve
type ImageResolver interface {
	Resolve(ctx context.Context, rawURL string, blockID string) (string, error)
}

// Converter renders block trees to HTML
type Converter struct {
	children ChildFetcher
	images   ImageResolver
}

// NewConverter creates a Converter. images may be nil, in which case
// image blocks keep their remote URL.
func NewConverter(children ChildFetcher, images ImageResolver) *Converter {
	return &Converter{children: children, images: images}
}

// Convert renders blocks in order. The only error returned is the
// context's; fetch and download failures are logged and skipped.
func (c *Converter) Convert(ctx context.Context, blocks []notionapi.Block) (string, error) {
	var sb strings.Builder
	if err := c.convertBlocks(ctx, &sb, blocks); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (c *Converter) convertBlocks(ctx context.Context, sb *strings.Builder, blocks []notionapi.Block) error {
	for i := 0; i < len(blocks); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch b := blocks[i].(type) {
		case *notionapi.ParagraphBlock:
			text := RichText(b.Paragraph.RichText)
			if strings.TrimSpace(text) != "" {
				sb.WriteString("<p>" + text + "</p>")
			}

		case *notionapi.Heading1Block:
			sb.WriteString("<h1>" + RichText(b.Heading1.RichText) + "</h1>")

		case *notionapi.Heading2Block:
			sb.WriteString("<h2>" + RichText(b.Heading2.RichText) + "</h2>")

		case *notionapi.Heading3Block:
			sb.WriteString("<h3>" + RichText(b.Heading3.RichText) + "</h3>")

		case *notionapi.BulletedListItemBlock, *notionapi.NumberedListItemBlock:
			end, err := c.convertList(ctx, sb, blocks, i)
			if err != nil {
				return err
			}
			i = end

		case *notionapi.QuoteBlock:
			sb.WriteString("<blockquote><p>" + RichText(b.Quote.RichText) + "</p></blockquote>")

		case *notionapi.ImageBlock:
			if err := c.convertImage(ctx, sb, b); err != nil {
				return err
			}

		case *notionapi.DividerBlock:
			sb.WriteString("<hr>")

		case *notionapi.TableBlock:
			if err := c.convertTable(ctx, sb, b); err != nil {
				return err
			}

		default:
			logger.Debug("Skipping unsupported block", map[string]interface{}{
				"block_id": blocks[i].GetID(),
				"type":     blocks[i].GetType(),
			})
		}
	}
	return nil
}

// convertList consumes the run of list items starting at start that share
// its type and returns the index of the last one.
func (c *Converter) convertList(ctx context.Context, sb *strings.Builder, blocks []notionapi.Block, start int) (int, error) {
	listType := blocks[start].GetType()
	tag := "ul"
	if listType == typeNumberedListItem {
		tag = "ol"
	}

	sb.WriteString("<" + tag + ">")
	end := start
	for ; end < len(blocks) && blocks[end].GetType() == listType; end++ {
		if err := c.convertListItem(ctx, sb, blocks[end]); err != nil {
			return end, err
		}
	}
	sb.WriteString("</" + tag + ">")

	return end - 1, nil
}

func (c *Converter) convertListItem(ctx context.Context, sb *strings.Builder, block notionapi.Block) error {
	var runs []notionapi.RichText
	switch b := block.(type) {
	case *notionapi.BulletedListItemBlock:
		runs = b.BulletedListItem.RichText
	case *notionapi.NumberedListItemBlock:
		runs = b.NumberedListItem.RichText
	}

	sb.WriteString("<li>" + RichText(runs))
	if block.GetHasChildren() {
		children := c.fetchChildren(ctx, block.GetID())
		if err := c.convertBlocks(ctx, sb, children); err != nil {
			return err
		}
	}
	sb.WriteString("</li>")
	return nil
}

func (c *Converter) convertImage(ctx context.Context, sb *strings.Builder, b *notionapi.ImageBlock) error {
	var src string
	switch {
	case b.Image.External != nil && b.Image.External.URL != "":
		src = b.Image.External.URL
	case b.Image.File != nil && b.Image.File.URL != "":
		src = b.Image.File.URL
	}
	if src == "" {
		return nil
	}

	if c.images != nil {
		local, err := c.images.Resolve(ctx, src, string(b.ID))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Error("Failed to cache image", err, map[string]interface{}{
				"block_id": b.ID,
				"url":      src,
			})
			return nil
		}
		src = local
	}
	if src == "" {
		return nil
	}

	alt := PlainText(b.Image.Caption)
	sb.WriteString(fmt.Sprintf(`<img src="%s" alt="%s" />`, html.EscapeString(src), html.EscapeString(alt)))
	return nil
}

func (c *Converter) convertTable(ctx context.Context, sb *strings.Builder, b *notionapi.TableBlock) error {
	if !b.HasChildren {
		return nil
	}
	rows := c.fetchChildren(ctx, b.ID)
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	hasColumnHeader := b.Table.HasColumnHeader
	hasRowHeader := b.Table.HasRowHeader

	sb.WriteString("<table")
	if hasColumnHeader {
		sb.WriteString(` data-has-column-header="true"`)
	}
	if hasRowHeader {
		sb.WriteString(` data-has-row-header="true"`)
	}
	sb.WriteString(">")

	var columnHeaders []string
	if hasColumnHeader {
		if header, ok := rows[0].(*notionapi.TableRowBlock); ok {
			for _, cell := range header.TableRow.Cells {
				columnHeaders = append(columnHeaders, PlainText(cell))
			}
		}
	}

	for i, block := range rows {
		row, ok := block.(*notionapi.TableRowBlock)
		if !ok {
			continue
		}
		isHeaderRow := hasColumnHeader && i == 0

		if isHeaderRow {
			sb.WriteString("<thead>")
		} else if i == 0 || (hasColumnHeader && i == 1) {
			sb.WriteString("<tbody>")
		}

		sb.WriteString("<tr>")
		for j, cell := range row.TableRow.Cells {
			tag := "td"
			label := ""
			switch {
			case isHeaderRow:
				tag = "th"
			case hasRowHeader && j == 0:
				tag = "th"
			case j < len(columnHeaders) && columnHeaders[j] != "":
				label = fmt.Sprintf(` data-label="%s"`, html.EscapeString(columnHeaders[j]))
			}
			sb.WriteString("<" + tag + label + ">" + RichText(cell) + "</" + tag + ">")
		}
		sb.WriteString("</tr>")

		if isHeaderRow {
			sb.WriteString("</thead>")
		} else if i == len(rows)-1 {
			sb.WriteString("</tbody>")
		}
	}

	sb.WriteString("</table>")
	return nil
}

func (c *Converter) fetchChildren(ctx context.Context, id notionapi.BlockID) []notionapi.Block {
	if c.children == nil {
		return nil
	}
	children, err := c.children.GetChildren(ctx, id)
	if err != nil {
		logger.Error("Failed to fetch child blocks", err, map[string]interface{}{
			"block_id": id,
		})
		return nil
	}
	return children
}
