package blog

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rodriguezjordyc/website/internal/logger"
	"github.com/rodriguezjordyc/website/internal/models"
	"github.com/rodriguezjordyc/website/internal/parser"
)

// MarkdownSource renders markdown post files from a directory
type MarkdownSource struct {
	root   string
	files  []string
	parser *parser.Parser
}

// NewMarkdownSource reads files (relative to root), or every .md file under
// root when files is empty.
func NewMarkdownSource(root string, files []string, p *parser.Parser) *MarkdownSource {
	return &MarkdownSource{
		root:   root,
		files:  files,
		parser: p,
	}
}

func (s *MarkdownSource) Load(ctx context.Context) ([]models.Post, error) {
	files := s.files
	if len(files) == 0 {
		var err error
		if files, err = s.discover(); err != nil {
			return nil, err
		}
	}

	posts := make([]models.Post, 0, len(files))
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		post, err := s.parser.ParseFile(s.root, rel)
		if err != nil {
			logger.Error("Skipping markdown post", err, map[string]interface{}{
				"filepath": rel,
			})
			continue
		}
		posts = append(posts, post)
	}

	models.SortByDate(posts)
	return posts, nil
}

func (s *MarkdownSource) discover() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	return files, err
}
