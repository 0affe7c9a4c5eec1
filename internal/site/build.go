package site

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rodriguezjordyc/website/internal/logger"
)

// Build writes the blog as static pages under outDir: index.html plus
// post/<slug>/index.html for every post, next to copies of the images,
// the content file and any markdown post assets. It returns the number of
// post pages written.
func (s *Site) Build(ctx context.Context, outDir string) (int, error) {
	posts, err := s.lib.Posts(ctx)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	var buf bytes.Buffer
	if err := s.views.index(&buf, ThemeDark, false, posts); err != nil {
		return 0, fmt.Errorf("failed to render index: %w", err)
	}
	if err := writePage(filepath.Join(outDir, "index.html"), &buf); err != nil {
		return 0, err
	}

	written := 0
	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if !safeSlug(post.Slug) {
			logger.Warn("Skipping post with unusable slug", map[string]interface{}{
				"slug": post.Slug,
			})
			continue
		}

		buf.Reset()
		if err := s.views.post(&buf, ThemeDark, false, post); err != nil {
			return written, fmt.Errorf("failed to render post %s: %w", post.Slug, err)
		}
		if err := writePage(filepath.Join(outDir, "post", post.Slug, "index.html"), &buf); err != nil {
			return written, err
		}
		written++
	}

	if s.opts.ImagesDir != "" {
		if err := copyDir(s.opts.ImagesDir, filepath.Join(outDir, filepath.FromSlash(s.opts.ImagesPublicPath)), nil); err != nil {
			return written, fmt.Errorf("failed to copy images: %w", err)
		}
	}
	if s.opts.PostsDir != "" {
		skipMarkdown := func(path string) bool {
			return strings.EqualFold(filepath.Ext(path), ".md")
		}
		if err := copyDir(s.opts.PostsDir, filepath.Join(outDir, filepath.FromSlash(s.opts.PostsURLPrefix)), skipMarkdown); err != nil {
			return written, fmt.Errorf("failed to copy post assets: %w", err)
		}
	}
	if s.opts.ContentFile != "" {
		if _, err := os.Stat(s.opts.ContentFile); err == nil {
			if err := copyFile(s.opts.ContentFile, filepath.Join(outDir, "blog-content.json")); err != nil {
				return written, err
			}
		}
	}

	logger.Info("Static site built", map[string]interface{}{
		"output": outDir,
		"posts":  written,
	})
	return written, nil
}

func safeSlug(slug string) bool {
	return slug != "" && slug != "." && slug != ".." && !strings.ContainsAny(slug, `/\`)
}

func writePage(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// copyDir copies src into dst. A missing src is not an error, and nothing
// is copied when both name the same directory.
func copyDir(src, dst string, skip func(string) bool) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	if same(src, dst) {
		return nil
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if same(path, dst) {
				return filepath.SkipDir
			}
			return os.MkdirAll(target, 0755)
		}
		if skip != nil && skip(path) {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

func same(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
