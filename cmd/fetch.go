package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rodriguezjordyc/website/internal/config"
	"github.com/rodriguezjordyc/website/internal/fetcher"
	"github.com/rodriguezjordyc/website/internal/images"
	"github.com/rodriguezjordyc/website/internal/logger"
	"github.com/rodriguezjordyc/website/internal/notion"
	"github.com/rodriguezjordyc/website/internal/render"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch published posts from Notion into the content file",
	Long: `Queries the Notion database for published posts, converts their blocks to
HTML, downloads referenced images and writes blog-content.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runFetch(ctx, cfg)
	},
}

func runFetch(ctx context.Context, cfg config.Config) error {
	client, err := notion.New(cfg.Notion)
	if err != nil {
		return fmt.Errorf("failed to initialize Notion client: %w", err)
	}

	cache := images.New(cfg.Output.ImagesDir, cfg.Output.ImagesPublicPath, cfg.Output.ImageTimeout)
	converter := render.NewConverter(client, cache)
	svc := fetcher.New(client, converter, cfg.Notion.StatusValue, cfg.Notion.BlogTypes, time.Now)

	logger.Info("Fetching blog content from Notion", map[string]interface{}{
		"database_id": cfg.Notion.DatabaseID,
		"blog_types":  cfg.Notion.BlogTypes,
	})

	count, err := svc.Run(ctx, cfg.Output.ContentFile)
	if err != nil {
		return fmt.Errorf("failed to fetch blog content: %w", err)
	}

	logger.Info("Fetch completed", map[string]interface{}{
		"posts":  count,
		"output": cfg.Output.ContentFile,
		"images": cfg.Output.ImagesDir,
	})
	return nil
}

func init() {
	fetchCmd.Flags().StringP("output", "o", "", "content file to write (default blog-content.json)")
	fetchCmd.Flags().String("images-dir", "", "directory for downloaded images (default images)")
	_ = v.BindPFlag("output.contentFile", fetchCmd.Flags().Lookup("output"))
	_ = v.BindPFlag("output.imagesDir", fetchCmd.Flags().Lookup("images-dir"))
	rootCmd.AddCommand(fetchCmd)
}
