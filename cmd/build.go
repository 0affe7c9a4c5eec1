package main

import (
	"fmt"

	"github.com/rodriguezjordyc/website/internal/logger"
	"github.com/rodriguezjordyc/website/internal/site"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the blog as static HTML",
	Long: `Renders the index and one page per post into the build directory and
copies the content file and images next to them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := site.New(newLibrary(cfg), siteOptions(cfg))
		if err != nil {
			return err
		}

		count, err := s.Build(cmd.Context(), cfg.Blog.BuildDir)
		if err != nil {
			return fmt.Errorf("failed to build site: %w", err)
		}

		logger.Info("Build completed", map[string]interface{}{
			"posts":  count,
			"output": cfg.Blog.BuildDir,
		})
		return nil
	},
}

func init() {
	buildCmd.Flags().String("out", "", "output directory (default public)")
	_ = v.BindPFlag("blog.buildDir", buildCmd.Flags().Lookup("out"))
	rootCmd.AddCommand(buildCmd)
}
