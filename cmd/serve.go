package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rodriguezjordyc/website/internal/config"
	"github.com/rodriguezjordyc/website/internal/logger"
	"github.com/rodriguezjordyc/website/internal/site"
	"github.com/spf13/cobra"
)

const watchDebounce = 500 * time.Millisecond

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blog over HTTP",
	Long: `Serves the blog index and post pages, the content file and downloaded
images. With server.watch enabled, posts are reloaded when the content file
or the markdown posts change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		lib := newLibrary(cfg)
		s, err := site.New(lib, siteOptions(cfg))
		if err != nil {
			return err
		}

		if cfg.Server.Watch {
			w := &site.Watcher{
				Debounce: watchDebounce,
				OnChange: func() {
					logger.Info("Content changed, reloading posts")
					lib.Invalidate()
				},
			}
			switch {
			case cfg.Blog.Source == config.SourceMarkdown:
				w.Dirs = []string{cfg.Blog.PostsDir}
			case cfg.Blog.ContentURL == "":
				w.Files = []string{cfg.Output.ContentFile}
			}
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Error("File watcher stopped", err)
				}
			}()
		}

		return site.Serve(ctx, cfg.Server.Addr, s.Handler())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "address to listen on (default :8080)")
	serveCmd.Flags().Bool("watch", true, "reload posts when content changes")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("server.watch", serveCmd.Flags().Lookup("watch"))
	rootCmd.AddCommand(serveCmd)
}
