package main

import (
	"fmt"

	"github.com/rodriguezjordyc/website/internal/config"
	"github.com/rodriguezjordyc/website/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	v         = config.New()
	cfg       config.Config
	cfgLoaded bool
)

var rootCmd = &cobra.Command{
	Use:   "website",
	Short: "Notion-backed blog toolkit",
	Long: `Fetches published posts from a Notion database into blog-content.json,
and serves or statically builds the blog from that file or from markdown posts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(v, cfgFile); err != nil {
			return err
		}
		if err := logger.Init(cfg.LogLevel); err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		if err := logger.SetFormat(cfg.LogFormat); err != nil {
			return err
		}
		cfgLoaded = true

		if used := v.ConfigFileUsed(); used != "" {
			logger.Debug("Using config file", map[string]interface{}{
				"path": used,
			})
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = v.BindPFlag("logLevel", rootCmd.PersistentFlags().Lookup("log-level"))
	rootCmd.PersistentFlags().String("source", "json", "post source for serve and build (json, markdown)")
	_ = v.BindPFlag("logFormat", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = v.BindPFlag("blog.source", rootCmd.PersistentFlags().Lookup("source"))
}
