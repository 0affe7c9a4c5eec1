package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultDatabaseID is the Notion database holding the blog posts
const DefaultDatabaseID = "24f79889bbb181c1a483dc5ddca87241"

// Config is the full application configuration
type Config struct {
	LogLevel  string `mapstructure:"logLevel"`
	LogFormat string `mapstructure:"logFormat"`
	Notion    Notion `mapstructure:"notion"`
	Output    Output `mapstructure:"output"`
	Blog      Blog   `mapstructure:"blog"`
	Server    Server `mapstructure:"server"`
}

// Notion holds the content database settings
type Notion struct {
	APIKey      string        `mapstructure:"apiKey"`
	DatabaseID  string        `mapstructure:"databaseId"`
	StatusValue string        `mapstructure:"status"`
	BlogTypes   []string      `mapstructure:"blogTypes"`
	Retries     int           `mapstructure:"retries"`
	RetryDelay  time.Duration `mapstructure:"retryDelay"`
}

// Output controls where fetched content lands
type Output struct {
	ContentFile      string        `mapstructure:"contentFile"`
	ImagesDir        string        `mapstructure:"imagesDir"`
	ImagesPublicPath string        `mapstructure:"imagesPublicPath"`
	ImageTimeout     time.Duration `mapstructure:"imageTimeout"`
}

// Blog configures the viewer
type Blog struct {
	Source         string        `mapstructure:"source"`
	ContentURL     string        `mapstructure:"contentUrl"`
	PostsDir       string        `mapstructure:"postsDir"`
	PostFiles      []string      `mapstructure:"postFiles"`
	PostsURLPrefix string        `mapstructure:"postsUrlPrefix"`
	SiteTitle      string        `mapstructure:"siteTitle"`
	AboutURL       string        `mapstructure:"aboutUrl"`
	BuildDir       string        `mapstructure:"buildDir"`
	FetchTimeout   time.Duration `mapstructure:"fetchTimeout"`
}

// Server configures the HTTP listener
type Server struct {
	Addr               string   `mapstructure:"addr"`
	Watch              bool     `mapstructure:"watch"`
	CorsAllowedOrigins []string `mapstructure:"corsAllowedOrigins"`
}

const (
	SourceJSON     = "json"
	SourceMarkdown = "markdown"
)

// New returns a viper instance with every default registered
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "text")

	v.SetDefault("notion.databaseId", DefaultDatabaseID)
	v.SetDefault("notion.status", "Published")
	v.SetDefault("notion.blogTypes", []string{"Personal", "Modern Stewardship"})
	v.SetDefault("notion.retries", 3)
	v.SetDefault("notion.retryDelay", time.Second)

	v.SetDefault("output.contentFile", "blog-content.json")
	v.SetDefault("output.imagesDir", "images")
	v.SetDefault("output.imagesPublicPath", "images")
	v.SetDefault("output.imageTimeout", 30*time.Second)

	v.SetDefault("blog.source", SourceJSON)
	v.SetDefault("blog.postsDir", "posts")
	v.SetDefault("blog.postsUrlPrefix", "posts")
	v.SetDefault("blog.siteTitle", "jordy rodriguez")
	v.SetDefault("blog.aboutUrl", "")
	v.SetDefault("blog.buildDir", "public")
	v.SetDefault("blog.fetchTimeout", 10*time.Second)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.watch", true)
	v.SetDefault("server.corsAllowedOrigins", []string{"*"})

	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names used by the deployment environment
	_ = v.BindEnv("notion.apiKey", "NOTION_API_KEY", "BLOG_NOTION_APIKEY")
	_ = v.BindEnv("notion.databaseId", "NOTION_DATABASE_ID", "BLOG_NOTION_DATABASEID")
	_ = v.BindEnv("logLevel", "LOG_LEVEL", "BLOG_LOGLEVEL")
	_ = v.BindEnv("output.contentFile", "OUTPUT_FILE", "BLOG_OUTPUT_CONTENTFILE")

	return v
}

// Load reads .env, the optional config file and the environment.
// An empty cfgFile means ./config.yaml when present.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	_ = godotenv.Load()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks values that have no sensible fallback
func (c Config) Validate() error {
	switch c.Blog.Source {
	case SourceJSON, SourceMarkdown:
	default:
		return fmt.Errorf("blog.source must be %q or %q, got %q", SourceJSON, SourceMarkdown, c.Blog.Source)
	}
	if c.Notion.Retries < 1 {
		return fmt.Errorf("notion.retries must be at least 1, got %d", c.Notion.Retries)
	}
	return nil
}
