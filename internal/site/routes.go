package site

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rodriguezjordyc/website/internal/logger"
)

const themeCookie = "theme"

// Handler returns the HTTP routes of the blog
func (s *Site) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", health)

	if s.opts.ContentFile != "" {
		withCors := r.With(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CorsAllowedOrigins,
			AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		withCors.Get("/blog-content.json", s.handleContent)
		withCors.Options("/blog-content.json", func(w http.ResponseWriter, r *http.Request) {})
	}
	if s.opts.ImagesDir != "" {
		fileServer(r, "/"+s.opts.ImagesPublicPath, s.opts.ImagesDir)
	}
	if s.opts.PostsDir != "" {
		fileServer(r, "/"+s.opts.PostsURLPrefix, s.opts.PostsDir)
	}

	r.Get("/", s.handleIndex)
	r.Get("/post/{slug}", s.handlePost)
	r.Get("/theme", s.handleTheme)
	r.Post("/theme", s.handleTheme)
	r.NotFound(s.handleNotFound)

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Site) handleIndex(w http.ResponseWriter, r *http.Request) {
	theme := themeFrom(r)

	posts, err := s.lib.Posts(r.Context())
	if err != nil {
		s.write(w, http.StatusServiceUnavailable, func(buf io.Writer) error {
			return s.views.message(buf, theme, true, "", s.views.unavailable())
		})
		return
	}

	s.write(w, http.StatusOK, func(buf io.Writer) error {
		return s.views.index(buf, theme, true, posts)
	})
}

func (s *Site) handlePost(w http.ResponseWriter, r *http.Request) {
	theme := themeFrom(r)
	slug := chi.URLParam(r, "slug")

	post, ok, err := s.lib.Post(r.Context(), slug)
	switch {
	case err != nil:
		s.write(w, http.StatusServiceUnavailable, func(buf io.Writer) error {
			return s.views.message(buf, theme, true, "", s.views.unavailable())
		})
	case !ok:
		logger.Debug("Post not found", map[string]interface{}{
			"slug": slug,
		})
		s.write(w, http.StatusNotFound, func(buf io.Writer) error {
			return s.views.message(buf, theme, true, "", MessageNotFound)
		})
	default:
		s.write(w, http.StatusOK, func(buf io.Writer) error {
			return s.views.post(buf, theme, true, post)
		})
	}
}

func (s *Site) handleNotFound(w http.ResponseWriter, r *http.Request) {
	theme := themeFrom(r)
	s.write(w, http.StatusNotFound, func(buf io.Writer) error {
		return s.views.message(buf, theme, true, "", MessageNotFound)
	})
}

func (s *Site) handleContent(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(s.opts.ContentFile); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, s.opts.ContentFile)
}

// handleTheme flips the theme cookie and sends the reader back where they came from
func (s *Site) handleTheme(w http.ResponseWriter, r *http.Request) {
	next := ThemeLight
	if themeFrom(r) == ThemeLight {
		next = ThemeDark
	}

	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (s *Site) write(w http.ResponseWriter, status int, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		logger.Error("Failed to render page", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func themeFrom(r *http.Request) string {
	c, err := r.Cookie(themeCookie)
	if err == nil && c.Value == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// backTo returns the same-site page in the Referer header, or "/"
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return "/"
	}
	return ref.RequestURI()
}

// fileServer serves dir under prefix without directory listings
func fileServer(r chi.Router, prefix, dir string) {
	if prefix == "/" {
		return
	}
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, "/") {
			http.NotFound(w, req)
			return
		}
		// Rooted before cleaning so ".." cannot leave dir
		name := path.Clean("/" + strings.TrimPrefix(req.URL.Path, prefix))
		if fi, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err == nil && fi.IsDir() {
			http.NotFound(w, req)
			return
		}
		fs.ServeHTTP(w, req)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logger.Info("Request handled", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			})
		}()
		next.ServeHTTP(ww, r)
	})
}
