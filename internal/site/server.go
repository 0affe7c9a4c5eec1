package site

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"time"

	"github.com/rodriguezjordyc/website/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Serve runs handler on addr until ctx is cancelled, then shuts down gracefully
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	errorLog := logger.Writer()
	defer errorLog.Close()

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     stdlog.New(errorLog, "", 0),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", map[string]interface{}{
			"addr": addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
