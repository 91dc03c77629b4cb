package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zalepa/agencydash/web"
)

func newServeCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	f := c.Flags()
	f.String("host", "127.0.0.1", "listen host")
	f.Int("port", 8050, "listen port")
	f.Int("columns", 3, "charts per grid row")
	f.String("title", web.DefaultConfig().Title, "page title")
	bindFlags(a.v, f, map[string]string{
		"host":    "host",
		"port":    "port",
		"columns": "columns",
		"title":   "title",
	})
	return c
}

func (a *app) serve(ctx context.Context) error {
	t, err := a.loadTable(ctx)
	if err != nil {
		return err
	}
	s := a.settings()

	h, err := web.NewHandler(t, web.Config{
		Title:      s.Title,
		FooterHTML: s.FooterHTML,
		Columns:    s.Columns,
		Options:    s.renderOptions(),
	}, a.log)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	srv := &http.Server{
		Addr:         addr,
		Handler:      web.Routes(h),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errc := make(chan error, 1)
	go func() {
		a.log.Info("serving dashboard", zap.String("url", "http://"+addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-done:
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.log.Info("server stopped")
	return nil
}
