// Command cratesrv runs the object-storage server. It takes no
// subcommands; flags are optional overrides of reasonable defaults, and
// configuration loading itself stays outside the core (§6, §10) — this
// file is the thin external collaborator that assembles a config.Config
// and hands it to internal/server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"crate/internal/config"
	"crate/internal/httpio"
	"crate/internal/server"
	"crate/internal/sigv4"
)

func run(ctx context.Context) error {
	listenAddr := flag.String("listen", ":9000", "HTTP listen address")
	dataDir := flag.String("data-dir", "./data", "directory to store object data")
	accessKey := flag.String("access-key", "minioadmin", "SigV4 access key")
	secretKey := flag.String("secret-key", "minioadmin", "SigV4 secret key")
	region := flag.String("region", "us-east-1", "SigV4 region this server signs for")
	flag.Parse()

	handler := charmlog.NewWithOptions(os.Stdout, charmlog.Options{
		Level:           charmlog.InfoLevel,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: true,
		TimeFunction:    charmlog.NowUTC,
		ReportCaller:    true,
	})
	slog.SetDefault(slog.New(handler))

	absDataDir, err := filepath.Abs(*dataDir)
	if err != nil {
		return fmt.Errorf("resolve data directory: %w", err)
	}

	cfg := config.New(
		config.WithDataDir(absDataDir),
		config.WithListenAddr(*listenAddr),
		config.WithRegion(*region),
		config.WithCredential(sigv4.Credential{AccessKeyID: *accessKey, SecretAccessKey: *secretKey}),
	)

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		MaxHeaderBytes:    httpio.MaxHeaderSize,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	eg.Go(func() error {
		slog.Info("crate started", "addr", cfg.ListenAddr, "data_dir", cfg.DataDir)
		err := httpServer.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return eg.Wait()
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("crate exited with error", "error", err)
		os.Exit(1)
	}
}
