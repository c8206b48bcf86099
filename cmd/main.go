package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/geminigui/toolhost/internal/config"
	"github.com/geminigui/toolhost/internal/logging"
	"github.com/geminigui/toolhost/internal/server"
	"github.com/geminigui/toolhost/internal/session"
	"github.com/geminigui/toolhost/internal/storage"
	"github.com/geminigui/toolhost/internal/tools"
)

// main bootstraps the toolhost server that backs the GUI agent frontend.
func main() {
	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.ListenAddr, "host:port for the HTTP surface")
	root := flag.String("root", cfg.WorkspaceRoot, "workspace root all file tools are confined to")
	shell := flag.String("shell", cfg.Shell, "interpreter run_command is allowed to execute")
	sessionDB := flag.String("session-db", cfg.SessionDB, "sqlite path for the session archive (empty disables it)")
	logLevel := flag.String("log-level", cfg.LogLevel, "minimum log severity (debug, info, warn, error)")
	flag.Parse()

	log := logging.NewWriter(logging.ParseLevel(*logLevel), os.Stderr)

	store, err := storage.NewOSStore(*root)
	if err != nil {
		log.Error("workspace root unusable", err)
		os.Exit(1)
	}

	var archive session.Archive
	if *sessionDB != "" {
		sqlite, err := session.OpenSQLiteArchive(context.Background(), *sessionDB)
		if err != nil {
			log.Error("session archive unusable", err, logging.F("path", *sessionDB))
			os.Exit(1)
		}
		defer sqlite.Close()
		archive = sqlite
	}
	sessions := session.NewManager(archive, log.With(logging.F("component", "session")))

	registry := tools.NewRegistry()
	toolLog := log.With(logging.F("component", "tools"))
	userAgent := "toolhost/" + server.Version
	for _, tool := range []tools.Tool{
		tools.NewApplyDiffTool(store, toolLog),
		tools.NewReadFileTool(store),
		tools.NewWriteFileTool(store),
		tools.NewDeleteFileTool(store),
		tools.NewMoveFileTool(store),
		tools.NewListDirectoryTool(store),
		tools.NewCreateDirectoryTool(store),
		tools.NewSearchFilesTool(store),
		tools.NewRunCommandTool(store, *shell, cfg.CommandTimeout, toolLog),
		tools.NewFetchTool(&http.Client{}, cfg.FetchTimeout, userAgent),
		tools.NewFileCheckTool(store),
	} {
		if err := registry.Register(tool); err != nil {
			log.Error("tool registration failed", err, logging.F("tool", tool.Name))
			os.Exit(1)
		}
	}

	srv := server.New(server.Options{
		Registry:        registry,
		Sessions:        sessions,
		Log:             log.With(logging.F("component", "http")),
		AuthToken:       cfg.AuthToken,
		MaxRequestBytes: cfg.MaxRequestBytes,
	})

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("toolhost listening",
		logging.F("addr", *addr),
		logging.F("root", store.Root()))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", err)
		os.Exit(1)
	}
}
