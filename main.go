package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/TonyQJH/ADK-AgentTesting/core"

	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/adk/cmd/launcher"
	"google.golang.org/adk/cmd/launcher/full"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		clog.WarnContextf(ctx, "loading .env: %v", err)
	}

	cfg, err := core.LoadConfig(ctx)
	if err != nil {
		clog.FatalContextf(ctx, "loading config: %v", err)
	}

	apps, err := core.BuildApps(ctx, cfg)
	if err != nil {
		clog.FatalContextf(ctx, "building agents: %v", err)
	}
	defer apps.Cleanup()

	loader, err := apps.Loader()
	if err != nil {
		clog.FatalContextf(ctx, "agent loader: %v", err)
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	config := &launcher.Config{
		AgentLoader:    loader,
		SessionService: apps.Sessions,
	}
	l := full.NewLauncher()
	if err = l.Execute(ctx, config, os.Args[1:]); err != nil {
		clog.FatalContextf(ctx, "run failed: %v\n\n%s", err, l.CommandLineSyntax())
	}
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	clog.InfoContextf(ctx, "metrics: listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		clog.WarnContextf(ctx, "metrics server: %v", err)
	}
}
