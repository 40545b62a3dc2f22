// ask sends one message to a demo agent and prints the reply.
//
//	go run ./cmd/ask -app code_pipeline_app "write a function that adds two numbers"
//	go run ./cmd/ask -app weather_time_app "东京现在几点?"
//	go run ./cmd/ask -history 5
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/TonyQJH/ADK-AgentTesting/core"
	"github.com/TonyQJH/ADK-AgentTesting/core/store"

	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

func main() {
	app := flag.String("app", core.AppCodePipeline, "app to call: code_pipeline_app, weather_time_app or helpful_app")
	user := flag.String("user", core.DefaultUserID, "user id")
	sessionID := flag.String("session", core.DefaultSessionID, "session id (empty for a new one)")
	history := flag.Int("history", 0, "print the last N archived pipeline runs and exit")
	flag.Parse()

	ctx := context.Background()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		clog.WarnContextf(ctx, "loading .env: %v", err)
	}
	cfg, err := core.LoadConfig(ctx)
	if err != nil {
		clog.FatalContextf(ctx, "loading config: %v", err)
	}

	if *history > 0 {
		if err := printHistory(ctx, os.Stdout, cfg.SessionsDBPath(), *history); err != nil {
			clog.FatalContextf(ctx, "history: %v", err)
		}
		return
	}

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: ask [-app name] [-user id] [-session id] <message>")
		os.Exit(2)
	}

	apps, err := core.BuildApps(ctx, cfg)
	if err != nil {
		clog.FatalContextf(ctx, "building agents: %v", err)
	}
	defer apps.Cleanup()

	r, err := apps.Runner(*app)
	if err != nil {
		clog.FatalContextf(ctx, "%v", err)
	}
	sess, err := core.EnsureSession(ctx, apps.Sessions, *app, *user, *sessionID)
	if err != nil {
		clog.FatalContextf(ctx, "%v", err)
	}

	reply, err := core.CallAgent(ctx, r, *user, sess.ID(), query)
	if err != nil {
		clog.FatalContextf(ctx, "%v", err)
	}
	fmt.Println("Agent response:", reply)
}

func printHistory(ctx context.Context, w io.Writer, dbPath string, n int) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Recent(ctx, n)
	if err != nil {
		return err
	}

	table := tablewriter.NewTable(w, tablewriter.WithHeader([]string{"ID", "When", "Session", "Request", "Refactored"}))
	for _, run := range runs {
		row := []string{
			fmt.Sprint(run.ID),
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.SessionID,
			shorten(run.Request, 40),
			shorten(run.RefactoredCode, 60),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
