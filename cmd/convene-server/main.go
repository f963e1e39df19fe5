// cmd/convene-server/main.go
//
// HTTP front door for the scheduler. Reads settings from the environment
// (plus an optional .env file), loads the roster once, and serves the
// /health and /schedule endpoints until interrupted.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kingrea/convene/internal/roster"
	"github.com/kingrea/convene/internal/runlog"
	"github.com/kingrea/convene/internal/service"
	"github.com/kingrea/convene/internal/solve"
	"github.com/kingrea/convene/internal/solve/backtrack"
)

func main() {
	rosterPath := flag.String("roster", "", "path to the roster file (overrides CONVENE_ROSTER)")
	engineName := flag.String("engine", "backtrack", "solver engine to use")
	runlogPath := flag.String("runlog", "", "append run records to this file")
	flag.Parse()

	// Load .env if one exists alongside the binary or its parent.
	for _, p := range []string{".env", "../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	settings := service.SettingsFromEnv()
	path := settings.RosterPath
	if flagged := strings.TrimSpace(*rosterPath); flagged != "" {
		path = flagged
		settings.RosterPath = flagged
	}
	if path == "" {
		die("roster path required: set CONVENE_ROSTER or pass -roster")
	}
	r, err := roster.Load(path)
	if err != nil {
		die("load roster: %v", err)
	}

	engines := solve.NewRegistry()
	engines.MustRegister("backtrack", func() (solve.Solver, error) {
		return backtrack.New(), nil
	})
	solver, err := engines.Resolve(*engineName)
	if err != nil {
		die("unknown engine %q (available: %s)", *engineName, strings.Join(engines.Names(), ", "))
	}

	opts := []service.Option{
		service.WithSolver(solver),
		service.WithLogger(log.Default()),
	}
	if logPath := strings.TrimSpace(*runlogPath); logPath != "" {
		runLog, err := runlog.Open(logPath)
		if err != nil {
			die("open run log: %v", err)
		}
		defer runLog.Close()
		opts = append(opts, service.WithRunLog(runLog))
	}

	srv := service.NewServer(settings, r, opts...)
	if err := srv.Start(context.Background()); err != nil {
		if errors.Is(err, service.ErrDisabled) {
			die("server disabled: set CONVENE_ENABLED=true to run it")
		}
		die("start server: %v", err)
	}
	log.Printf("convene server listening on %s (roster %s, engine %s)", srv.Addr(), path, *engineName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	stop()

	log.Printf("convene server draining")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		die("shutdown: %v", err)
	}
	log.Printf("convene server stopped")
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
