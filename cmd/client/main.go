// Package main runs the terminal form client: it resumes an unfinished
// submission or starts a new one and walks the user through the steps.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/atinyakov/formresume/internal/client/flow"
	"github.com/atinyakov/formresume/internal/client/gateway"
	"github.com/atinyakov/formresume/internal/client/prompt"
	"github.com/atinyakov/formresume/internal/client/resume"
	"github.com/atinyakov/formresume/internal/client/storage"
	"github.com/atinyakov/formresume/internal/logger"
	"github.com/atinyakov/formresume/internal/refdata"
	"github.com/atinyakov/formresume/internal/steps"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags and runs the form.
func main() {
	var (
		baseURL   string
		page      string
		plan      string
		storePath string
		logLevel  string
		showVer   bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "form proxy base URL")
	flag.StringVar(&page, "page", "http://localhost:8080/subscribe", "form page URL, may carry ?resume=<token>")
	flag.StringVar(&plan, "plan", "free", "plan: free | paid")
	flag.StringVar(&storePath, "store", ".formsession.json", "path to the local session file")
	flag.StringVar(&logLevel, "log-level", "warn", "log level")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Form Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	var paid bool
	switch plan {
	case "free":
	case "paid":
		paid = true
	default:
		fmt.Fprintf(os.Stderr, "unknown plan: %s\n", plan)
		os.Exit(2)
	}

	log := logger.New()
	if err := log.Init(logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	var kv storage.KV
	fileKV, err := storage.OpenFileKV(storePath)
	if err != nil {
		zapLogger.Warn("session file unreadable, progress will not persist", zap.Error(err))
		kv = storage.NewMemoryKV()
	} else {
		kv = fileKV
	}
	store := storage.NewSessionStore(kv, steps.Final(paid), zapLogger)

	loc, err := resume.NewPageLocation(page)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid page URL: %v\n", err)
		os.Exit(2)
	}

	gw := gateway.New(baseURL, nil, zapLogger)
	runner := &flow.Runner{
		Orch:      resume.New(store, gw, loc, zapLogger),
		Submitter: gw,
		RefData:   refdata.NewCache(gw, nil, zapLogger),
		Prompt:    prompt.New(os.Stdin, os.Stdout),
		Out:       os.Stdout,
		Paid:      paid,
		Log:       zapLogger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = runner.Run(ctx)
	fmt.Println("Page:", loc.URL())
	switch {
	case err == nil:
	case errors.Is(err, prompt.ErrNoInput):
		fmt.Println("Progress saved. Run again to continue.")
	case errors.Is(err, flow.ErrDeclined):
		fmt.Println("Checkout declined. Run again to continue.")
	default:
		zapLogger.Error("form client failed", zap.Error(err))
		os.Exit(1)
	}
}
