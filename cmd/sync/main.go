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

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/app"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/ingest"

	"github.com/goccy/go-json"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		campaigns = flag.Bool("campaigns", false, "sync campaigns")
		leads     = flag.Bool("leads", false, "sync leads")
		accounts  = flag.String("accounts", "", "comma-separated ad account ids, overrides META_AD_ACCOUNT_IDS")
		forms     = flag.String("forms", "", "comma-separated form ids, overrides META_FORM_IDS")
		since     = flag.String("since", "", "RFC3339 watermark, overrides META_LEADS_SINCE")
		xlsxDir   = flag.String("xlsx", "", "directory to write each run's summary workbook to")
	)
	flag.Parse()
	if !*campaigns && !*leads {
		*campaigns, *leads = true, true
	}

	opts := ingest.Options{
		AccountIDs: splitList(*accounts),
		FormIDs:    splitList(*forms),
	}
	if *since != "" {
		t, err := time.Parse(time.RFC3339, *since)
		if err != nil {
			log.Printf("invalid -since: %v", err)
			return 2
		}
		opts.Since = t
	}

	var (
		svc    ingest.IngestService
		logger *zap.Logger
	)
	fxApp := fx.New(
		app.Core,
		fx.Invoke(app.InitializeIndexes),
		fx.Populate(&svc, &logger),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		log.Printf("startup failed: %v", err)
		return 1
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = fxApp.Stop(stopCtx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	type job struct {
		enabled bool
		fn      func(context.Context, ingest.Options) (*ingest.SyncSummary, error)
	}
	failed := false
	for _, r := range []job{{*campaigns, svc.SyncCampaigns}, {*leads, svc.SyncLeads}} {
		if !r.enabled {
			continue
		}
		summary, err := r.fn(ctx, opts)
		if err != nil {
			logger.Error("Sync could not start", zap.Error(err))
			failed = true
			continue
		}
		if err := report(summary, *xlsxDir); err != nil {
			logger.Error("Failed to report summary", zap.Error(err))
			failed = true
		}
		if len(summary.Errors) > 0 {
			failed = true
		}
	}

	if failed {
		return 1
	}
	return 0
}

func report(summary *ingest.SyncSummary, xlsxDir string) error {
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if xlsxDir == "" {
		return nil
	}
	data, err := ingest.ExportSummaryXLSX(summary)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("%s/sync_%s_%s.xlsx", strings.TrimRight(xlsxDir, "/"), summary.Kind, summary.RunID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Join(errors.New("write workbook"), err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
