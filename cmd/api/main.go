package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/opsdesk/pettycash/internal/archive"
	"github.com/opsdesk/pettycash/internal/cashbox"
	cashboxStore "github.com/opsdesk/pettycash/internal/cashbox/store"
	"github.com/opsdesk/pettycash/internal/config"
	"github.com/opsdesk/pettycash/internal/consolidation"
	"github.com/opsdesk/pettycash/internal/costcenter"
	costcenterStore "github.com/opsdesk/pettycash/internal/costcenter/store"
	"github.com/opsdesk/pettycash/internal/database"
	pettycashHTTP "github.com/opsdesk/pettycash/internal/http"
	cashboxHandler "github.com/opsdesk/pettycash/internal/http/cashbox"
	consolidationHandler "github.com/opsdesk/pettycash/internal/http/consolidation"
	costcenterHandler "github.com/opsdesk/pettycash/internal/http/costcenter"
	importHandler "github.com/opsdesk/pettycash/internal/http/importcsv"
	"github.com/opsdesk/pettycash/internal/importcsv"
	"github.com/opsdesk/pettycash/internal/notify"
	"github.com/opsdesk/pettycash/internal/render"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	boxStore := cashboxStore.New(db)

	var (
		ledgerService     = cashbox.NewService(boxStore, cfg.Ledger.MaxExpenseAmount)
		costCenterService = costcenter.NewService(costcenterStore.New(db))
		importService     = importcsv.NewService(ledgerService, costCenterService)

		consolidationService = consolidation.NewService(
			boxStore,
			render.NewPDF(),
			archive.NewClient(cfg.Archive.BaseURL, cfg.Archive.Token, cfg.Archive.Timeout),
			notify.NewWebhook(cfg.Notify.WebhookURL, cfg.Notify.Timeout),
			cfg.Notify.Recipients,
			cfg.Notify.Timeout,
		)
	)

	// A box stuck in consolidating means a previous attempt failed after the
	// freeze. Flag it so operators resume instead of wondering why expense
	// registration is rejected.
	if status, err := consolidationService.Status(context.Background()); err == nil && status.Incomplete {
		slog.Warn("incomplete consolidation found; resume via POST /api/v1/boxes/{id}/consolidate",
			"box_id", status.ActiveBox.ID)
	}

	var (
		boxesH         = cashboxHandler.NewHandler(ledgerService, cfg.Ledger.ConsumptionThreshold)
		consolidationH = consolidationHandler.NewHandler(consolidationService)
		importH        = importHandler.NewHandler(importService)
		costCentersH   = costcenterHandler.NewHandler(costCenterService)
	)

	router := pettycashHTTP.New(pettycashHTTP.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		JWTSecret:      cfg.Server.JWTSecret,
	}, boxesH, consolidationH, importH, costCentersH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
