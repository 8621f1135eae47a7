package main

import (
	"fmt"
	"os"

	"github.com/askhat/rentflow/internal/auth"
	"github.com/askhat/rentflow/internal/config"
	"github.com/askhat/rentflow/internal/db"
	"github.com/askhat/rentflow/internal/excel"
	httphandler "github.com/askhat/rentflow/internal/http"
	"github.com/askhat/rentflow/internal/http/middleware"
	"github.com/askhat/rentflow/internal/logger"
	"github.com/askhat/rentflow/internal/pdf"
	"github.com/askhat/rentflow/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	excelGenerator := excel.NewGenerator()

	billingService := service.NewBillingService(database, cfg, log)
	invoiceService := service.NewInvoiceService(database, pdfGenerator, excelGenerator, cfg, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(billingService, invoiceService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting rentflow service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
