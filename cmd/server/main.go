package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mariiahub/taxcore/internal/api"
	v1 "github.com/mariiahub/taxcore/internal/api/v1"
	"github.com/mariiahub/taxcore/internal/cache"
	"github.com/mariiahub/taxcore/internal/config"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/postgres"
	"github.com/mariiahub/taxcore/internal/registry"
	"github.com/mariiahub/taxcore/internal/repository"
	"github.com/mariiahub/taxcore/internal/service"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/mariiahub/taxcore/internal/validator"
)

func main() {
	// Load .env if present; config falls back to env vars and defaults
	_ = godotenv.Load()

	validator.NewValidator()

	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Deployment.Mode == types.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to connect to postgres", "error", err)
	}
	defer pool.Close()

	cache.Initialize(log)
	repos := repository.NewRepositories(pool, log)

	params := service.ServiceParams{
		Logger:            log,
		Config:            cfg,
		Cache:             cache.NewInMemoryCache(),
		RegistryClient:    registry.NewHTTPClient(cfg.Registry),
		TaxIdentifierRepo: repos.TaxIdentifier,
		RateRuleRepo:      repos.RateRule,
		CompanyRepo:       repos.Company,
		InvoiceRepo:       repos.Invoice,
		SequenceRepo:      repos.Sequence,
		CorrectionRepo:    repos.Correction,
		RefundPolicyRepo:  repos.RefundPolicy,
		RegisterRepo:      repos.Register,
	}

	taxIDService := service.NewTaxIdentifierService(params)
	rateService := service.NewRateRuleService(params)
	invoiceService := service.NewInvoiceService(params, taxIDService, rateService)
	correctionService := service.NewCorrectionService(params)
	reportService := service.NewReportService(params)

	router := api.NewRouter(api.Handlers{
		TaxIdentifier: v1.NewTaxIdentifierHandler(taxIDService, log),
		RateRule:      v1.NewRateRuleHandler(rateService, log),
		Invoice:       v1.NewInvoiceHandler(invoiceService, log),
		Correction:    v1.NewCorrectionHandler(correctionService, log),
		Report:        v1.NewReportHandler(reportService, log),
	})

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		log.Infow("starting server", "address", cfg.Server.Address, "mode", cfg.Deployment.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown failed", "error", err)
	}
}
