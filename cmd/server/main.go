package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"admitflow/internal/admitcard"
	apphandler "admitflow/internal/application/handler"
	appservice "admitflow/internal/application/service"
	appstore "admitflow/internal/application/store"
	"admitflow/internal/auth"
	coursehandler "admitflow/internal/course/handler"
	courseservice "admitflow/internal/course/service"
	coursestore "admitflow/internal/course/store"
	docreqhandler "admitflow/internal/docrequest/handler"
	docreqservice "admitflow/internal/docrequest/service"
	docreqstore "admitflow/internal/docrequest/store"
	"admitflow/internal/events"
	"admitflow/internal/files"
	"admitflow/internal/merit"
	notifhandler "admitflow/internal/notification/handler"
	notifservice "admitflow/internal/notification/service"
	notifstore "admitflow/internal/notification/store"
	"admitflow/internal/payment"
	"admitflow/internal/platform/config"
	"admitflow/internal/platform/httpserver"
	"admitflow/internal/platform/logger"
	"admitflow/internal/platform/metrics"
	"admitflow/internal/platform/redis"
	transport "admitflow/internal/transport/http"
	"admitflow/internal/verification"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DB.Timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return err
	}
	if err := migrate(ctx, db); err != nil {
		return err
	}

	cache, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	fileStore, err := files.NewStore(cfg.Files.Root)
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.Events.Brokers) > 0 {
		kafka, err := events.NewKafka(cfg.Events.Brokers, cfg.Events.Topic)
		if err != nil {
			return err
		}
		defer kafka.Close()
		publisher = kafka
	}

	m := metrics.New()

	accounts, err := auth.ParseAccounts(cfg.Auth.Actors)
	if err != nil {
		return err
	}
	authSvc := auth.New(accounts, cfg.Auth.JWTSigningKey, cfg.Auth.TokenTTL, auth.WithLogger(log))

	applications := appstore.NewPostgres(db)
	appSvc := appservice.New(applications,
		appservice.WithLogger(log),
		appservice.WithMetrics(m),
		appservice.WithPublisher(publisher),
	)

	verifSvc := verification.New(applications,
		verification.WithLogger(log),
		verification.WithMetrics(m),
		verification.WithPublisher(publisher),
	)

	meritSvc := merit.New(applications)

	var catalog coursestore.Catalog = coursestore.NewPostgres(db)
	if cache != nil {
		catalog = coursestore.NewCached(catalog, cache, cfg.Redis.CatalogTTL, log)
	}
	courseSvc := courseservice.New(catalog, courseservice.WithLogger(log))

	notifSvc := notifservice.New(notifstore.NewPostgres(db),
		notifservice.WithLogger(log),
		notifservice.WithMetrics(m),
		notifservice.WithPublisher(publisher),
		notifservice.WithScopedReads(cfg.Notify.Scoped),
	)

	gateway := payment.NewRazorpayGateway(cfg.Payment.KeyID, cfg.Payment.KeySecret)
	paySvc := payment.New(
		payment.Config{
			KeySecret: cfg.Payment.KeySecret,
			FeePaise:  cfg.Payment.FeePaise,
			Currency:  cfg.Payment.Currency,
		},
		gateway,
		applications,
		payment.WithLogger(log),
		payment.WithMetrics(m),
		payment.WithPublisher(publisher),
		payment.WithNotifier(notifSvc),
		payment.WithReceipts(payment.NewPDFReceiptRenderer(), fileStore),
	)

	cardSvc := admitcard.New(applications, catalog, admitcard.NewPDFRenderer(), fileStore,
		admitcard.WithLogger(log),
		admitcard.WithMetrics(m),
		admitcard.WithPublisher(publisher),
	)

	docreqSvc := docreqservice.New(docreqstore.NewPostgres(db), applications,
		docreqservice.WithLogger(log),
		docreqservice.WithMetrics(m),
		docreqservice.WithPublisher(publisher),
	)

	router := transport.NewRouter(transport.Dependencies{
		Logger:         log,
		Validator:      authSvc,
		Applications:   apphandler.New(appSvc, fileStore, log),
		Verification:   verification.NewHandler(verifSvc),
		Merit:          merit.NewHandler(meritSvc),
		Payments:       payment.NewHandler(paySvc),
		AdmitCards:     admitcard.NewHandler(cardSvc),
		DocRequests:    docreqhandler.New(docreqSvc, fileStore, log),
		Notifications:  notifhandler.New(notifSvc),
		Courses:        coursehandler.New(courseSvc),
		Auth:           auth.NewHandler(authSvc),
		DB:             db,
		Redis:          cache,
		UploadRoot:     fileStore.Root(),
		RequestTimeout: 30 * time.Second,
	})

	server := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// migrate applies the per-vertical schemas. Statements are idempotent.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, schema := range []string{
		appstore.Schema,
		docreqstore.Schema,
		notifstore.Schema,
		coursestore.Schema,
	} {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			return err
		}
	}
	return nil
}
