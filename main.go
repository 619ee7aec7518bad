package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/config"
	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/ordering"
	"github.com/yeremiapane/restaurant-ordering/router"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

func main() {
	cfg := config.Load()
	utils.InitLogger()
	utils.SetLevel(cfg.LogLevel)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "change-me" {
		utils.ErrorLogger.Warn("JWT_SECRET is not set, using the development default")
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sessions services.SessionStore = services.NewMemorySessionStore()
	if cfg.RedisAddr != "" {
		rdb, err := services.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		sessions = services.NewRedisSessionStore(rdb, cfg.SessionTTL)
		utils.InfoLogger.WithField("addr", cfg.RedisAddr).Info("ordering sessions stored in redis")
	} else {
		utils.InfoLogger.Info("REDIS_ADDR not set, ordering sessions kept in memory")
	}

	mailer := services.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, utils.InfoLogger)
	tables := services.NewTableDirectory(db)
	orders := services.NewOrderStore(db)
	reservations := services.NewReservationService(db, cfg.ReservationDuration, mailer, utils.InfoLogger)
	submitter := ordering.NewSubmitter(orders, mailer, utils.InfoLogger)

	hub := kds.NewHub(utils.InfoLogger)
	monitor := services.NewChangeMonitor(db, hub, utils.ErrorLogger)
	monitor.Interval = cfg.ChangePollInterval
	monitor.Start()
	defer monitor.Stop()

	reaper := services.NewOrderReaper(db, cfg.PendingOrderTTL, cfg.ReaperInterval, utils.InfoLogger)
	reaper.Start()
	defer reaper.Stop()

	go pruneOutbox(ctx, db, cfg.OutboxRetention)

	r := router.SetupRouter(router.Deps{
		DB:                db,
		Tokens:            utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Hub:               hub,
		Tables:            tables,
		Orders:            orders,
		Reservations:      reservations,
		Revenue:           services.NewRevenueService(orders),
		Sessions:          sessions,
		Submitter:         submitter,
		CORSOrigins:       cfg.CORSOrigins,
		RequestsPerMinute: cfg.RateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		utils.InfoLogger.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.WithError(err).Error("server shutdown")
	}
}

// pruneOutbox drops published change rows hourly.
func pruneOutbox(ctx context.Context, db *gorm.DB, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		n, err := database.PruneOutbox(db, retention)
		if err != nil {
			utils.ErrorLogger.WithError(err).Error("prune change outbox")
			continue
		}
		if n > 0 {
			utils.InfoLogger.WithFields(logrus.Fields{"rows": n}).Debug("pruned change outbox")
		}
	}
}
