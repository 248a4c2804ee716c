package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/lifelink-health/portal/pkg/admin"
	"github.com/lifelink-health/portal/pkg/appointment"
	"github.com/lifelink-health/portal/pkg/audit"
	"github.com/lifelink-health/portal/pkg/blobstore"
	"github.com/lifelink-health/portal/pkg/common/config"
	"github.com/lifelink-health/portal/pkg/common/database"
	"github.com/lifelink-health/portal/pkg/common/kafka"
	"github.com/lifelink-health/portal/pkg/common/logger"
	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/donor"
	"github.com/lifelink-health/portal/pkg/gateway/auth"
	"github.com/lifelink-health/portal/pkg/gateway/middleware"
	"github.com/lifelink-health/portal/pkg/geography"
	"github.com/lifelink-health/portal/pkg/hospital"
	"github.com/lifelink-health/portal/pkg/identity"
	"github.com/lifelink-health/portal/pkg/observability/metrics"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	redisClient := database.GetRedis()

	identityRepo := identity.NewRepository(db)
	hospitalRepo := hospital.NewRepository(db)
	donorRepo := donor.NewRepository(db)
	appointmentRepo := appointment.NewRepository(db)
	auditRepo := audit.NewRepository(db)

	for name, migrate := range map[string]func() error{
		"identity":     identityRepo.AutoMigrate,
		"hospitals":    hospitalRepo.AutoMigrate,
		"records":      donorRepo.AutoMigrate,
		"appointments": appointmentRepo.AutoMigrate,
		"audit":        auditRepo.AutoMigrate,
	} {
		if err := migrate(); err != nil {
			logger.Log.WithError(err).WithField("tables", name).Fatal("failed to migrate")
		}
	}

	catalog := geography.DefaultCatalog()
	if cfg.GeographyCatalog != "" {
		catalog, err = geography.Load(cfg.GeographyCatalog)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to load geography catalog")
		}
	}

	store, err := blobstore.New(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to blob storage")
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		logger.Log.WithError(err).Fatal("failed to ensure license bucket")
	}

	producer := kafka.NewProducer(cfg.AuditTopic)
	defer producer.Close()
	auditor := audit.NewKafkaPublisher(producer, "portal-server")

	tokens, err := identity.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.SessionTTL)
	if err != nil {
		logger.Log.WithError(err).Fatal("invalid token configuration")
	}
	sessions := identity.NewSessionStore(redisClient, cfg.SessionTTL)

	identityService := identity.NewService(identityRepo, hospitalRepo)
	hospitalService := hospital.NewService(hospitalRepo, identityService, store, catalog, auditor)
	donorService := donor.NewService(db, donorRepo, appointmentRepo, hospitalService,
		donor.NewReapplyGate(cfg.ReapplyCoolDownDays), auditor)
	appointmentService := appointment.NewService(appointmentRepo, donorRepo, auditor)
	adminService := admin.NewService(hospitalService, donorService, appointmentService, identityService, auditRepo)

	identityHandler := identity.NewHandler(identityService, tokens, sessions)
	hospitalHandler := hospital.NewHandler(hospitalService)
	donorHandler := donor.NewHandler(donorService)
	appointmentHandler := appointment.NewHandler(appointmentService)
	adminHandler := admin.NewHandler(adminService)

	validator := auth.NewValidator(tokens, sessions)
	authenticate := middleware.Authenticate(validator, identityService)

	router := mux.NewRouter()
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Public surface: signup, login, hospital registration and the donor
	// form's picker sources.
	identityHandler.Register(api)
	hospitalHandler.Register(api)

	authed := api.PathPrefix("/auth").Subrouter()
	authed.Use(authenticate)
	identityHandler.RegisterProtected(authed)

	donorArea := api.PathPrefix("/donor").Subrouter()
	donorArea.Use(authenticate, middleware.Guard(models.RoleDonor))
	donorHandler.RegisterDonor(donorArea)
	appointmentHandler.RegisterDonor(donorArea)

	doctorArea := api.PathPrefix("/doctor").Subrouter()
	doctorArea.Use(authenticate, middleware.Guard(models.RoleDoctor))
	hospitalHandler.RegisterDoctor(doctorArea)
	donorHandler.RegisterDoctor(doctorArea)
	appointmentHandler.RegisterDoctor(doctorArea)

	adminArea := api.PathPrefix("/admin").Subrouter()
	adminArea.Use(authenticate, middleware.Guard(models.RoleAdmin))
	hospitalHandler.RegisterAdmin(adminArea)
	donorHandler.RegisterAdmin(adminArea)
	appointmentHandler.RegisterAdmin(adminArea)
	adminHandler.Register(adminArea)

	address := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("addr", address).Info("portal server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start portal server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down portal server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("portal server forced to shutdown")
	}
	logger.Log.Info("portal server stopped")
}
