package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/kisumu-dev/referral-dispatch/internal/auth"
	"github.com/kisumu-dev/referral-dispatch/internal/config"
	"github.com/kisumu-dev/referral-dispatch/internal/cost"
	"github.com/kisumu-dev/referral-dispatch/internal/db"
	"github.com/kisumu-dev/referral-dispatch/internal/directory"
	"github.com/kisumu-dev/referral-dispatch/internal/dispatch"
	"github.com/kisumu-dev/referral-dispatch/internal/fleet"
	"github.com/kisumu-dev/referral-dispatch/internal/handlers"
	"github.com/kisumu-dev/referral-dispatch/internal/middleware"
	"github.com/kisumu-dev/referral-dispatch/internal/mission"
	"github.com/kisumu-dev/referral-dispatch/internal/notify"
	"github.com/kisumu-dev/referral-dispatch/internal/track"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment")
	}
	log.SetFormatter(&log.JSONFormatter{})

	cfg := config.Load()

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("Mongo disconnect failed")
		}
	}()
	log.Info("Connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	patients := &db.PatientStore{Collection: database.Collection("patients")}
	ambulances := &db.AmbulanceStore{Collection: database.Collection("ambulances")}
	locations := &db.LocationStore{Collection: database.Collection("locations")}
	comms := &db.CommunicationStore{Collection: database.Collection("communications")}
	handovers := &db.HandoverStore{Collection: database.Collection("handovers")}
	users := &db.UserStore{Collection: database.Collection("users")}

	facilities := directory.Kisumu()
	costModel := cost.NewModel(cfg.Cost, nil)
	ledger := fleet.NewLedger(ambulances, locations, costModel, cfg.Cost)
	planner := dispatch.NewPlanner(ambulances, cfg.MinFuelLevel)
	analytics := fleet.NewAnalytics(patients, ambulances)

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.SMTPUsername != "" {
		notifier = notify.NewSMTPNotifier(cfg)
	}

	missions := mission.NewService(patients, ambulances, comms, handovers, facilities, planner, ledger, costModel, notifier)

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize auth service")
	}

	handler := handlers.NewRouter(
		handlers.NewAuthHandler(authService, users, facilities),
		handlers.NewReferralHandler(missions, patients, comms),
		handlers.NewAmbulanceHandler(ambulances, ledger, planner),
		handlers.NewKPIHandler(analytics, facilities),
		middleware.NewAuthMiddleware(authService),
		middleware.NewRateLimitMiddleware(),
	)

	ingestor := track.NewIngestor(track.NewClient(cfg, cfg.MQTTClientID), ledger, cfg.LocationTopic)
	if err := ingestor.Connect(); err != nil {
		log.WithError(err).Warn("Location feed unavailable, continuing with HTTP reports only")
	} else {
		defer ingestor.Close()
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Shutdown failed")
	}
}
