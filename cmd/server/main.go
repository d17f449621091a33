package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/minaret-app/minaret/internal/badge"
	"github.com/minaret-app/minaret/internal/db"
	"github.com/minaret-app/minaret/internal/model"
	"github.com/minaret-app/minaret/internal/notify"
	"github.com/minaret-app/minaret/internal/prayer"
	redisclient "github.com/minaret-app/minaret/internal/redis"
	"github.com/minaret-app/minaret/internal/scheduler"
	"github.com/minaret-app/minaret/internal/timetable"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	env := LoadEnvironment()

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatalf("db init: %v", err)
	}

	// run pending migrations
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	store := db.NewStore(db.DB)

	redisclient.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)

	photoStorage := InitStorage(env)

	// reminder + badge fan-out over MQTT; the server runs fine without a broker
	var publisher *notify.Publisher
	if env.MQTTBrokerURL != "" {
		p, err := notify.NewPublisher(env.MQTTBrokerURL, env.MQTTClientID)
		if err != nil {
			log.Printf("mqtt connect failed, notifications disabled: %v", err)
		} else {
			publisher = p
			defer publisher.Close()
		}
	}

	timings := timetable.NewAladhanClient(env.AladhanBaseURL)
	prayers := prayer.NewService(store, timings)
	badges := badge.NewService(store)

	// confirmed prayer changes feed achievement progress
	prayers.SetChangeListener(func(userID int, res prayer.HistoryResult) {
		badges.UpdatePrayerProgress(userID, time.Now().UTC().Format("2006-01-02"))
	})
	if publisher != nil {
		badges.SetAwardListener(func(userID int, b model.Badge) {
			if err := publisher.PublishBadgeEarned(userID, b); err != nil {
				log.Printf("publish badge earned: %v", err)
			}
		})
	}

	jobs := scheduler.NewScheduler(prayers, store, publisher, env.CronReconcile, env.CronDailyInit, env.CronReminder)
	if err := jobs.Start(); err != nil {
		log.Fatalf("scheduler start: %v", err)
	}

	r := gin.Default()
	RegisterRoutes(r, env, store, prayers, badges, photoStorage)

	server := &http.Server{
		Addr:    env.ServerAddress,
		Handler: r,
	}

	go func() {
		log.Printf("listening on %s", env.ServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	jobs.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
