package main

import (
	"log"
	"os"
)

type Environment struct {
	Environment    string
	ServerAddress  string
	SecretKey      string
	DatabaseURL    string
	MigrationsPath string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	AladhanBaseURL string

	MQTTBrokerURL string
	MQTTClientID  string

	CronReconcile string
	CronDailyInit string
	CronReminder  string

	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesCDNURL    string
	SpacesAccessKey string
	SpacesSecretKey string

	UploadsBaseURL string
}

// LoadEnvironment reads and validates env vars
func LoadEnvironment() Environment {
	env := Environment{
		Environment:    os.Getenv("APP_ENV"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SecretKey:      os.Getenv("JWT_SECRET"),
		ServerAddress:  os.Getenv("SERVER_ADDRESS"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AladhanBaseURL: os.Getenv("ALADHAN_BASE_URL"),

		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:  os.Getenv("MQTT_CLIENT_ID"),

		CronReconcile: os.Getenv("CRON_RECONCILE"),
		CronDailyInit: os.Getenv("CRON_DAILY_INIT"),
		CronReminder:  os.Getenv("CRON_REMINDER"),

		UseSpaces:       os.Getenv("USE_SPACES") == "true",
		SpacesEndpoint:  os.Getenv("SPACES_ENDPOINT"),
		SpacesRegion:    os.Getenv("SPACES_REGION"),
		SpacesBucket:    os.Getenv("SPACES_BUCKET"),
		SpacesCDNURL:    os.Getenv("SPACES_CDN_URL"),
		SpacesAccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SpacesSecretKey: os.Getenv("SPACES_SECRET_KEY"),

		UploadsBaseURL: os.Getenv("UPLOADS_BASE_URL"),
	}

	// Basic validation
	if env.DatabaseURL == "" || env.SecretKey == "" || env.ServerAddress == "" {
		log.Fatal("Missing required environment variables")
	}

	if env.MQTTClientID == "" {
		env.MQTTClientID = "minaret-server"
	}
	if env.CronReconcile == "" {
		env.CronReconcile = "*/5 * * * *"
	}
	if env.CronDailyInit == "" {
		env.CronDailyInit = "0 3 * * *"
	}
	if env.CronReminder == "" {
		env.CronReminder = "* * * * *"
	}
	if env.UploadsBaseURL == "" {
		env.UploadsBaseURL = "/uploads"
	}

	return env
}
