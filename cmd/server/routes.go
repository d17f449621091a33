package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/minaret-app/minaret/internal/badge"
	"github.com/minaret-app/minaret/internal/db"
	"github.com/minaret-app/minaret/internal/http/api"
	authapi "github.com/minaret-app/minaret/internal/http/api/auth/endpoints"
	badgesapi "github.com/minaret-app/minaret/internal/http/api/badges/endpoints"
	journalapi "github.com/minaret-app/minaret/internal/http/api/journal/endpoints"
	prayersapi "github.com/minaret-app/minaret/internal/http/api/prayers/endpoints"
	quranapi "github.com/minaret-app/minaret/internal/http/api/quran/endpoints"
	"github.com/minaret-app/minaret/internal/prayer"
	"github.com/minaret-app/minaret/internal/storage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	env Environment,
	store db.Store,
	prayers *prayer.Service,
	badges *badge.Service,
	photoStorage storage.Storage,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey, store),
		badgesapi.BadgesPublicModule(badges),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		authapi.AuthSessionModule(env.SecretKey, store),
		prayersapi.PrayersModule(prayers),
		journalapi.JournalModule(store, badges, photoStorage),
		quranapi.QuranModule(store, badges),
		badgesapi.BadgesModule(badges),
	)

	// Static content
	if !env.UseSpaces {
		r.Static("/uploads", "./uploads")
	}
}
