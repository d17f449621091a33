package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minaret-app/minaret/internal/badge"
	"github.com/minaret-app/minaret/internal/http/api"
	"github.com/minaret-app/minaret/internal/model"
)

// BadgesPublicModule mounts the static achievement catalog.
func BadgesPublicModule(badges *badge.Service) api.Module {
	ctl := &badgeController{badges: badges}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/badges/definitions", ctl.listDefinitions)
	})
}

// BadgesModule mounts per-user progress (JWT required).
func BadgesModule(badges *badge.Service) api.Module {
	ctl := &badgeController{badges: badges}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/badges/progress", ctl.getProgress)
	})
}

type badgeController struct {
	badges *badge.Service
}

// GET /api/badges/definitions
func (b *badgeController) listDefinitions(ctx *gin.Context) (any, *api.APIError) {
	return badge.Definitions, nil
}

// GET /api/badges/progress
func (b *badgeController) getProgress(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	progress, earned, err := b.badges.Progress(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load progress"}
	}
	return gin.H{"progress": progress, "earned": earned}, nil
}
