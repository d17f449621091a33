package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/badge"
	"github.com/minaret-app/minaret/internal/db"
	"github.com/minaret-app/minaret/internal/http/api"
	"github.com/minaret-app/minaret/internal/http/api/quran/packets"
	"github.com/minaret-app/minaret/internal/model"
)

// QuranModule mounts the reading-session endpoints (JWT required).
func QuranModule(store db.Store, badges *badge.Service) api.Module {
	ctl := &quranController{store: store, badges: badges}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/quran/sessions", ctl.listSessions)
		c.POST("/quran/sessions", ctl.createSession)
	})
}

type quranController struct {
	store  db.Store
	badges *badge.Service
}

// GET /api/quran/sessions
func (q *quranController) listSessions(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	sessions, err := q.store.ListQuranSessions(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list sessions"}
	}
	return sessions, nil
}

// POST /api/quran/sessions
func (q *quranController) createSession(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, err := time.Parse("2006-01-02", request.SessionDate); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "session_date must be YYYY-MM-DD"}
	}

	session := model.QuranSession{
		ID:          uuid.New(),
		UserID:      user.ID,
		SessionDate: request.SessionDate,
		Minutes:     request.Minutes,
		Surah:       request.Surah,
		JuzDone:     request.JuzDone,
	}
	if err := q.store.CreateQuranSession(session); err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("creating quran session failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create session"}
	}

	q.badges.UpdateQuranProgress(user.ID, request.SessionDate)
	return session, nil
}
