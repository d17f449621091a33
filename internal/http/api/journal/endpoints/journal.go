package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/badge"
	"github.com/minaret-app/minaret/internal/db"
	"github.com/minaret-app/minaret/internal/http/api"
	"github.com/minaret-app/minaret/internal/http/api/journal/packets"
	"github.com/minaret-app/minaret/internal/model"
	"github.com/minaret-app/minaret/internal/storage"
)

// JournalModule mounts the reflection, mood and photo endpoints (JWT
// required).
func JournalModule(store db.Store, badges *badge.Service, photos storage.Storage) api.Module {
	ctl := &journalController{store: store, badges: badges, photos: photos}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/journal/entries", ctl.listEntries)
		c.POST("/journal/entries", ctl.createEntry)
		c.DELETE("/journal/entries/:id", ctl.deleteEntry)
		c.POST("/journal/photos", ctl.uploadPhoto)

		c.GET("/journal/moods", ctl.listMoods)
		c.POST("/journal/moods", ctl.saveMood)
	})
}

type journalController struct {
	store  db.Store
	badges *badge.Service
	photos storage.Storage
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// GET /api/journal/entries
func (j *journalController) listEntries(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	entries, err := j.store.ListJournalEntries(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list entries"}
	}
	return entries, nil
}

// POST /api/journal/entries
func (j *journalController) createEntry(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateEntryRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if !validDate(request.EntryDate) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "entry_date must be YYYY-MM-DD"}
	}

	var mood *model.Mood
	if request.Mood != nil {
		parsed, err := model.ParseMood(*request.Mood)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
		}
		mood = &parsed
	}

	entry := model.JournalEntry{
		ID:        uuid.New(),
		UserID:    user.ID,
		EntryDate: request.EntryDate,
		Title:     request.Title,
		Body:      request.Body,
		Mood:      mood,
		PhotoURL:  request.PhotoURL,
	}
	if err := j.store.CreateJournalEntry(entry); err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("creating journal entry failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create entry"}
	}

	j.badges.UpdateJournalProgress(user.ID, request.EntryDate)
	return entry, nil
}

// DELETE /api/journal/entries/:id
func (j *journalController) deleteEntry(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	entryID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid entry id"}
	}

	if err := j.store.DeleteJournalEntry(entryID, user.ID); err != nil {
		if errors.Is(err, db.ErrEntryNotFound) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "entry not found"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete entry"}
	}
	return gin.H{"status": "ok"}, nil
}

// POST /api/journal/photos
// multipart upload; the returned URL goes into a subsequent entry create
func (j *journalController) uploadPhoto(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	fileHeader, err := ctx.FormFile("photo")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "photo file is required"}
	}

	url, err := j.photos.SavePhoto(fileHeader, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unsupported photo type"}
		}
		log.Error().Err(err).Int("user_id", user.ID).Msg("saving journal photo failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save photo"}
	}

	return gin.H{"photo_url": url}, nil
}

// GET /api/journal/moods?from=2026-08-01&to=2026-08-31
func (j *journalController) listMoods(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	from := ctx.Query("from")
	to := ctx.Query("to")
	if !validDate(from) || !validDate(to) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "from and to must be YYYY-MM-DD"}
	}

	moods, err := j.store.ListMoods(user.ID, from, to)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list moods"}
	}
	return moods, nil
}

// POST /api/journal/moods
// replaces the day's mood when one already exists
func (j *journalController) saveMood(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.SaveMoodRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if !validDate(request.EntryDate) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "entry_date must be YYYY-MM-DD"}
	}

	mood, err := model.ParseMood(request.Mood)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	entry := model.MoodEntry{
		ID:        uuid.New(),
		UserID:    user.ID,
		EntryDate: request.EntryDate,
		Mood:      mood,
	}
	if err := j.store.SaveMood(entry); err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("saving mood failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save mood"}
	}
	return entry, nil
}
