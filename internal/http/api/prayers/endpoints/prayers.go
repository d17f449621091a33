package endpoints

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/db"
	"github.com/minaret-app/minaret/internal/http/api"
	"github.com/minaret-app/minaret/internal/http/api/prayers/packets"
	"github.com/minaret-app/minaret/internal/model"
	"github.com/minaret-app/minaret/internal/prayer"
)

// PrayersModule mounts the prayer history, marking and excused-period
// endpoints (JWT required).
func PrayersModule(service *prayer.Service) api.Module {
	ctl := &prayerController{service: service}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/prayers/history", ctl.getHistory)
		c.POST("/prayers/mark", ctl.markPrayer)
		c.POST("/prayers/init", ctl.initDays)
		c.POST("/prayers/refresh", ctl.refreshStatuses)
		c.DELETE("/prayers/cache", ctl.invalidateCache)

		c.GET("/prayers/excused-periods", ctl.listExcusedPeriods)
		c.POST("/prayers/excused-periods", ctl.startExcusedPeriod)
		c.POST("/prayers/excused-periods/:id/end", ctl.endExcusedPeriod)
	})
}

type prayerController struct {
	service *prayer.Service
}

// dates are compared lexicographically throughout, so anything that is not
// canonical YYYY-MM-DD must be rejected at the door
func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// tzOffset reads the caller's UTC offset in minutes from the query string.
// Missing or malformed values fall back to 0 (UTC) rather than erroring;
// clients that care send it on every call.
func tzOffset(ctx *gin.Context) int {
	raw := ctx.Query("tz_offset")
	if raw == "" {
		return 0
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return offset
}

// GET /api/prayers/history?tz_offset=180
func (p *prayerController) getHistory(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	result, err := p.service.History(ctx.Request.Context(), user.ID, tzOffset(ctx))
	if err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("loading prayer history failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load history"}
	}
	return result, nil
}

// POST /api/prayers/mark
func (p *prayerController) markPrayer(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.MarkPrayerRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if !validDate(request.Date) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "date must be YYYY-MM-DD"}
	}
	name, err := model.ParsePrayerName(request.PrayerName)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	status, err := model.ParsePrayerStatus(request.Status)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	err = p.service.SaveStatus(ctx.Request.Context(), user.ID, request.Date, name, status, request.TzOffset)
	switch {
	case errors.Is(err, prayer.ErrInvalidMark):
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "status cannot be set by hand"}
	case errors.Is(err, prayer.ErrNoLocation):
		return nil, &api.APIError{Code: http.StatusPreconditionFailed, Message: "location not set"}
	case err != nil:
		log.Error().Err(err).Int("user_id", user.ID).Str("date", request.Date).Msg("marking prayer failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save status"}
	}

	return gin.H{"status": "ok"}, nil
}

// POST /api/prayers/init
// creates today's records, or the whole trailing window when window=true
func (p *prayerController) initDays(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.InitDaysRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	var err error
	if request.Window {
		err = p.service.EnsureWindow(ctx.Request.Context(), user.ID, request.TzOffset)
	} else {
		err = p.service.EnsureToday(ctx.Request.Context(), user.ID, request.TzOffset)
	}
	switch {
	case errors.Is(err, prayer.ErrNoLocation):
		return nil, &api.APIError{Code: http.StatusPreconditionFailed, Message: "location not set"}
	case err != nil:
		log.Error().Err(err).Int("user_id", user.ID).Msg("initializing prayer records failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not initialize records"}
	}

	return gin.H{"status": "ok"}, nil
}

// POST /api/prayers/refresh?tz_offset=180
func (p *prayerController) refreshStatuses(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if err := p.service.RecomputeStatuses(ctx.Request.Context(), user.ID, tzOffset(ctx)); err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("recomputing prayer statuses failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not refresh statuses"}
	}
	return gin.H{"status": "ok"}, nil
}

// DELETE /api/prayers/cache
func (p *prayerController) invalidateCache(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	p.service.InvalidateCache(ctx.Request.Context(), user.ID)
	return gin.H{"status": "ok"}, nil
}

// GET /api/prayers/excused-periods
func (p *prayerController) listExcusedPeriods(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	periods, err := p.service.ExcusedPeriods(ctx.Request.Context(), user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list periods"}
	}
	return periods, nil
}

// POST /api/prayers/excused-periods
func (p *prayerController) startExcusedPeriod(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.StartExcusedPeriodRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if !validDate(request.StartDate) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "start_date must be YYYY-MM-DD"}
	}
	startPrayer, err := model.ParsePrayerName(request.StartPrayer)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	period, err := p.service.StartExcusedPeriod(ctx.Request.Context(), user.ID, request.StartDate, startPrayer, request.TzOffset)
	switch {
	case errors.Is(err, prayer.ErrOngoingPeriod):
		return nil, &api.APIError{Code: http.StatusConflict, Message: "an excused period is already ongoing"}
	case err != nil:
		log.Error().Err(err).Int("user_id", user.ID).Msg("starting excused period failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not start period"}
	}

	return period, nil
}

// POST /api/prayers/excused-periods/:id/end
func (p *prayerController) endExcusedPeriod(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	periodID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid period id"}
	}

	var request packets.EndExcusedPeriodRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if !validDate(request.EndDate) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "end_date must be YYYY-MM-DD"}
	}
	endPrayer, err := model.ParsePrayerName(request.EndPrayer)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	err = p.service.EndExcusedPeriod(ctx.Request.Context(), user.ID, periodID, request.EndDate, endPrayer, request.TzOffset)
	switch {
	case errors.Is(err, db.ErrPeriodNotFound):
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "period not found"}
	case errors.Is(err, prayer.ErrInvalidRange):
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "end must not precede start"}
	case err != nil:
		log.Error().Err(err).Int("user_id", user.ID).Str("period_id", periodID.String()).Msg("ending excused period failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not end period"}
	}

	return gin.H{"status": "ok"}, nil
}
