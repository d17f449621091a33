package timetable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minaret-app/minaret/internal/model"
	redisclient "github.com/minaret-app/minaret/internal/redis"
)

// Timings holds the five daily prayer clock-times as 24h "HH:MM" strings.
type Timings map[model.PrayerName]string

// Provider returns the prayer time-table for a coordinate and date.
// Implementations may fail or rate-limit; callers get per-day caching here.
type Provider interface {
	GetTimings(ctx context.Context, latitude, longitude float64, date time.Time) (Timings, error)
}

const (
	defaultBaseURL = "https://api.aladhan.com"
	// ISNA calculation method, matching the mobile clients.
	calculationMethod = 2

	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond

	// time-tables barely change intra-day; matches the clients' 12h cache
	cacheTTL = 12 * time.Hour
)

type AladhanClient struct {
	baseURL string
	client  *http.Client
}

var _ Provider = (*AladhanClient)(nil)

func NewAladhanClient(baseURL string) *AladhanClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &AladhanClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type aladhanResponse struct {
	Code int `json:"code"`
	Data struct {
		Timings map[string]string `json:"timings"`
	} `json:"data"`
}

// GetTimings fetches the time-table for one day, serving repeat calls for the
// same (day, coordinate) from Redis.
func (a *AladhanClient) GetTimings(ctx context.Context, latitude, longitude float64, date time.Time) (Timings, error) {
	cacheKey := fmt.Sprintf("timetable:%s:%.3f:%.3f", date.Format("2006-01-02"), latitude, longitude)
	if cached, ok := redisclient.Get(ctx, cacheKey); ok {
		var t Timings
		if err := json.Unmarshal([]byte(cached), &t); err == nil {
			return t, nil
		}
		redisclient.Del(ctx, cacheKey)
	}

	t, err := a.fetch(ctx, latitude, longitude, date)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(t); err == nil {
		redisclient.Set(ctx, cacheKey, payload, cacheTTL)
	}
	return t, nil
}

func (a *AladhanClient) fetch(ctx context.Context, latitude, longitude float64, date time.Time) (Timings, error) {
	url := fmt.Sprintf("%s/v1/timings/%d?latitude=%f&longitude=%f&method=%d",
		a.baseURL, date.Unix(), latitude, longitude, calculationMethod)

	var lastErr error
	backoff := retryBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		t, err := a.doRequest(ctx, url)
		if err == nil {
			return t, nil
		}
		lastErr = err
		log.Error().Err(err).Int("attempt", attempt).Msg("aladhan timings request failed")
	}
	return nil, fmt.Errorf("aladhan timings after %d attempts: %w", maxAttempts, lastErr)
}

func (a *AladhanClient) doRequest(ctx context.Context, url string) (Timings, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aladhan returned status %d", resp.StatusCode)
	}

	var body aladhanResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode aladhan response: %w", err)
	}

	t := Timings{}
	for apiName, prayer := range map[string]model.PrayerName{
		"Fajr":    model.Fajr,
		"Dhuhr":   model.Dhuhr,
		"Asr":     model.Asr,
		"Maghrib": model.Maghrib,
		"Isha":    model.Isha,
	} {
		raw, ok := body.Data.Timings[apiName]
		if !ok {
			return nil, fmt.Errorf("aladhan response missing %s", apiName)
		}
		// some methods append a timezone suffix, e.g. "05:12 (EET)"
		t[prayer] = strings.SplitN(raw, " ", 2)[0]
	}
	return t, nil
}
