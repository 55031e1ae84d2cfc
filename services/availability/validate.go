package availability

import (
	"strconv"
	"time"

	"calbook/models"
	"calbook/utils"
)

// ParseInstant parses an ISO-8601 instant, keeping its offset. A value
// without an offset is read in loc.
func ParseInstant(field, raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, utils.NewValidationError(field, field+" is required")
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, utils.NewValidationError(field, field+" must be an ISO-8601 instant")
}

// NewWindow validates and builds a query window.
func NewWindow(start, end time.Time) (models.Window, error) {
	if !start.Before(end) {
		return models.Window{}, utils.NewValidationError("end_time", "end_time must be after start_time")
	}
	return models.Window{Start: start, End: end}, nil
}

// MaxMinutes caps durations and increments at one week.
const MaxMinutes = 7 * 24 * 60

// Minutes validates a positive minute count no larger than MaxMinutes.
func Minutes(field string, n int) (time.Duration, error) {
	if n <= 0 {
		return 0, utils.NewValidationError(field, field+" must be positive")
	}
	if n > MaxMinutes {
		return 0, utils.NewValidationError(field, field+" must be at most "+strconv.Itoa(MaxMinutes))
	}
	return time.Duration(n) * time.Minute, nil
}

// NewParams validates duration and increment given in minutes.
func NewParams(durationMinutes, incrementMinutes int) (models.SuggestionParams, error) {
	duration, err := Minutes("duration_minutes", durationMinutes)
	if err != nil {
		return models.SuggestionParams{}, err
	}
	increment, err := Minutes("increment_minutes", incrementMinutes)
	if err != nil {
		return models.SuggestionParams{}, err
	}
	return models.SuggestionParams{Duration: duration, Increment: increment}, nil
}
