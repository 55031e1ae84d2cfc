package booking

import (
	"strings"
	"time"

	"calbook/models"

	"go.uber.org/zap"
)

const (
	defaultTitle    = "Meeting"
	defaultDuration = time.Hour
	// fallbackLead is how far after "now" an unparseable start lands.
	fallbackLead = time.Hour
)

// Assembler converts collected raw fields into a BookingRequest. It never
// fails: unparseable date/time or duration resolve to documented defaults and
// are reported through a warning and BookingRequest.Degraded.
type Assembler struct {
	resolver Resolver
	loc      *time.Location
	logger   *zap.Logger
}

func NewAssembler(resolver Resolver, loc *time.Location, logger *zap.Logger) *Assembler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{resolver: resolver, loc: loc, logger: logger}
}

// Assemble is deterministic for identical collected values and now.
func (a *Assembler) Assemble(collected map[models.BookingField]string, now time.Time) models.BookingRequest {
	req := models.BookingRequest{
		Summary:       strings.TrimSpace(collected[models.FieldMeetingTitle]),
		AttendeeEmail: collected[models.FieldAttendees],
		Timezone:      a.loc.String(),
	}
	if req.Summary == "" {
		req.Summary = defaultTitle
	}

	phrase := strings.TrimSpace(collected[models.FieldDate] + " " + collected[models.FieldTime])
	res, ok := a.resolver.Resolve(phrase, now)
	start := res.Time
	if !ok {
		start = now.In(a.loc).Add(fallbackLead)
		req.Degraded = append(req.Degraded, models.FieldDate, models.FieldTime)
		a.logger.Warn("could not resolve booking start, using fallback",
			zap.String("input", phrase),
			zap.Time("fallback", start))
	} else if len(res.Unread) > 0 {
		req.Degraded = append(req.Degraded, partialFields(collected, res.Unread)...)
		a.logger.Warn("booking start resolved only partly",
			zap.String("input", phrase),
			zap.Strings("unread", res.Unread),
			zap.Time("start", start))
	}

	duration, ok := ParseDuration(collected[models.FieldDuration])
	if !ok {
		duration = defaultDuration
		req.Degraded = append(req.Degraded, models.FieldDuration)
		a.logger.Warn("could not parse booking duration, using default",
			zap.String("input", collected[models.FieldDuration]),
			zap.Duration("default", duration))
	}

	req.Start = start
	req.Duration = duration
	req.End = start.Add(duration)
	return req
}

// partialFields names the fields whose text holds the unread words. Words
// found in neither are charged to the time field.
func partialFields(collected map[models.BookingField]string, words []string) []models.BookingField {
	date := strings.ToLower(collected[models.FieldDate])
	tm := strings.ToLower(collected[models.FieldTime])
	var inDate, inTime bool
	for _, w := range words {
		switch {
		case strings.Contains(tm, w):
			inTime = true
		case strings.Contains(date, w):
			inDate = true
		default:
			inTime = true
		}
	}
	var out []models.BookingField
	if inDate {
		out = append(out, models.FieldDate)
	}
	if inTime {
		out = append(out, models.FieldTime)
	}
	return out
}
