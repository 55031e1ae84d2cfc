package booking

import (
	"fmt"
	"strings"
	"time"

	"calbook/models"
)

const (
	introText     = "I'll help schedule that meeting. "
	cancelledText = "Booking cancelled."
	restartText   = "No problem, let's start over. "
	noAttendees   = "None specified"
)

// Summary renders the confirmation text for a pending booking.
func Summary(req models.BookingRequest) string {
	attendee := strings.TrimSpace(req.AttendeeEmail)
	if attendee == "" {
		attendee = noAttendees
	}
	var b strings.Builder
	b.WriteString("Ready to book:\n")
	fmt.Fprintf(&b, "Title: %s\n", req.Summary)
	fmt.Fprintf(&b, "When: %s\n", req.Start.Format("Mon Jan 2, 2006 3:04 PM MST"))
	fmt.Fprintf(&b, "Duration: %s\n", FormatDuration(req.Duration))
	fmt.Fprintf(&b, "Attendees: %s\n", attendee)
	if len(req.Degraded) > 0 {
		names := make([]string, len(req.Degraded))
		for i, f := range req.Degraded {
			names[i] = string(f)
		}
		fmt.Fprintf(&b, "Note: defaults were used for %s.\n", strings.Join(names, ", "))
	}
	b.WriteString("\nConfirm or Edit?")
	return b.String()
}

// Details converts a pending booking into its API view.
func Details(req models.BookingRequest) *models.BookingDetails {
	return &models.BookingDetails{
		Summary:       req.Summary,
		StartTime:     req.Start.Format(time.RFC3339),
		EndTime:       req.End.Format(time.RFC3339),
		Duration:      FormatDuration(req.Duration),
		AttendeeEmail: req.AttendeeEmail,
		Timezone:      req.Timezone,
	}
}
