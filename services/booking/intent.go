package booking

import (
	"strings"

	"calbook/models"
)

var bookingKeywords = []string{"book", "schedule", "meeting", "appointment"}

// IsBookingIntent reports whether free text asks to start a booking.
func IsBookingIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range bookingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var (
	confirmWords = map[string]bool{"confirm": true, "yes": true, "y": true, "ok": true, "okay": true, "book it": true, "sure": true}
	cancelWords  = map[string]bool{"cancel": true, "stop": true, "nevermind": true, "never mind": true, "quit": true}
	editWords    = []string{"edit", "change"}
)

// readyIntent classifies text received while a session awaits confirmation.
// For edit requests the named field, if any, is returned as well.
func readyIntent(text string) (models.TurnAction, models.BookingField) {
	norm := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	norm = strings.TrimRight(norm, ".!")
	switch {
	case confirmWords[norm]:
		return models.ActionConfirm, ""
	case cancelWords[norm]:
		return models.ActionCancel, ""
	}
	for _, w := range editWords {
		if norm == w {
			return models.ActionEdit, ""
		}
		if rest, ok := strings.CutPrefix(norm, w+" "); ok {
			rest = strings.TrimPrefix(rest, "the ")
			field, _ := LookupField(rest)
			return models.ActionEdit, field
		}
	}
	return models.ActionNone, ""
}

// isCancel is the exact-match escape hatch honored while collecting.
func isCancel(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "cancel")
}
