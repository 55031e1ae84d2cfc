package booking

import (
	"strings"

	"calbook/models"
)

type fieldSpec struct {
	Field  models.BookingField
	Prompt string
	// Aliases are the words a user may type to name this field in an edit request.
	Aliases []string
}

// fieldOrder is the fixed collection order; Step k refers to fieldOrder[k-1].
var fieldOrder = []fieldSpec{
	{models.FieldMeetingTitle, "What's the meeting about?", []string{"title", "meeting_title", "subject", "name"}},
	{models.FieldDate, "What date should we meet? (e.g. tomorrow, Friday)", []string{"date", "day"}},
	{models.FieldTime, "What time? (e.g. 2pm, 11:30 AM)", []string{"time", "hour"}},
	{models.FieldDuration, "How long should it be? (e.g. 1 hour, 30 mins)", []string{"duration", "length"}},
	{models.FieldAttendees, "Any attendees? (comma-separated emails)", []string{"attendees", "attendee", "guests", "emails"}},
}

// FieldCount is the number of fields a session collects.
var FieldCount = len(fieldOrder)

// Fields returns the ordered field list.
func Fields() []models.BookingField {
	out := make([]models.BookingField, len(fieldOrder))
	for i, f := range fieldOrder {
		out[i] = f.Field
	}
	return out
}

// Prompt returns the question for a 1-based step.
func Prompt(step int) string {
	if step < 1 || step > len(fieldOrder) {
		return ""
	}
	return fieldOrder[step-1].Prompt
}

// FieldAt returns the field for a 1-based step.
func FieldAt(step int) (models.BookingField, bool) {
	if step < 1 || step > len(fieldOrder) {
		return "", false
	}
	return fieldOrder[step-1].Field, true
}

// StepOf returns the 1-based step of a field, or 0 when unknown.
func StepOf(field models.BookingField) int {
	for i, f := range fieldOrder {
		if f.Field == field {
			return i + 1
		}
	}
	return 0
}

// LookupField resolves a field by name or alias.
func LookupField(name string) (models.BookingField, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", false
	}
	for _, f := range fieldOrder {
		if string(f.Field) == name {
			return f.Field, true
		}
		for _, alias := range f.Aliases {
			if alias == name {
				return f.Field, true
			}
		}
	}
	return "", false
}
