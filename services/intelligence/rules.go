package ai

import "strings"

var availabilityKeywords = []string{"available", "free", "busy"}

const (
	availabilityGuidance = "I can check availability. Please specify:\n" +
		"- Date (e.g., 'Friday')\n" +
		"- Time range (e.g., '9am to 5pm')"
	helpText = "I can help with:\n" +
		"- Booking meetings\n" +
		"- Checking availability\n" +
		"- Managing calendar events\n\n" +
		"Try commands like:\n" +
		"'Book team meeting tomorrow at 2pm for 1 hour'\n" +
		"'What's my availability on Friday?'"
)

// classify answers free text that did not start a booking flow.
func classify(text string) string {
	lower := strings.ToLower(text)
	if containsAny(lower, availabilityKeywords) {
		return availabilityGuidance
	}
	return helpText
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
