package models

// AvailabilityResponse is returned by GET /availability.
type AvailabilityResponse struct {
	BusySlots     []BusySlot `json:"busy_slots"`
	NextPageToken string     `json:"next_page_token,omitempty"`
	TimeZone      string     `json:"time_zone"`
}

// AvailabilityWithFreeSlots is returned when the caller passes a duration.
type AvailabilityWithFreeSlots struct {
	AvailabilityResponse
	FreeSlots []SuggestedSlot `json:"free_slots"`
}

// SuggestionsResponse is returned by GET /suggest-slots.
type SuggestionsResponse struct {
	Suggestions []SuggestedSlot `json:"suggestions"`
}
