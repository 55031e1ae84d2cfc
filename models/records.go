package models

// BookingRecord is the persisted trace of an event created through this service.
type BookingRecord struct {
	EventID        string `bson:"eventId" json:"eventId"`
	ConversationID string `bson:"conversationId,omitempty" json:"conversationId,omitempty"`
	Summary        string `bson:"summary" json:"summary"`
	StartTime      string `bson:"startTime" json:"startTime"`
	EndTime        string `bson:"endTime" json:"endTime"`
	AttendeeEmail  string `bson:"attendeeEmail,omitempty" json:"attendeeEmail,omitempty"`
	Status         string `bson:"status" json:"status"`
	CreatedAt      int64  `bson:"createdAt" json:"createdAt"`
	UpdatedAt      int64  `bson:"updatedAt" json:"updatedAt"`
}
