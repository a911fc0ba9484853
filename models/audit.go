package models

import "time"

// AuditEntry attributes a staff action on a visit. PerformedBy is an opaque
// display name taken from the caller's token, not a foreign key.
type AuditEntry struct {
	VisitID       string    `json:"visitid" bson:"visitid"`
	VisitorName   string    `json:"visitorName" bson:"visitorName"`
	VisitorOffice string    `json:"visitorOffice" bson:"visitorOffice"`
	Action        string    `json:"action" bson:"action"`
	PerformedBy   string    `json:"performedBy" bson:"performedBy"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
}

// Suggestion is a free-form note left by a visitor at the kiosk.
type Suggestion struct {
	VisitorName   string    `json:"visitorName" bson:"visitorName"`
	ContactNumber string    `json:"contactNumber" bson:"contactNumber"`
	Message       string    `json:"message" bson:"message"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}
