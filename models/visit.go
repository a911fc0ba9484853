package models

import (
	"time"
)

// Registration channels. A WALK_IN visit is created at the front desk; an
// ONLINE visit is created through the appointment booking flow and has a
// linked row in the appointments collection sharing the same contact number.
const (
	RegistrationWalkIn = "WALK_IN"
	RegistrationOnline = "ONLINE"
)

// Decision is the staff accept/decline state of a visit.
type Decision string

const (
	DecisionPending  Decision = "PENDING"
	DecisionAccepted Decision = "ACCEPTED"
	DecisionDeclined Decision = "DECLINED"
)

// Decided reports whether staff have made an accept/decline call.
func (d Decision) Decided() bool {
	return d == DecisionAccepted || d == DecisionDeclined
}

// Visit is a single visitor or appointment record. The lifecycle timestamps
// are pointers so "not yet happened" is representable; timeOut deliberately
// has no omitempty so an active visit stores an explicit null (the partial
// unique index on active visits depends on the field being present).
type Visit struct {
	VisitID       string `json:"visitid" bson:"visitid"`
	Name          string `json:"name" bson:"name"`
	ContactNumber string `json:"contactNumber" bson:"contactNumber"`
	Email         string `json:"email,omitempty" bson:"email,omitempty"`
	Office        string `json:"office" bson:"office"`
	Purpose       string `json:"purpose" bson:"purpose"`

	// Appointment scheduling (ONLINE channel only).
	ScheduledDate *time.Time `json:"scheduledDate,omitempty" bson:"scheduledDate,omitempty"`
	ScheduledTime string     `json:"scheduledTime,omitempty" bson:"scheduledTime,omitempty"` // "15:04"

	TimeIn                *time.Time `json:"timeIn,omitempty" bson:"timeIn,omitempty"`
	TimeOut               *time.Time `json:"timeOut" bson:"timeOut"`
	ProcessingStartedTime *time.Time `json:"processingStartedTime,omitempty" bson:"processingStartedTime,omitempty"`
	OfficeProcessedTime   *time.Time `json:"officeProcessedTime,omitempty" bson:"officeProcessedTime,omitempty"`
	Processed             bool       `json:"processed" bson:"processed"`

	RegistrationType string `json:"registrationType" bson:"registrationType"`
	Feedback         string `json:"feedback" bson:"feedback"`
	IDFile           string `json:"idFile,omitempty" bson:"idFile,omitempty"`
	QRData           string `json:"qrData,omitempty" bson:"qrData,omitempty"`

	Accepted          Decision `json:"accepted" bson:"accepted"`
	OverdueEmailSent  bool     `json:"overdueEmailSent" bson:"overdueEmailSent"`
	DecisionEmailSent bool     `json:"decisionEmailSent" bson:"decisionEmailSent"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// ScheduledAt combines the scheduled date and "HH:MM" time into a single
// moment. ok is false for walk-ins and malformed schedules.
func (v *Visit) ScheduledAt() (time.Time, bool) {
	if v.ScheduledDate == nil || v.ScheduledTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", v.ScheduledTime)
	if err != nil {
		return time.Time{}, false
	}
	d := *v.ScheduledDate
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location()), true
}

// Active reports whether the visit has not yet timed out.
func (v *Visit) Active() bool {
	return v.TimeOut == nil
}

// VisitUpdate carries the mutable subset of a Visit for a single transition.
// Nil fields are untouched.
type VisitUpdate struct {
	TimeIn                *time.Time
	TimeOut               *time.Time
	ProcessingStartedTime *time.Time
	OfficeProcessedTime   *time.Time
	Processed             *bool
	Feedback              *string
	Accepted              *Decision
	DecisionEmailSent     *bool
	IDFile                *string
}

// LinkedProjection narrows an update to the fields that propagate to a
// linked record: processing timestamps, feedback and the decision. TimeIn,
// TimeOut and the notification flags stay per-record.
func (u VisitUpdate) LinkedProjection() VisitUpdate {
	return VisitUpdate{
		ProcessingStartedTime: u.ProcessingStartedTime,
		OfficeProcessedTime:   u.OfficeProcessedTime,
		Processed:             u.Processed,
		Feedback:              u.Feedback,
		Accepted:              u.Accepted,
	}
}

// Empty reports whether the update would touch nothing.
func (u VisitUpdate) Empty() bool {
	return u.TimeIn == nil && u.TimeOut == nil &&
		u.ProcessingStartedTime == nil && u.OfficeProcessedTime == nil &&
		u.Processed == nil && u.Feedback == nil && u.Accepted == nil &&
		u.DecisionEmailSent == nil && u.IDFile == nil
}

// Apply mutates v in place with the set fields of u. The stores use this to
// keep in-memory copies consistent with what was persisted.
func (u VisitUpdate) Apply(v *Visit) {
	if u.TimeIn != nil {
		v.TimeIn = u.TimeIn
	}
	if u.TimeOut != nil {
		v.TimeOut = u.TimeOut
	}
	if u.ProcessingStartedTime != nil {
		v.ProcessingStartedTime = u.ProcessingStartedTime
	}
	if u.OfficeProcessedTime != nil {
		v.OfficeProcessedTime = u.OfficeProcessedTime
	}
	if u.Processed != nil {
		v.Processed = *u.Processed
	}
	if u.Feedback != nil {
		v.Feedback = *u.Feedback
	}
	if u.Accepted != nil {
		v.Accepted = *u.Accepted
	}
	if u.DecisionEmailSent != nil {
		v.DecisionEmailSent = *u.DecisionEmailSent
	}
	if u.IDFile != nil {
		v.IDFile = *u.IDFile
	}
}
