package lifecycle

import (
	"time"

	"gatepass/models"
)

// Status is the derived, never-stored state of a visit.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusProcessed  Status = "PROCESSED"
	StatusOverdue    Status = "OVERDUE"
)

// DeriveStatus computes the visit status at a given moment. Precedence is
// strict: PROCESSED beats PROCESSING beats OVERDUE beats PENDING. A visit is
// OVERDUE only while unprocessed and past its scheduled date+time.
func DeriveStatus(v *models.Visit, now time.Time) Status {
	if v.OfficeProcessedTime != nil {
		return StatusProcessed
	}
	if v.ProcessingStartedTime != nil {
		return StatusProcessing
	}
	if sched, ok := v.ScheduledAt(); ok && !now.Before(sched) {
		return StatusOverdue
	}
	return StatusPending
}
