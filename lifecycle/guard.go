package lifecycle

import (
	"context"
	"time"

	"gatepass/models"
)

// checkIntake runs both anomaly checks before any write: no second active
// visit for the contact, and no more than DailyVisitLimit visits plus
// appointments on the effective calendar day. Both checks are evaluated even
// though the first failure wins the error message.
func (e *Engine) checkIntake(ctx context.Context, v *models.Visit) error {
	var firstErr error

	active, err := e.visits.FindActive(ctx, v.ContactNumber)
	if err != nil && KindOf(err) != KindNotFound {
		return Wrap(KindDependency, "active visit lookup failed", err)
	}
	if active != nil {
		firstErr = E(KindDuplicateActive, "visitor already registered and not yet timed out")
	}

	day := v.CreatedAt
	if v.ScheduledDate != nil {
		day = *v.ScheduledDate
	}
	from, to := dayWindow(day)

	visits, err := e.visits.CountInWindow(ctx, v.ContactNumber, from, to)
	if err != nil {
		return Wrap(KindDependency, "daily visit count failed", err)
	}
	appts, err := e.appointments.CountInWindow(ctx, v.ContactNumber, from, to)
	if err != nil {
		return Wrap(KindDependency, "daily appointment count failed", err)
	}
	if firstErr == nil && visits+appts >= DailyVisitLimit {
		firstErr = E(KindDailyLimit, "daily registration limit reached for this contact number")
	}
	return firstErr
}

// dayWindow returns [midnight, next midnight) around t in t's location.
func dayWindow(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 0, 1)
}
