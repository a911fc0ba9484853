package overdue

import (
	"context"
	"fmt"
	"log"
	"time"

	"gatepass/mailer"
	"gatepass/models"
)

// Design constants of the overdue policy, not tunables.
const (
	Threshold = 30 * time.Minute
	Period    = time.Minute
)

// Records is the slice of the store the sweeper needs. Both the visitors and
// the appointments store satisfy it.
type Records interface {
	OverdueCandidates(ctx context.Context, cutoff time.Time) ([]models.Visit, error)
	ClaimOverdueNotice(ctx context.Context, id string) (bool, error)
	ReleaseOverdueNotice(ctx context.Context, id string) error
}

// Sweeper is the recurring overdue scan. It is a single global instance with
// no persisted cursor; every run re-scans the full candidate set, so a
// failed send is retried on the next tick until it succeeds.
type Sweeper struct {
	visits       Records
	appointments Records
	mail         mailer.Mailer
	now          func() time.Time
}

func New(visits, appointments Records, mail mailer.Mailer) *Sweeper {
	return &Sweeper{
		visits:       visits,
		appointments: appointments,
		mail:         mail,
		now:          time.Now,
	}
}

// Run drives RunOnce every Period until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(Period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs one sweep over both collections. It is idempotent and
// safe to call concurrently with a ticker run: the per-record claim makes
// each notification at-most-once.
func (s *Sweeper) RunOnce(ctx context.Context) {
	s.sweep(ctx, s.visits, "Overdue Visitor Notification")
	s.sweep(ctx, s.appointments, "Overdue Appointment Notification")
}

func (s *Sweeper) sweep(ctx context.Context, recs Records, subject string) {
	cutoff := s.now().Add(-Threshold)
	candidates, err := recs.OverdueCandidates(ctx, cutoff)
	if err != nil {
		log.Printf("overdue scan failed: %v", err)
		return
	}
	for i := range candidates {
		s.notify(ctx, recs, &candidates[i], subject)
	}
}

// notify claims the record before calling the gateway. Winning the claim
// flips overdueEmailSent, so an overlapping tick cannot double-send; a
// failed send releases the claim for the next tick.
func (s *Sweeper) notify(ctx context.Context, recs Records, v *models.Visit, subject string) {
	claimed, err := recs.ClaimOverdueNotice(ctx, v.VisitID)
	if err != nil {
		log.Printf("overdue claim for %s failed: %v", v.VisitID, err)
		return
	}
	if !claimed {
		return
	}
	body := fmt.Sprintf("Hello %s, you exceeded 30 minutes after office processing. Please return to the guard for timeout.", v.Name)
	if err := s.mail.Send(v.Email, subject, body); err != nil {
		log.Printf("overdue email to %s failed: %v", v.Email, err)
		if relErr := recs.ReleaseOverdueNotice(ctx, v.VisitID); relErr != nil {
			log.Printf("overdue claim release for %s failed: %v", v.VisitID, relErr)
		}
		return
	}
	log.Printf("overdue email sent to %s", v.Email)
}
