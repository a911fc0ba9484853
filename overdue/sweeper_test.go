package overdue

import (
	"context"
	"errors"
	"testing"
	"time"

	"gatepass/models"
)

// memRecords is a minimal in-memory Records double with the same claim
// semantics as the mongo store.
type memRecords struct {
	records []*models.Visit
}

func (m *memRecords) OverdueCandidates(_ context.Context, cutoff time.Time) ([]models.Visit, error) {
	var out []models.Visit
	for _, r := range m.records {
		if r.OfficeProcessedTime != nil && !r.OfficeProcessedTime.After(cutoff) &&
			r.TimeOut == nil && !r.OverdueEmailSent && r.Email != "" {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRecords) ClaimOverdueNotice(_ context.Context, id string) (bool, error) {
	for _, r := range m.records {
		if r.VisitID == id {
			if r.OverdueEmailSent {
				return false, nil
			}
			r.OverdueEmailSent = true
			return true, nil
		}
	}
	return false, errors.New("record not found")
}

func (m *memRecords) ReleaseOverdueNotice(_ context.Context, id string) error {
	for _, r := range m.records {
		if r.VisitID == id {
			r.OverdueEmailSent = false
			return nil
		}
	}
	return errors.New("record not found")
}

type fakeMailer struct {
	sent []string // recipients, in order
	fail bool
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, to)
	return nil
}

func processedVisit(id, email string, processedAt time.Time) *models.Visit {
	return &models.Visit{
		VisitID:             id,
		Name:                "Juan Dela Cruz",
		ContactNumber:       "09170001111",
		Email:               email,
		OfficeProcessedTime: &processedAt,
	}
}

func newTestSweeper(visits, appts *memRecords, mail *fakeMailer, now time.Time) *Sweeper {
	s := New(visits, appts, mail)
	s.now = func() time.Time { return now }
	return s
}

func TestSweepHonorsThreshold(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	visits := &memRecords{records: []*models.Visit{
		processedVisit("v-fresh", "fresh@example.com", now.Add(-29*time.Minute)),
		processedVisit("v-edge", "edge@example.com", now.Add(-30*time.Minute)),
		processedVisit("v-old", "old@example.com", now.Add(-2*time.Hour)),
	}}
	mail := &fakeMailer{}
	s := newTestSweeper(visits, &memRecords{}, mail, now)

	s.RunOnce(context.Background())

	if len(mail.sent) != 2 {
		t.Fatalf("emails sent = %d, want 2: %v", len(mail.sent), mail.sent)
	}
	for _, to := range mail.sent {
		if to == "fresh@example.com" {
			t.Error("notified a visit only 29 minutes past processing")
		}
	}
}

func TestSweepSkipsTimedOutAndEmailless(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	out := now.Add(-10 * time.Minute)
	done := processedVisit("v-done", "done@example.com", now.Add(-time.Hour))
	done.TimeOut = &out
	visits := &memRecords{records: []*models.Visit{
		done,
		processedVisit("v-noemail", "", now.Add(-time.Hour)),
	}}
	mail := &fakeMailer{}
	s := newTestSweeper(visits, &memRecords{}, mail, now)

	s.RunOnce(context.Background())

	if len(mail.sent) != 0 {
		t.Errorf("emails sent = %d, want 0: %v", len(mail.sent), mail.sent)
	}
}

func TestSweepNotifiesAtMostOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	visits := &memRecords{records: []*models.Visit{
		processedVisit("v-1", "juan@example.com", now.Add(-time.Hour)),
	}}
	mail := &fakeMailer{}
	s := newTestSweeper(visits, &memRecords{}, mail, now)

	s.RunOnce(context.Background())
	s.RunOnce(context.Background())
	s.RunOnce(context.Background())

	if len(mail.sent) != 1 {
		t.Errorf("emails sent = %d, want 1", len(mail.sent))
	}
	if !visits.records[0].OverdueEmailSent {
		t.Error("overdueEmailSent flag not set")
	}
}

func TestSweepRetriesAfterSendFailure(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	visits := &memRecords{records: []*models.Visit{
		processedVisit("v-1", "juan@example.com", now.Add(-time.Hour)),
	}}
	mail := &fakeMailer{fail: true}
	s := newTestSweeper(visits, &memRecords{}, mail, now)

	s.RunOnce(context.Background())
	if visits.records[0].OverdueEmailSent {
		t.Fatal("claim not released after failed send")
	}

	mail.fail = false
	s.RunOnce(context.Background())
	if len(mail.sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(mail.sent))
	}
	if !visits.records[0].OverdueEmailSent {
		t.Error("flag not set after successful retry")
	}
}

func TestSweepCoversAppointments(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	appts := &memRecords{records: []*models.Visit{
		processedVisit("a-1", "appt@example.com", now.Add(-time.Hour)),
	}}
	mail := &fakeMailer{}
	s := newTestSweeper(&memRecords{}, appts, mail, now)

	s.RunOnce(context.Background())

	if len(mail.sent) != 1 || mail.sent[0] != "appt@example.com" {
		t.Errorf("sent = %v, want one email to appt@example.com", mail.sent)
	}
}
