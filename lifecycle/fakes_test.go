package lifecycle

import (
	"context"
	"time"

	"gatepass/models"
)

// memStore is an in-memory Store double. It mirrors the behavior of the
// mongo implementation, including the partial unique index on active visits
// and the conditional overdue-notice claim.
type memStore struct {
	records   []*models.Visit
	insertErr error
}

func newMemStore() *memStore { return &memStore{} }

func (s *memStore) Insert(_ context.Context, v *models.Visit) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, r := range s.records {
		if r.ContactNumber == v.ContactNumber && r.TimeOut == nil {
			return E(KindDuplicateActive, "visitor already registered and not yet timed out")
		}
	}
	cp := *v
	s.records = append(s.records, &cp)
	return nil
}

func (s *memStore) find(match func(*models.Visit) bool) (*models.Visit, error) {
	for _, r := range s.records {
		if match(r) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, E(KindNotFound, "record not found")
}

func (s *memStore) FindByID(_ context.Context, id string) (*models.Visit, error) {
	return s.find(func(r *models.Visit) bool { return r.VisitID == id })
}

func (s *memStore) FindByContact(_ context.Context, contact string) (*models.Visit, error) {
	return s.find(func(r *models.Visit) bool { return r.ContactNumber == contact })
}

func (s *memStore) FindActive(_ context.Context, contact string) (*models.Visit, error) {
	return s.find(func(r *models.Visit) bool { return r.ContactNumber == contact && r.TimeOut == nil })
}

func (s *memStore) CountInWindow(_ context.Context, contact string, from, to time.Time) (int64, error) {
	var n int64
	for _, r := range s.records {
		if r.ContactNumber != contact {
			continue
		}
		day := r.CreatedAt
		if r.ScheduledDate != nil {
			day = *r.ScheduledDate
		}
		if !day.Before(from) && day.Before(to) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) Update(_ context.Context, id string, upd models.VisitUpdate) error {
	for _, r := range s.records {
		if r.VisitID == id {
			upd.Apply(r)
			return nil
		}
	}
	return E(KindNotFound, "record not found")
}

func (s *memStore) UpdateByContact(_ context.Context, contact string, upd models.VisitUpdate) error {
	for _, r := range s.records {
		if r.ContactNumber == contact {
			upd.Apply(r)
			return nil
		}
	}
	return E(KindNotFound, "record not found")
}

func (s *memStore) Delete(_ context.Context, id string) error {
	for i, r := range s.records {
		if r.VisitID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return E(KindNotFound, "record not found")
}

func (s *memStore) List(_ context.Context) ([]models.Visit, error) {
	out := make([]models.Visit, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, *s.records[i])
	}
	return out, nil
}

func (s *memStore) OverdueCandidates(_ context.Context, cutoff time.Time) ([]models.Visit, error) {
	var out []models.Visit
	for _, r := range s.records {
		if r.OfficeProcessedTime != nil && !r.OfficeProcessedTime.After(cutoff) &&
			r.TimeOut == nil && !r.OverdueEmailSent && r.Email != "" {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *memStore) ClaimOverdueNotice(_ context.Context, id string) (bool, error) {
	for _, r := range s.records {
		if r.VisitID == id {
			if r.OverdueEmailSent {
				return false, nil
			}
			r.OverdueEmailSent = true
			return true, nil
		}
	}
	return false, E(KindNotFound, "record not found")
}

func (s *memStore) ReleaseOverdueNotice(_ context.Context, id string) error {
	for _, r := range s.records {
		if r.VisitID == id {
			r.OverdueEmailSent = false
			return nil
		}
	}
	return E(KindNotFound, "record not found")
}

// mustGet pulls the live stored record for assertions on persisted state.
func (s *memStore) mustGet(id string) *models.Visit {
	for _, r := range s.records {
		if r.VisitID == id {
			return r
		}
	}
	return nil
}

// fakeMailer records sends and can be told to fail.
type fakeMailer struct {
	sent []sentMail
	fail bool
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.fail {
		return E(KindDependency, "smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}
