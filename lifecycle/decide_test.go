package lifecycle

import (
	"context"
	"strings"
	"testing"

	"gatepass/models"
)

func TestDecideAcceptSendsExactlyOneEmail(t *testing.T) {
	e, visits, _, mail := newTestEngine()
	ctx := context.Background()

	v, err := e.Register(ctx, walkIn("09170001111"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := e.Decide(ctx, RecordVisitor, v.VisitID, true); err != nil {
		t.Fatalf("decide: %v", err)
	}

	stored := visits.mustGet(v.VisitID)
	if stored.Accepted != models.DecisionAccepted {
		t.Errorf("accepted = %s, want %s", stored.Accepted, models.DecisionAccepted)
	}
	if !stored.DecisionEmailSent {
		t.Error("decisionEmailSent flag not set")
	}
	if len(mail.sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(mail.sent))
	}
	if mail.sent[0].To != "juan@example.com" || !strings.Contains(mail.sent[0].Subject, "Accepted") {
		t.Errorf("unexpected email: %+v", mail.sent[0])
	}

	// A reversal overwrites the decision but is never re-communicated.
	if _, err := e.Decide(ctx, RecordVisitor, v.VisitID, false); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	stored = visits.mustGet(v.VisitID)
	if stored.Accepted != models.DecisionDeclined {
		t.Errorf("after reversal accepted = %s, want %s", stored.Accepted, models.DecisionDeclined)
	}
	if len(mail.sent) != 1 {
		t.Errorf("emails sent after reversal = %d, want still 1", len(mail.sent))
	}
}

func TestDecideWithoutEmailAddress(t *testing.T) {
	e, _, _, mail := newTestEngine()
	ctx := context.Background()

	in := walkIn("09170001111")
	in.Email = ""
	v, err := e.Register(ctx, in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := e.Decide(ctx, RecordVisitor, v.VisitID, false)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if got.Accepted != models.DecisionDeclined {
		t.Errorf("accepted = %s, want %s", got.Accepted, models.DecisionDeclined)
	}
	if len(mail.sent) != 0 {
		t.Errorf("emails sent = %d, want 0", len(mail.sent))
	}
}

func TestDecideSurvivesMailFailure(t *testing.T) {
	e, visits, _, mail := newTestEngine()
	ctx := context.Background()
	mail.fail = true

	v, err := e.Register(ctx, walkIn("09170001111"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := e.Decide(ctx, RecordVisitor, v.VisitID, true); err != nil {
		t.Fatalf("decide with failing mailer: %v", err)
	}

	stored := visits.mustGet(v.VisitID)
	if stored.Accepted != models.DecisionAccepted {
		t.Errorf("decision not persisted: %s", stored.Accepted)
	}
	if stored.DecisionEmailSent {
		t.Error("flag set even though send failed")
	}

	// The flag stayed clear, so a later decision gets to notify.
	mail.fail = false
	if _, err := e.Decide(ctx, RecordVisitor, v.VisitID, true); err != nil {
		t.Fatalf("second decide: %v", err)
	}
	if len(mail.sent) != 1 {
		t.Errorf("emails sent = %d, want 1", len(mail.sent))
	}
	if !visits.mustGet(v.VisitID).DecisionEmailSent {
		t.Error("flag not set after successful send")
	}
}

func TestDecideMirrorsToLinkedVisit(t *testing.T) {
	e, visits, _, _ := newTestEngine()
	ctx := context.Background()

	appt, err := e.BookAppointment(ctx, online("09170001111", "2026-03-12", "09:00"))
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := e.Decide(ctx, RecordAppointment, appt.VisitID, true); err != nil {
		t.Fatalf("decide: %v", err)
	}
	linked, err := visits.FindByContact(ctx, "09170001111")
	if err != nil {
		t.Fatalf("linked visit: %v", err)
	}
	if linked.Accepted != models.DecisionAccepted {
		t.Errorf("linked accepted = %s, want %s", linked.Accepted, models.DecisionAccepted)
	}
}

func TestDecideUnknownRecord(t *testing.T) {
	e, _, _, _ := newTestEngine()
	_, err := e.Decide(context.Background(), RecordVisitor, "missing", true)
	if KindOf(err) != KindNotFound {
		t.Errorf("kind = %v, want not_found", KindOf(err))
	}
}
