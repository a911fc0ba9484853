package lifecycle

import (
	"context"
	"fmt"
	"log"

	"gatepass/models"
)

// Decide records the staff accept/decline call and mirrors it to the linked
// record. The notification email fires at most once per visit: a later
// reversal overwrites the decision but is deliberately not re-communicated,
// matching the long-standing front-desk workflow.
func (e *Engine) Decide(ctx context.Context, rt RecordType, id string, accepted bool) (*models.Visit, error) {
	v, err := e.primary(rt).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := models.DecisionDeclined
	if accepted {
		decision = models.DecisionAccepted
	}
	if err := e.apply(ctx, rt, v, models.VisitUpdate{Accepted: &decision}); err != nil {
		return nil, err
	}
	e.publish("decision", v)

	// Best effort: a failed send is logged and never retried, and never
	// fails the decision itself.
	if v.Email == "" || v.DecisionEmailSent {
		return v, nil
	}
	subject, body := decisionMessage(v, accepted)
	if err := e.mail.Send(v.Email, subject, body); err != nil {
		log.Printf("decision email to %s failed: %v", v.Email, err)
		return v, nil
	}
	sent := true
	if err := e.primary(rt).Update(ctx, v.VisitID, models.VisitUpdate{DecisionEmailSent: &sent}); err != nil {
		log.Printf("decision email flag update for %s failed: %v", v.VisitID, err)
		return v, nil
	}
	v.DecisionEmailSent = true
	return v, nil
}

func decisionMessage(v *models.Visit, accepted bool) (subject, body string) {
	if accepted {
		return "Visit Accepted",
			fmt.Sprintf("Hello %s, your visit to %s has been accepted. Please proceed to the guard on arrival.", v.Name, v.Office)
	}
	return "Visit Declined",
		fmt.Sprintf("Hello %s, your visit to %s has been declined. Please contact the office for details.", v.Name, v.Office)
}
