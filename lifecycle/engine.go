package lifecycle

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"gatepass/mailer"
	"gatepass/models"

	"github.com/google/uuid"
)

// At most this many visits plus appointments per contact per calendar day.
const DailyVisitLimit = 2

// RecordType selects which collection a transition targets. A transition on
// either side of a linked pair propagates to the other side.
type RecordType string

const (
	RecordVisitor     RecordType = "visitor"
	RecordAppointment RecordType = "appointment"
)

// Publisher receives lifecycle events for live dashboards. Implementations
// must not block.
type Publisher interface {
	Publish(action string, v *models.Visit)
}

// Engine owns visit state transitions. All collaborators are injected; the
// HTTP layer and the sweep scheduler both drive the same instance.
type Engine struct {
	visits       Store
	appointments Store
	mail         mailer.Mailer
	events       Publisher
	now          func() time.Time
}

func NewEngine(visits, appointments Store, mail mailer.Mailer, events Publisher) *Engine {
	return &Engine{
		visits:       visits,
		appointments: appointments,
		mail:         mail,
		events:       events,
		now:          time.Now,
	}
}

// Visits exposes the visitor store for read-side handlers.
func (e *Engine) Visits() Store { return e.visits }

// Appointments exposes the appointment store for read-side handlers.
func (e *Engine) Appointments() Store { return e.appointments }

// RegisterInput is the intake payload for both creation channels.
type RegisterInput struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
	Office        string `json:"office"`
	Purpose       string `json:"purpose"`
	ScheduledDate string `json:"scheduledDate"` // "2006-01-02", ONLINE only
	ScheduledTime string `json:"scheduledTime"` // "15:04", ONLINE only
	IDFile        string `json:"idFile"`
}

func (in *RegisterInput) validate(online bool) error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.ContactNumber) == "" {
		missing = append(missing, "contactNumber")
	}
	if strings.TrimSpace(in.Office) == "" {
		missing = append(missing, "office")
	}
	if strings.TrimSpace(in.Purpose) == "" {
		missing = append(missing, "purpose")
	}
	if online {
		if in.ScheduledDate == "" {
			missing = append(missing, "scheduledDate")
		}
		if in.ScheduledTime == "" {
			missing = append(missing, "scheduledTime")
		}
	}
	if len(missing) > 0 {
		return E(KindValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	if in.ScheduledDate != "" {
		if _, err := time.Parse("2006-01-02", in.ScheduledDate); err != nil {
			return E(KindValidation, "invalid scheduledDate, want YYYY-MM-DD")
		}
	}
	if in.ScheduledTime != "" {
		if _, err := time.Parse("15:04", in.ScheduledTime); err != nil {
			return E(KindValidation, "invalid scheduledTime, want HH:MM")
		}
	}
	return nil
}

func (e *Engine) buildVisit(in RegisterInput, registrationType string) *models.Visit {
	qr, _ := json.Marshal(map[string]string{
		"contactNumber": in.ContactNumber,
		"name":          in.Name,
	})
	v := &models.Visit{
		VisitID:          uuid.NewString(),
		Name:             strings.TrimSpace(in.Name),
		ContactNumber:    strings.TrimSpace(in.ContactNumber),
		Email:            strings.TrimSpace(in.Email),
		Office:           strings.TrimSpace(in.Office),
		Purpose:          strings.TrimSpace(in.Purpose),
		RegistrationType: registrationType,
		IDFile:           in.IDFile,
		QRData:           string(qr),
		Accepted:         models.DecisionPending,
		CreatedAt:        e.now(),
	}
	if in.ScheduledDate != "" {
		d, _ := time.Parse("2006-01-02", in.ScheduledDate)
		v.ScheduledDate = &d
		v.ScheduledTime = in.ScheduledTime
	}
	return v
}

// Register creates a walk-in visit after running the intake guard.
func (e *Engine) Register(ctx context.Context, in RegisterInput) (*models.Visit, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}
	v := e.buildVisit(in, models.RegistrationWalkIn)
	if err := e.checkIntake(ctx, v); err != nil {
		return nil, err
	}
	// The partial unique index still backstops a concurrent identical
	// registration; Insert maps that duplicate key to the same conflict.
	if err := e.visits.Insert(ctx, v); err != nil {
		return nil, err
	}
	e.publish("registered", v)
	return v, nil
}

// BookAppointment creates an online appointment together with its linked
// ONLINE visit row. The guard counts both collections before either write.
func (e *Engine) BookAppointment(ctx context.Context, in RegisterInput) (*models.Visit, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}
	appt := e.buildVisit(in, models.RegistrationOnline)
	if err := e.checkIntake(ctx, appt); err != nil {
		return nil, err
	}
	if err := e.appointments.Insert(ctx, appt); err != nil {
		return nil, err
	}
	visit := e.buildVisit(in, models.RegistrationOnline)
	if err := e.visits.Insert(ctx, visit); err != nil {
		// A concurrent registration can slip past the guard and trip the
		// unique index here; remove the appointment row so the failed
		// booking leaves nothing behind.
		if delErr := e.appointments.Delete(ctx, appt.VisitID); delErr != nil {
			log.Printf("appointment rollback for %s failed: %v", appt.VisitID, delErr)
		}
		return nil, err
	}
	e.publish("registered", appt)
	return appt, nil
}

// StartProcessing stamps the processing start time. The timestamp is set
// exactly once; repeat calls succeed without touching it.
func (e *Engine) StartProcessing(ctx context.Context, rt RecordType, id string) (*models.Visit, error) {
	v, err := e.primary(rt).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.ProcessingStartedTime != nil {
		return v, nil
	}
	now := e.now()
	upd := models.VisitUpdate{ProcessingStartedTime: &now}
	if err := e.apply(ctx, rt, v, upd); err != nil {
		return nil, err
	}
	e.publish("processing-started", v)
	return v, nil
}

// MarkProcessed stamps office processing as finished. Processing must have
// started first; the derived status alone does not enforce that ordering.
func (e *Engine) MarkProcessed(ctx context.Context, rt RecordType, id string) (*models.Visit, error) {
	v, err := e.primary(rt).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.ProcessingStartedTime == nil {
		return nil, E(KindConflict, "processing has not started")
	}
	if v.OfficeProcessedTime != nil {
		return v, nil
	}
	now := e.now()
	processed := true
	upd := models.VisitUpdate{OfficeProcessedTime: &now, Processed: &processed}
	if err := e.apply(ctx, rt, v, upd); err != nil {
		return nil, err
	}
	e.publish("processed", v)
	return v, nil
}

// TimeIn stamps arrival at the gate.
func (e *Engine) TimeIn(ctx context.Context, rt RecordType, id string) (*models.Visit, error) {
	v, err := e.primary(rt).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.TimeIn != nil {
		return v, nil
	}
	now := e.now()
	if err := e.apply(ctx, rt, v, models.VisitUpdate{TimeIn: &now}); err != nil {
		return nil, err
	}
	e.publish("time-in", v)
	return v, nil
}

// TimeOut stamps departure, ending the active visit.
func (e *Engine) TimeOut(ctx context.Context, rt RecordType, id string) (*models.Visit, error) {
	v, err := e.primary(rt).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.TimeOut != nil {
		return v, nil
	}
	now := e.now()
	if err := e.apply(ctx, rt, v, models.VisitUpdate{TimeOut: &now}); err != nil {
		return nil, err
	}
	e.publish("time-out", v)
	return v, nil
}

// SetFeedback attaches visitor feedback to the record and its linked pair.
func (e *Engine) SetFeedback(ctx context.Context, rt RecordType, id, text string) (*models.Visit, error) {
	v, err := e.primary(rt).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.apply(ctx, rt, v, models.VisitUpdate{Feedback: &text}); err != nil {
		return nil, err
	}
	return v, nil
}

// SetFeedbackByContact is the kiosk path: visitors identify by contact
// number, not record id.
func (e *Engine) SetFeedbackByContact(ctx context.Context, rt RecordType, contact, text string) (*models.Visit, error) {
	v, err := e.primary(rt).FindByContact(ctx, contact)
	if err != nil {
		return nil, err
	}
	if err := e.apply(ctx, rt, v, models.VisitUpdate{Feedback: &text}); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes a record permanently. Hard delete, no tombstone.
func (e *Engine) Delete(ctx context.Context, rt RecordType, id string) error {
	return e.primary(rt).Delete(ctx, id)
}

func (e *Engine) primary(rt RecordType) Store {
	if rt == RecordAppointment {
		return e.appointments
	}
	return e.visits
}

func (e *Engine) mirror(rt RecordType) Store {
	if rt == RecordAppointment {
		return e.visits
	}
	return e.appointments
}

// apply persists upd on the primary record, mirrors the linked projection to
// the paired record, and patches the in-memory copy. Sync failures never
// fail the primary transition.
func (e *Engine) apply(ctx context.Context, rt RecordType, v *models.Visit, upd models.VisitUpdate) error {
	if err := e.primary(rt).Update(ctx, v.VisitID, upd); err != nil {
		return err
	}
	upd.Apply(v)
	e.syncLinked(ctx, rt, v, upd)
	return nil
}

func (e *Engine) syncLinked(ctx context.Context, rt RecordType, v *models.Visit, upd models.VisitUpdate) {
	if rt == RecordVisitor && v.RegistrationType != models.RegistrationOnline {
		return // walk-ins have no linked appointment
	}
	proj := upd.LinkedProjection()
	if proj.Empty() {
		return
	}
	if err := e.mirror(rt).UpdateByContact(ctx, v.ContactNumber, proj); err != nil {
		log.Printf("linked record sync failed for %s: %v", v.ContactNumber, err)
	}
}

func (e *Engine) publish(action string, v *models.Visit) {
	if e.events == nil {
		return
	}
	e.events.Publish(action, v)
}
