package appointments

import (
	"encoding/json"
	"net/http"
	"time"

	"gatepass/audit"
	"gatepass/lifecycle"
	"gatepass/middleware"
	"gatepass/models"
	"gatepass/utils"

	"github.com/julienschmidt/httprouter"
)

// Handlers wires the online-booking routes to the lifecycle engine.
type Handlers struct {
	Engine *lifecycle.Engine
}

func NewHandlers(engine *lifecycle.Engine) *Handlers {
	return &Handlers{Engine: engine}
}

type apptView struct {
	models.Visit
	Status lifecycle.Status `json:"status"`
}

func view(v *models.Visit) apptView {
	return apptView{Visit: *v, Status: lifecycle.DeriveStatus(v, time.Now())}
}

func performedBy(r *http.Request) string {
	claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
	if err != nil {
		return "unknown"
	}
	return claims.Username
}

func respondEngineError(w http.ResponseWriter, err error) {
	utils.RespondWithError(w, lifecycle.HTTPStatus(err), err.Error())
}

func (h *Handlers) GetAppointments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := h.Engine.Appointments().List(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}
	out := make([]apptView, 0, len(list))
	now := time.Now()
	for i := range list {
		out = append(out, apptView{Visit: list[i], Status: lifecycle.DeriveStatus(&list[i], now)})
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// GetByContact returns the appointment for a contact number together with
// its derived status, the shape the kiosk polls.
func (h *Handlers) GetByContact(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.Appointments().FindByContact(r.Context(), ps.ByName("contactNumber"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	av := view(v)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"appointment": av,
		"isOverdue":   av.Status == lifecycle.StatusOverdue,
	})
}

// CreateAppointment books an online visit: one appointment row plus its
// linked ONLINE visitor row, both guarded by the intake checks.
func (h *Handlers) CreateAppointment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in lifecycle.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	v, err := h.Engine.BookAppointment(r.Context(), in)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message":     "Saved",
		"appointment": view(v),
	})
}

func (h *Handlers) StartProcessing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.StartProcessing(r.Context(), lifecycle.RecordAppointment, ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	audit.Record(r.Context(), v, "Processing Started", performedBy(r))
	utils.RespondWithJSON(w, http.StatusOK, view(v))
}

func (h *Handlers) MarkProcessed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.MarkProcessed(r.Context(), lifecycle.RecordAppointment, ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	audit.Record(r.Context(), v, "Processed", performedBy(r))
	utils.RespondWithJSON(w, http.StatusOK, view(v))
}

func (h *Handlers) TimeIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.TimeIn(r.Context(), lifecycle.RecordAppointment, ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	audit.Record(r.Context(), v, "Time In", performedBy(r))
	utils.RespondWithJSON(w, http.StatusOK, view(v))
}

func (h *Handlers) TimeOut(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.TimeOut(r.Context(), lifecycle.RecordAppointment, ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	audit.Record(r.Context(), v, "Time Out", performedBy(r))
	utils.RespondWithJSON(w, http.StatusOK, view(v))
}

// Decide mirrors the visitor-side decision endpoint for appointments.
func (h *Handlers) Decide(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Accepted *bool `json:"accepted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Accepted == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "accepted (true/false) is required")
		return
	}
	v, err := h.Engine.Decide(r.Context(), lifecycle.RecordAppointment, ps.ByName("id"), *body.Accepted)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	action := "Declined"
	if *body.Accepted {
		action = "Accepted"
	}
	audit.Record(r.Context(), v, action, performedBy(r))
	utils.RespondWithJSON(w, http.StatusOK, view(v))
}

// SetFeedback is keyed by contact number: the kiosk knows the visitor's
// phone, not the record id.
func (h *Handlers) SetFeedback(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	v, err := h.Engine.SetFeedbackByContact(r.Context(), lifecycle.RecordAppointment, ps.ByName("contactNumber"), body.Feedback)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"appointment": view(v)})
}
