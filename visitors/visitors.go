package visitors

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

// Handlers wires the visitor routes to the lifecycle engine.
type Handlers struct {
	Engine *lifecycle.Engine
}

func NewHandlers(engine *lifecycle.Engine) *Handlers {
	return &Handlers{Engine: engine}
}

// visitView decorates a stored record with its derived status for the
// frontend, which never computes status itself.
type visitView struct {
	models.Visit
	Status lifecycle.Status `json:"status"`
}

func view(v *models.Visit) visitView {
	return visitView{Visit: *v, Status: lifecycle.DeriveStatus(v, time.Now())}
}

func views(list []models.Visit) []visitView {
	out := make([]visitView, 0, len(list))
	now := time.Now()
	for i := range list {
		out = append(out, visitView{Visit: list[i], Status: lifecycle.DeriveStatus(&list[i], now)})
	}
	return out
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

func (h *Handlers) GetVisitors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := h.Engine.Visits().List(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, views(list))
}

func (h *Handlers) GetVisitor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.Visits().FindByID(r.Context(), ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view(v))
}

// RegisterVisitor creates a walk-in record after the intake guard passes.
func (h *Handlers) RegisterVisitor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in lifecycle.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	v, err := h.Engine.Register(r.Context(), in)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	audit.Record(r.Context(), v, "Registered", performedBy(r))
	utils.RespondWithJSON(w, http.StatusCreated, view(v))
}

func (h *Handlers) TimeIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.TimeIn(r.Context(), lifecycle.RecordVisitor, ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	audit.Record(r.Context(), v, "Time In", performedBy(r))
	utils.RespondWithJSON(w, http.StatusOK, view(v))
}

func (h *Handlers) TimeOut(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.TimeOut(r.Context(), lifecycle.RecordVisitor, ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	audit.Record(r.Context(), v, "Time Out", performedBy(r))
	utils.RespondWithJSON(w, http.StatusOK, view(v))
}

func (h *Handlers) StartProcessing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.StartProcessing(r.Context(), lifecycle.RecordVisitor, ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	audit.Record(r.Context(), v, "Processing Started", performedBy(r))
	utils.RespondWithJSON(w, http.StatusOK, view(v))
}

func (h *Handlers) MarkProcessed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.MarkProcessed(r.Context(), lifecycle.RecordVisitor, ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	audit.Record(r.Context(), v, "Processed", performedBy(r))
	utils.RespondWithJSON(w, http.StatusOK, view(v))
}

// Decide records the accept/decline call.
func (h *Handlers) Decide(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Accepted *bool `json:"accepted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Accepted == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "accepted (true/false) is required")
		return
	}
	v, err := h.Engine.Decide(r.Context(), lifecycle.RecordVisitor, ps.ByName("id"), *body.Accepted)
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

func (h *Handlers) SetFeedback(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	v, err := h.Engine.SetFeedback(r.Context(), lifecycle.RecordVisitor, ps.ByName("id"), body.Feedback)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view(v))
}

func (h *Handlers) DeleteVisitor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.Visits().FindByID(r.Context(), ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	if err := h.Engine.Delete(r.Context(), lifecycle.RecordVisitor, v.VisitID); err != nil {
		respondEngineError(w, err)
		return
	}
	audit.Record(r.Context(), v, "Deleted", performedBy(r))
	w.WriteHeader(http.StatusNoContent)
}
