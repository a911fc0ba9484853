package audit

import (
	"context"
	"log"
	"net/http"
	"time"

	"gatepass/db"
	"gatepass/middleware"
	"gatepass/models"
	"gatepass/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Newest-first listings stop here; the dashboard never pages further back.
const listLimit = 200

// Record appends an audit entry. Audit is attribution, not authorization: a
// write failure is logged and never fails the action it describes.
func Record(ctx context.Context, v *models.Visit, action, performedBy string) {
	entry := models.AuditEntry{
		VisitID:       v.VisitID,
		VisitorName:   v.Name,
		VisitorOffice: v.Office,
		Action:        action,
		PerformedBy:   performedBy,
		Timestamp:     time.Now(),
	}
	if _, err := db.AuditTrailCollection.InsertOne(ctx, entry); err != nil {
		log.Printf("audit write failed for %s: %v", v.VisitID, err)
	}
}

// GetAuditTrail lists recent entries. Office Staff see only their own
// office; admins may filter with ?office=.
func GetAuditTrail(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := bson.M{}
	if claims.Role == models.RoleOfficeStaff {
		query["visitorOffice"] = claims.Office
	} else if office := r.URL.Query().Get("office"); office != "" {
		query["visitorOffice"] = office
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(listLimit)
	cur, err := db.AuditTrailCollection.Find(r.Context(), query, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch audit trail")
		return
	}
	defer cur.Close(r.Context())

	var logs []models.AuditEntry
	if err := cur.All(r.Context(), &logs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch audit trail")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, logs)
}
