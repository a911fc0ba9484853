package suggestions

import (
	"encoding/json"
	"net/http"
	"time"

	"gatepass/db"
	"gatepass/models"
	"gatepass/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func CreateSuggestion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in models.Suggestion
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if in.VisitorName == "" || in.ContactNumber == "" || in.Message == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "visitorName, contactNumber and message are required")
		return
	}
	in.CreatedAt = time.Now()

	if _, err := db.SuggestionsCollection.InsertOne(r.Context(), in); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save suggestion")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"suggestion": in})
}

func GetSuggestions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := db.SuggestionsCollection.Find(r.Context(), bson.M{}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch suggestions")
		return
	}
	defer cur.Close(r.Context())

	var list []models.Suggestion
	if err := cur.All(r.Context(), &list); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch suggestions")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}
