package users

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"gatepass/db"
	"gatepass/models"
	"gatepass/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

var validRoles = map[string]bool{
	models.RoleSuperAdmin:  true,
	models.RoleAdmin:       true,
	models.RoleOfficeStaff: true,
	models.RoleGuard:       true,
}

type userInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Office   string `json:"office"`
	Active   *bool  `json:"active"`
}

func GetUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := db.UsersCollection.Find(r.Context(), bson.M{}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	defer cur.Close(r.Context())

	var list []models.User
	if err := cur.All(r.Context(), &list); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

func CreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in userInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if in.Name == "" || in.Email == "" || in.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}
	if in.Role == "" {
		in.Role = models.RoleGuard
	}
	if !validRoles[in.Role] {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown role")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	user := models.User{
		UserID:    uuid.NewString(),
		Name:      in.Name,
		Email:     strings.ToLower(in.Email),
		Password:  string(hashed),
		Role:      in.Role,
		Office:    in.Office,
		Active:    active,
		CreatedAt: time.Now(),
	}
	if _, err := db.UsersCollection.InsertOne(r.Context(), user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusBadRequest, "Email already exists")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, user)
}

func UpdateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("id")

	var in userInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	set := bson.M{}
	if in.Name != "" {
		set["name"] = in.Name
	}
	if in.Email != "" {
		set["email"] = strings.ToLower(in.Email)
	}
	if in.Role != "" {
		if !validRoles[in.Role] {
			utils.RespondWithError(w, http.StatusBadRequest, "Unknown role")
			return
		}
		set["role"] = in.Role
	}
	if in.Office != "" {
		set["office"] = in.Office
	}
	if in.Active != nil {
		set["active"] = *in.Active
	}
	if in.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update user")
			return
		}
		set["password"] = string(hashed)
	}
	if len(set) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	res := db.UsersCollection.FindOneAndUpdate(r.Context(),
		bson.M{"userid": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var user models.User
	if err := res.Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// ToggleUserStatus flips the active flag, locking or unlocking the account.
func ToggleUserStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("id")

	var user models.User
	if err := db.UsersCollection.FindOne(r.Context(), bson.M{"userid": userID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	user.Active = !user.Active
	if _, err := db.UsersCollection.UpdateOne(r.Context(),
		bson.M{"userid": userID},
		bson.M{"$set": bson.M{"active": user.Active}},
	); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to toggle status")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}
