package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"gatepass/db"
	"gatepass/globals"
	"gatepass/middleware"
	"gatepass/models"
	"gatepass/rdx"
	"gatepass/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 12 * time.Hour

// sessionsHash is the redis hash of live tokens, keyed by user id. Logout
// removes the entry.
const sessionsHash = "sessions"

func generateAccessToken(userID, name, role, office string) (string, error) {
	claims := &middleware.Claims{
		Username: name,
		UserID:   userID,
		Role:     role,
		Office:   office,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

// OfficeLogin authenticates dashboard staff. Only Admin and Office Staff
// accounts may log in here; inactive accounts are rejected.
func OfficeLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Email == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	var user models.User
	err := db.UsersCollection.FindOne(r.Context(), bson.M{"email": strings.ToLower(input.Email)}).Decode(&user)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if user.Role != models.RoleAdmin && user.Role != models.RoleOfficeStaff {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.Active {
		utils.RespondWithError(w, http.StatusForbidden, "Account inactive")
		return
	}

	tokenString, err := generateAccessToken(user.UserID, user.Name, user.Role, user.Office)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	if err := rdx.RdxHset(sessionsHash, user.UserID, tokenString); err != nil {
		log.Printf("Redis token storage failed: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":  tokenString,
		"userid": user.UserID,
		"name":   user.Name,
		"email":  user.Email,
		"role":   user.Role,
		"office": user.Office,
		"active": user.Active,
	})
}

// BootstrapAdmin creates the first Admin account if none exists yet.
func BootstrapAdmin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	count, err := db.UsersCollection.CountDocuments(r.Context(), bson.M{"role": models.RoleAdmin})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Admin already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	admin := models.User{
		UserID:    uuid.NewString(),
		Name:      "Admin",
		Email:     "admin@example.com",
		Password:  string(hashed),
		Role:      models.RoleAdmin,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if _, err := db.UsersCollection.InsertOne(r.Context(), admin); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Default Admin created",
		"email":   admin.Email,
	})
}

// RegisterVisitorAccount creates a self-service account for online bookings.
func RegisterVisitorAccount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		Password      string `json:"password"`
		ContactNumber string `json:"contactNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Name == "" || input.Email == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	account := models.VisitorAccount{
		AccountID:     uuid.NewString(),
		Name:          input.Name,
		Email:         strings.ToLower(input.Email),
		Password:      string(hashed),
		ContactNumber: input.ContactNumber,
		CreatedAt:     time.Now(),
	}
	if _, err := db.VisitorAccountsCollection.InsertOne(r.Context(), account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, account)
}

// LoginVisitorAccount authenticates an online visitor.
func LoginVisitorAccount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	var account models.VisitorAccount
	err := db.VisitorAccountsCollection.FindOne(r.Context(), bson.M{"email": strings.ToLower(input.Email)}).Decode(&account)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, account)
}

// ValidateSession reports whether the caller's token is still the live one
// for their account. The dashboard calls this on load so a token revoked by
// Logout elsewhere is caught before it expires.
func ValidateSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	cached, err := rdx.RdxHget(sessionsHash, userID)
	if err != nil || "Bearer "+cached != r.Header.Get("Authorization") {
		utils.RespondWithError(w, http.StatusUnauthorized, "Session expired")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"valid": true})
}

// Logout revokes the caller's cached session token.
func Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := rdx.RdxHdel(sessionsHash, userID); err != nil {
		log.Printf("Redis token removal failed: %v", err)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Logged out"})
}
