package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	VisitorsCollection        *mongo.Collection
	AppointmentsCollection    *mongo.Collection
	UsersCollection           *mongo.Collection
	VisitorAccountsCollection *mongo.Collection
	AuditTrailCollection      *mongo.Collection
	SuggestionsCollection     *mongo.Collection
	Client                    *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("gatepassdb")
	VisitorsCollection = database.Collection("visitors")
	AppointmentsCollection = database.Collection("appointments")
	UsersCollection = database.Collection("users")
	VisitorAccountsCollection = database.Collection("visitor_accounts")
	AuditTrailCollection = database.Collection("audit_trail")
	SuggestionsCollection = database.Collection("suggestions")
}

// EnsureIndexes creates the indexes the intake guard and the list endpoints
// rely on. The partial unique index on active visits is what makes the
// duplicate-registration check atomic: even if two identical registrations
// pass the pre-checks concurrently, the second insert fails.
func EnsureIndexes(ctx context.Context) error {
	activeUnique := mongo.IndexModel{
		Keys:    bson.D{{Key: "contactNumber", Value: 1}},
		Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"timeOut": bson.M{"$type": "null"}}),
	}
	dailyLookup := mongo.IndexModel{
		Keys: bson.D{{Key: "contactNumber", Value: 1}, {Key: "scheduledDate", Value: 1}},
	}
	newestFirst := mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}
	decisionFilter := mongo.IndexModel{
		Keys: bson.D{{Key: "accepted", Value: 1}},
	}

	if _, err := VisitorsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{activeUnique, dailyLookup, newestFirst, decisionFilter}); err != nil {
		return err
	}
	if _, err := AppointmentsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{dailyLookup, newestFirst}); err != nil {
		return err
	}

	emailUnique := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := UsersCollection.Indexes().CreateOne(ctx, emailUnique); err != nil {
		return err
	}
	if _, err := VisitorAccountsCollection.Indexes().CreateOne(ctx, emailUnique); err != nil {
		return err
	}

	auditRecent := mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	}
	_, err := AuditTrailCollection.Indexes().CreateOne(ctx, auditRecent)
	return err
}
