package store

import (
	"context"
	"errors"
	"time"

	"gatepass/lifecycle"
	"gatepass/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements lifecycle.Store on one collection. Visitors and
// appointments each get their own instance over their own collection.
type Mongo struct {
	coll *mongo.Collection
}

func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll}
}

func (m *Mongo) Insert(ctx context.Context, v *models.Visit) error {
	_, err := m.coll.InsertOne(ctx, v)
	if mongo.IsDuplicateKeyError(err) {
		return lifecycle.E(lifecycle.KindDuplicateActive, "visitor already registered and not yet timed out")
	}
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindDependency, "insert failed", err)
	}
	return nil
}

func (m *Mongo) FindByID(ctx context.Context, id string) (*models.Visit, error) {
	return m.findOne(ctx, bson.M{"visitid": id})
}

func (m *Mongo) FindByContact(ctx context.Context, contact string) (*models.Visit, error) {
	return m.findOne(ctx, bson.M{"contactNumber": contact})
}

func (m *Mongo) FindActive(ctx context.Context, contact string) (*models.Visit, error) {
	return m.findOne(ctx, bson.M{"contactNumber": contact, "timeOut": nil})
}

func (m *Mongo) findOne(ctx context.Context, filter bson.M) (*models.Visit, error) {
	var v models.Visit
	err := m.coll.FindOne(ctx, filter).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, lifecycle.E(lifecycle.KindNotFound, "record not found")
	}
	if err != nil {
		return nil, lifecycle.Wrap(lifecycle.KindDependency, "lookup failed", err)
	}
	return &v, nil
}

func (m *Mongo) CountInWindow(ctx context.Context, contact string, from, to time.Time) (int64, error) {
	window := bson.M{"$gte": from, "$lt": to}
	filter := bson.M{
		"contactNumber": contact,
		"$or": []bson.M{
			{"scheduledDate": window},
			{"scheduledDate": nil, "createdAt": window},
		},
	}
	n, err := m.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, lifecycle.Wrap(lifecycle.KindDependency, "count failed", err)
	}
	return n, nil
}

func (m *Mongo) Update(ctx context.Context, id string, upd models.VisitUpdate) error {
	set := setDoc(upd)
	if len(set) == 0 {
		return nil
	}
	res, err := m.coll.UpdateOne(ctx, bson.M{"visitid": id}, bson.M{"$set": set})
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindDependency, "update failed", err)
	}
	if res.MatchedCount == 0 {
		return lifecycle.E(lifecycle.KindNotFound, "record not found")
	}
	return nil
}

func (m *Mongo) UpdateByContact(ctx context.Context, contact string, upd models.VisitUpdate) error {
	set := setDoc(upd)
	if len(set) == 0 {
		return nil
	}
	res, err := m.coll.UpdateOne(ctx, bson.M{"contactNumber": contact}, bson.M{"$set": set})
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindDependency, "update failed", err)
	}
	if res.MatchedCount == 0 {
		return lifecycle.E(lifecycle.KindNotFound, "record not found")
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"visitid": id})
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindDependency, "delete failed", err)
	}
	if res.DeletedCount == 0 {
		return lifecycle.E(lifecycle.KindNotFound, "record not found")
	}
	return nil
}

func (m *Mongo) List(ctx context.Context) ([]models.Visit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, lifecycle.Wrap(lifecycle.KindDependency, "list failed", err)
	}
	defer cur.Close(ctx)
	var visits []models.Visit
	if err := cur.All(ctx, &visits); err != nil {
		return nil, lifecycle.Wrap(lifecycle.KindDependency, "decode failed", err)
	}
	return visits, nil
}

func (m *Mongo) OverdueCandidates(ctx context.Context, cutoff time.Time) ([]models.Visit, error) {
	filter := bson.M{
		"officeProcessedTime": bson.M{"$ne": nil, "$lte": cutoff},
		"timeOut":             nil,
		"overdueEmailSent":    false,
		"email":               bson.M{"$nin": []interface{}{nil, ""}},
	}
	cur, err := m.coll.Find(ctx, filter)
	if err != nil {
		return nil, lifecycle.Wrap(lifecycle.KindDependency, "overdue scan failed", err)
	}
	defer cur.Close(ctx)
	var visits []models.Visit
	if err := cur.All(ctx, &visits); err != nil {
		return nil, lifecycle.Wrap(lifecycle.KindDependency, "decode failed", err)
	}
	return visits, nil
}

func (m *Mongo) ClaimOverdueNotice(ctx context.Context, id string) (bool, error) {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"visitid": id, "overdueEmailSent": false},
		bson.M{"$set": bson.M{"overdueEmailSent": true}},
	)
	if err != nil {
		return false, lifecycle.Wrap(lifecycle.KindDependency, "claim failed", err)
	}
	return res.ModifiedCount == 1, nil
}

func (m *Mongo) ReleaseOverdueNotice(ctx context.Context, id string) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"visitid": id},
		bson.M{"$set": bson.M{"overdueEmailSent": false}},
	)
	if err != nil {
		return lifecycle.Wrap(lifecycle.KindDependency, "claim release failed", err)
	}
	return nil
}

func setDoc(u models.VisitUpdate) bson.M {
	set := bson.M{}
	if u.TimeIn != nil {
		set["timeIn"] = *u.TimeIn
	}
	if u.TimeOut != nil {
		set["timeOut"] = *u.TimeOut
	}
	if u.ProcessingStartedTime != nil {
		set["processingStartedTime"] = *u.ProcessingStartedTime
	}
	if u.OfficeProcessedTime != nil {
		set["officeProcessedTime"] = *u.OfficeProcessedTime
	}
	if u.Processed != nil {
		set["processed"] = *u.Processed
	}
	if u.Feedback != nil {
		set["feedback"] = *u.Feedback
	}
	if u.Accepted != nil {
		set["accepted"] = *u.Accepted
	}
	if u.DecisionEmailSent != nil {
		set["decisionEmailSent"] = *u.DecisionEmailSent
	}
	if u.IDFile != nil {
		set["idFile"] = *u.IDFile
	}
	return set
}
