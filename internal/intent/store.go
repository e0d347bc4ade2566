package intent

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ledgermind/internal/database"
	"ledgermind/internal/models"
)

// FindOptions shapes a Find call: sort order, page size, offset
type FindOptions struct {
	Sort  bson.D
	Limit int64
	Skip  int64
}

// RecordStore is the engine's only view of the transaction store. Handlers
// depend on this interface; the Mongo implementation below is the production
// binding and tests substitute a fake.
type RecordStore interface {
	Find(ctx context.Context, predicate bson.M, opts FindOptions) ([]models.Transaction, error)
	Count(ctx context.Context, predicate bson.M) (int64, error)
	Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error)
	Create(ctx context.Context, tx *models.Transaction) (string, error)
	UpdateOne(ctx context.Context, id, userID string, updates bson.M) (matched, modified int64, err error)
	UpdateMany(ctx context.Context, predicate bson.M, updates bson.M) (matched, modified int64, err error)
	DeleteOne(ctx context.Context, id, userID string) (deleted int64, err error)
	DeleteMany(ctx context.Context, predicate bson.M) (deleted int64, err error)

	PaydayLookup
}

// MongoStore is the RecordStore implementation over the transactions
// collection.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a store bound to the transactions collection
func NewMongoStore(db *database.MongoDB) *MongoStore {
	return &MongoStore{collection: db.Collection(database.CollectionTransactions)}
}

// Find returns one page of transactions matching the predicate
func (s *MongoStore) Find(ctx context.Context, predicate bson.M, opts FindOptions) ([]models.Transaction, error) {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}

	cursor, err := s.collection.Find(ctx, predicate, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.Transaction
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Transaction{}
	}
	return records, nil
}

// Count returns the number of transactions matching the predicate
func (s *MongoStore) Count(ctx context.Context, predicate bson.M) (int64, error) {
	return s.collection.CountDocuments(ctx, predicate)
}

// Aggregate runs an aggregation pipeline and returns the raw result rows
func (s *MongoStore) Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error) {
	stages := make(mongo.Pipeline, len(pipeline))
	for i, stage := range pipeline {
		doc := bson.D{}
		for k, v := range stage {
			doc = append(doc, bson.E{Key: k, Value: v})
		}
		stages[i] = doc
	}

	cursor, err := s.collection.Aggregate(ctx, stages)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a transaction and returns its id
func (s *MongoStore) Create(ctx context.Context, tx *models.Transaction) (string, error) {
	result, err := s.collection.InsertOne(ctx, tx)
	if err != nil {
		return "", err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return "", errors.New("store returned a non-ObjectID insert id")
}

// UpdateOne applies a $set update to the record with the given id, scoped by
// owner
func (s *MongoStore) UpdateOne(ctx context.Context, id, userID string, updates bson.M) (int64, int64, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return 0, 0, err
	}

	result, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": userID},
		bson.M{"$set": updates})
	if err != nil {
		return 0, 0, err
	}
	return result.MatchedCount, result.ModifiedCount, nil
}

// UpdateMany applies a $set update to every record matching the predicate
func (s *MongoStore) UpdateMany(ctx context.Context, predicate bson.M, updates bson.M) (int64, int64, error) {
	result, err := s.collection.UpdateMany(ctx, predicate, bson.M{"$set": updates})
	if err != nil {
		return 0, 0, err
	}
	return result.MatchedCount, result.ModifiedCount, nil
}

// DeleteOne removes the record with the given id, scoped by owner
func (s *MongoStore) DeleteOne(ctx context.Context, id, userID string) (int64, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return 0, err
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteMany removes every record matching the predicate
func (s *MongoStore) DeleteMany(ctx context.Context, predicate bson.M) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, predicate)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// salaryLabelPattern is the income-label heuristic for payday detection,
// matched case-insensitively in either category or description
const salaryLabelPattern = `(salary|sal[áa]rio)`

// LastPaydayBefore finds the date of the most recent salary-like income
// record for the user. Returns found=false when the user has none.
func (s *MongoStore) LastPaydayBefore(ctx context.Context, userID string, before time.Time) (time.Time, bool, error) {
	labelRegex := primitive.Regex{Pattern: salaryLabelPattern, Options: "i"}
	filter := bson.M{
		"user_id": userID,
		"type":    models.TransactionTypeIncome,
		"date":    bson.M{"$lte": before},
		"$or": []bson.M{
			{"category": labelRegex},
			{"description": labelRegex},
		},
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var record models.Transaction
	err := s.collection.FindOne(ctx, filter, opts).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return record.Date, true, nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, NewValidationError("invalid record id", []FieldError{{"id", "must be a 24-character hex id"}})
	}
	return oid, nil
}
