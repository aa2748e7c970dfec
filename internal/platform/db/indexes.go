package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collation used for case-insensitive name lookups.
var collation = options.Collation{Locale: "en", Strength: 1}

// indexModels lists the secondary indexes per collection. The blood test
// indexes back the patient history queries, which always sort on test_date.
var indexModels = map[string][]mongo.IndexModel{
	BloodTestsCollection: {
		{
			Keys: bson.D{
				{Key: "patient_id", Value: 1},
				{Key: "test_date", Value: -1},
			},
			Options: options.Index().SetName("PatientTestDate"),
		},
		{
			Keys: bson.D{
				{Key: "patient_id", Value: 1},
				{Key: "test_type", Value: 1},
				{Key: "test_date", Value: -1},
			},
			Options: options.Index().SetName("PatientTestTypeDate"),
		},
	},
	PatientsCollection: {
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("PatientName").SetCollation(&collation),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("PatientEmail"),
		},
	},
	ExamTypesCollection: {
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("ExamTypeName").SetCollation(&collation),
		},
	},
}

// EnsureIndexes creates the secondary indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, database *mongo.Database) (int, error) {
	created := 0
	for _, coll := range []string{BloodTestsCollection, PatientsCollection, ExamTypesCollection} {
		names, err := database.Collection(coll).Indexes().CreateMany(ctx, indexModels[coll])
		if err != nil {
			return created, fmt.Errorf("create indexes on %s: %w", coll, err)
		}
		created += len(names)
	}
	return created, nil
}
