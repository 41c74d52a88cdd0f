package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const restaurantCollection = "restaurant"

// MongoAvailabilityStore keeps the single restaurant-wide ordering toggle.
type MongoAvailabilityStore struct {
	coll *mongo.Collection
}

func NewAvailabilityStore(db *mongo.Database) *MongoAvailabilityStore {
	return &MongoAvailabilityStore{coll: db.Collection(restaurantCollection)}
}

type restaurantDoc struct {
	Name   string `bson:"name"`
	IsOpen bool   `bson:"is_open"`
}

func (s *MongoAvailabilityStore) SetOpen(ctx context.Context, open bool) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"name": "spoon"},
		bson.M{"$set": bson.M{"is_open": open}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("set availability: %w", err)
	}
	return nil
}

func (s *MongoAvailabilityStore) IsOpen(ctx context.Context) (bool, error) {
	var doc restaurantDoc
	if err := s.coll.FindOne(ctx, bson.M{"name": "spoon"}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			// no record yet means ordering has never been switched off
			return true, nil
		}
		return false, fmt.Errorf("get availability: %w", err)
	}
	return doc.IsOpen, nil
}
