package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"jobboard/geo-service/internal/db"
	"jobboard/geo-service/internal/geo"
	"jobboard/geo-service/internal/model"
)

const (
	jobsCollection  = "jobs"
	usersCollection = "users"
)

// MongoStore reads the jobs and users collections of one database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri and selects database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" || database == "" {
		return nil, errors.New("mongo backend requires MONGODB_URI and MONGODB_DATABASE")
	}
	client, err := db.NewMongoClient(ctx, uri)
	if err != nil {
		return nil, err
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) ListJobs(ctx context.Context) ([]model.Job, error) {
	return findAll[model.Job](ctx, s.db.Collection(jobsCollection))
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]model.User, error) {
	return findAll[model.User](ctx, s.db.Collection(usersCollection))
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getUser: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) UpdateJobLocation(ctx context.Context, id string, c geo.Coordinate) (*model.Job, error) {
	var j model.Job
	if err := s.updateLocation(ctx, jobsCollection, id, c, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *MongoStore) UpdateUserLocation(ctx context.Context, id string, c geo.Coordinate) (*model.User, error) {
	var u model.User
	if err := s.updateLocation(ctx, usersCollection, id, c, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) updateLocation(ctx context.Context, coll, id string, c geo.Coordinate, dst any) error {
	update := bson.M{"$set": bson.M{"latitude": c.Latitude, "longitude": c.Longitude}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	err := s.db.Collection(coll).FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(dst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update %s location: %w", coll, err)
	}
	return nil
}

// findAll decodes every document of coll, skipping the ones that do not fit
// the model.
func findAll[T any](ctx context.Context, coll *mongo.Collection) ([]T, error) {
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	for cursor.Next(ctx) {
		var v T
		if err := cursor.Decode(&v); err != nil {
			slog.Warn("skipping undecodable document", "collection", coll.Name(), "err", err)
			continue
		}
		out = append(out, v)
	}
	return out, cursor.Err()
}
