package scenario

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection is the collection MongoStore uses.
const DefaultCollection = "scenarios"

// MongoStore is a Store backed by a MongoDB collection with a unique index
// on the scenario name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// document is the stored form of a scenario.
type document struct {
	Scenario  `bson:",inline"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to uri and prepares the scenarios collection in
// database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultCollection),
	}
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return s, nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, name string) (*Scenario, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("find scenario: %w", err)
	}
	return &doc.Scenario, nil
}

// Put implements Store.
func (s *MongoStore) Put(ctx context.Context, sc *Scenario) error {
	if err := checkPut(sc); err != nil {
		return err
	}
	doc := document{Scenario: *sc, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"name": sc.Name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store scenario: %w", err)
	}
	return nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cur, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"name": 1}).SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Name string `bson:"name"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names, nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
