package history

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultDatabase is used when MongoOptions.Database is empty.
const DefaultDatabase = "burrow"

const runsCollection = "runs"

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	URI      string
	Database string
}

// MongoStore keeps runs in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// NewMongoStore connects to MongoDB, checks the connection and makes sure
// the created_at index exists.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	runs := client.Database(opts.Database).Collection(runsCollection)
	_, err = runs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, runs: runs}, nil
}

func (s *MongoStore) Record(ctx context.Context, run *Run) error {
	prepare(run)
	if _, err := s.runs.InsertOne(ctx, run); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.runs.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find run %s: %w", id, err)
	}
	return &run, nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]*Run, error) {
	find := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(normalizeLimit(limit))).
		SetProjection(bson.M{"moves": 0})

	cur, err := s.runs.Find(ctx, bson.M{}, find)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var out []*Run
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode runs: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
