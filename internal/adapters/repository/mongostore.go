package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/nvoss/goalfeed/internal/domain/model"
	"github.com/nvoss/goalfeed/pkg/logger"
	"github.com/nvoss/goalfeed/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultCompletedLimit = 20
	connectTimeout        = 10 * time.Second
)

// MongoStore reads fixtures from MongoDB. The client is long-lived and
// constructed once at startup (explicit dependency injection, no lazy
// globals); this type never writes fixture data.
type MongoStore struct {
	client         *mongo.Client
	db             string
	staging        string
	active         string
	completed      string
	completedLimit int64
	logger         logger.Logger
}

// NewMongoStore connects to uri and verifies reachability before returning.
// A store that cannot be reached at startup fails fast.
func NewMongoStore(ctx context.Context, uri string, opts ...Option) (*MongoStore, error) {
	s := &MongoStore{
		db:             "goalfeed",
		staging:        "fixtures_staging",
		active:         "fixtures_active",
		completed:      "fixtures_completed",
		completedLimit: defaultCompletedLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, mongooptions.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrStoreUnavailable, err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping: %v", ErrStoreUnavailable, err)
	}
	s.client = client

	s.logger.Info(ctx, "connected to document store",
		logger.String("database", s.db),
		logger.Int("completedLimit", int(s.completedLimit)),
	)
	return s, nil
}

// FetchAll reads the three collections with their sort policies applied.
func (s *MongoStore) FetchAll(ctx context.Context) (model.FixtureSnapshot, error) {
	start := time.Now()

	staging, err := s.fetch(ctx, s.staging, bson.D{
		{Key: "kickoff_time", Value: 1},
	}, 0)
	if err != nil {
		metrics.RecordStoreError()
		return model.FixtureSnapshot{}, err
	}

	active, err := s.fetch(ctx, s.active, bson.D{
		{Key: "last_activity", Value: -1},
		{Key: "kickoff_time", Value: -1},
	}, 0)
	if err != nil {
		metrics.RecordStoreError()
		return model.FixtureSnapshot{}, err
	}

	completed, err := s.fetch(ctx, s.completed, bson.D{
		{Key: "kickoff_time", Value: -1},
	}, s.completedLimit)
	if err != nil {
		metrics.RecordStoreError()
		return model.FixtureSnapshot{}, err
	}

	metrics.RecordStoreFetchLatency(float64(time.Since(start).Milliseconds()))
	return model.FixtureSnapshot{
		Staging:   staging,
		Active:    active,
		Completed: completed,
	}, nil
}

func (s *MongoStore) fetch(ctx context.Context, coll string, sort bson.D, limit int64) ([]model.Fixture, error) {
	findOpts := mongooptions.Find().SetSort(sort)
	if limit > 0 {
		findOpts.SetLimit(limit)
	}

	cur, err := s.client.Database(s.db).Collection(coll).Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrStoreUnavailable, coll, err)
	}

	// Empty collections decode to an empty slice, not nil, so snapshot JSON
	// always carries three arrays.
	fixtures := make([]model.Fixture, 0)
	if err := cur.All(ctx, &fixtures); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStoreUnavailable, coll, err)
	}
	return fixtures, nil
}

// Ping issues a primary read-preference ping.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect document store: %w", err)
	}
	return nil
}
