// Package mongo stores shop records in MongoDB. Integer identifiers are drawn
// from a counters collection so records keep the same shape as in the SQL
// stores.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

const (
	collectionClients   = "clients"
	collectionEmployees = "employees"
	collectionOrders    = "orders"
	collectionReports   = "reports"
	collectionCounters  = "counters"
)

// Config captures the settings required to reach the shop database.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}

// Store implements ports.ProvisionedStore on a MongoDB database.
type Store struct {
	client    *mongo.Client
	db        *mongo.Database
	clients   *mongo.Collection
	employees *mongo.Collection
	orders    *mongo.Collection
	reports   *mongo.Collection
	counters  *mongo.Collection
}

var _ ports.ProvisionedStore = (*Store)(nil)

// Open connects, then creates the indexes the store relies on.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client, db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := newStore(client, db)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return s, nil
}

func newStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:    client,
		db:        db,
		clients:   db.Collection(collectionClients),
		employees: db.Collection(collectionEmployees),
		orders:    db.Collection(collectionOrders),
		reports:   db.Collection(collectionReports),
		counters:  db.Collection(collectionCounters),
	}
}

// EnsureIndexes creates the unique email index and the client_id lookups.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.clients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	for _, col := range []*mongo.Collection{s.orders, s.reports} {
		if _, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "client_id", Value: 1}},
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// nextID atomically increments and returns the counter for collection.
func (s *Store) nextID(ctx context.Context, collection string) (int64, error) {
	var c counterDoc
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", collection, err)
	}
	return c.Seq, nil
}

// bumpCounter moves the counter for collection to at least id.
func (s *Store) bumpCounter(ctx context.Context, collection string, id int64) error {
	_, err := s.counters.UpdateOne(ctx,
		bson.M{"_id": collection},
		bson.M{"$max": bson.M{"seq": id}},
		options.Update().SetUpsert(true),
	)
	return err
}

func findOne[D any](ctx context.Context, col *mongo.Collection, filter bson.M) (*D, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc D
	err := col.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", col.Name(), err)
	}
	return &doc, nil
}

func findAll[D any](ctx context.Context, col *mongo.Collection, filter bson.M) ([]D, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", col.Name(), err)
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", col.Name(), err)
	}
	return docs, nil
}

func replaceByID(ctx context.Context, col *mongo.Collection, id int64, doc any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := col.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("replace in %s: %w", col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
