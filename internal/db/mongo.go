package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

// Collection names shared by the services.
const (
	UsersCollection          = "users"
	PropertiesCollection     = "properties"
	OffersCollection         = "offers"
	ReviewsCollection        = "reviews"
	WishlistsCollection      = "wishlists"
	EmailTemplatesCollection = "email_templates"
)

// ConnectDB initializes and returns a MongoDB client and database instance.
func ConnectDB(uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	utils.Logger().Info("connected to MongoDB", zap.String("database", dbName))
	return client, client.Database(dbName), nil
}

// DisconnectDB closes the MongoDB client connection.
func DisconnectDB(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	utils.Logger().Info("MongoDB connection closed")
	return nil
}

// EnsureIndexes creates the unique and lookup indexes the services rely on.
// Creating an index that already exists is a no-op.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		PropertiesCollection: {
			{Keys: bson.D{{Key: "propertyId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "agent.email", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		OffersCollection: {
			{Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "user.userId", Value: 1}}},
			{Keys: bson.D{{Key: "agent.email", Value: 1}, {Key: "status", Value: 1}}},
		},
		ReviewsCollection: {
			{Keys: bson.D{{Key: "reviewId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "propertyId", Value: 1}}},
			{Keys: bson.D{{Key: "reviewer.email", Value: 1}}},
		},
		WishlistsCollection: {
			{Keys: bson.D{{Key: "user.userId", Value: 1}, {Key: "propertyId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "propertyId", Value: 1}}},
		},
		EmailTemplatesCollection: {
			{Keys: bson.D{{Key: "templateId", Value: 1}, {Key: "locale", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for collection, models := range indexes {
		if _, err := database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// TxnFunc is the body of a transaction. It must use sessCtx for every operation
// and may be invoked more than once when the server reports a transient error.
type TxnFunc func(sessCtx mongo.SessionContext) error

// WithTransaction runs fn inside a majority-committed multi-document transaction.
func WithTransaction(ctx context.Context, client *mongo.Client, fn TxnFunc) error {
	session, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadPreference(readpref.Primary()).
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	}, txnOpts)
	return err
}
