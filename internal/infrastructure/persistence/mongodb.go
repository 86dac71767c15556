package persistence

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions holds the connection settings for MongoDB
type MongoOptions struct {
	URI      string
	Database string
	Username string
	Password string
}

// NewMongoClient connects to MongoDB and returns the client and the catalog database
func NewMongoClient(ctx context.Context, opts MongoOptions) (*mongo.Client, *mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(opts.URI)

	if opts.Username != "" && opts.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: opts.Username,
			Password: opts.Password,
		})
	}

	// Set connection timeout
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, err
	}

	// Ping to check connection
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, err
	}

	return client, GetDatabase(client, opts.Database), nil
}

// GetDatabase gets a database from the client
func GetDatabase(client *mongo.Client, name string) *mongo.Database {
	return client.Database(name)
}
