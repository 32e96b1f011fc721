// Package dbmongo stores media blobs in a GridFS bucket.
package dbmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"postplanner/internal/config"
)

const (
	defaultBucket = "media_files"
	appName       = "postplanner-media"

	// ConnectTimeout caps the dial and first ping at startup.
	ConnectTimeout = 10 * time.Second
)

// MongoClient bundles the handles the media store needs: the client for
// shutdown and the bucket holding uploaded blobs.
type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
	GridFS   *gridfs.Bucket
}

// NewMongoConnection dials with ConnectTimeout.
func NewMongoConnection(c *config.Config) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ConnectTimeout)
	defer cancel()
	return Connect(ctx, c)
}

// Connect dials the media database and opens its bucket. The server must
// answer a ping before ctx expires; otherwise the client is released.
func Connect(ctx context.Context, c *config.Config) (*MongoClient, error) {
	client, err := mongo.Connect(ctx, clientOptions(c))
	if err != nil {
		return nil, fmt.Errorf("mongo connect %s: %w", endpoint(c), err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping %s: %w", endpoint(c), err)
	}

	db := client.Database(c.MongoDB.Database)
	name := BucketName(c)
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(name))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("gridfs bucket %q: %w", name, err)
	}

	return &MongoClient{Client: client, Database: db, GridFS: bucket}, nil
}

func clientOptions(c *config.Config) *options.ClientOptions {
	return options.Client().
		ApplyURI(c.GetMongoURI()).
		SetAppName(appName).
		SetConnectTimeout(ConnectTimeout).
		SetServerSelectionTimeout(ConnectTimeout)
}

// endpoint is host:port without credentials, for error messages.
func endpoint(c *config.Config) string {
	return c.MongoDB.Host + ":" + c.MongoDB.Port
}

// BucketName falls back to media_files when the config leaves it empty.
func BucketName(c *config.Config) string {
	if c == nil || c.MongoDB.Bucket == "" {
		return defaultBucket
	}
	return c.MongoDB.Bucket
}

func (mc *MongoClient) Close(ctx context.Context) error {
	return mc.Client.Disconnect(ctx)
}
