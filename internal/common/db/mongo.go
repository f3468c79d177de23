package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/AlibekovAA/blog-backend/internal/common/logger"
)

const defaultMongoDatabase = "blog"

// Mongo holds the client and the database named in the connection URI.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func NewMongo(ctx context.Context, log *logger.Logger, uri string) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}

	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName("blog-backend"))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	err = Retry(ctx, log, ConnectRetryConfig, func(error) bool { return true }, func(ctx context.Context) error {
		return cli.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	name := DatabaseFromURI(uri)
	log.Infof("mongo connected: database=%s", name)

	return &Mongo{Client: cli, DB: cli.Database(name)}, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// DatabaseFromURI returns the database named in the URI path, or "blog".
func DatabaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultMongoDatabase
}
