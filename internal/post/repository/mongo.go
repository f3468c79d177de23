package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AlibekovAA/blog-backend/internal/common/db"
	"github.com/AlibekovAA/blog-backend/internal/post/domain"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
)

type postDocument struct {
	ID         string    `bson:"_id"`
	Title      string    `bson:"title"`
	Text       string    `bson:"text"`
	Tags       []string  `bson:"tags"`
	ViewsCount int64     `bson:"viewsCount"`
	ImageURL   string    `bson:"imageUrl,omitempty"`
	UserID     string    `bson:"user"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func fromDomain(p domain.Post) postDocument {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postDocument{
		ID:         string(p.ID),
		Title:      p.Title,
		Text:       p.Text,
		Tags:       tags,
		ViewsCount: p.ViewsCount,
		ImageURL:   p.ImageURL,
		UserID:     string(p.UserID),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (d postDocument) toDomain() domain.Post {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Post{
		ID:         domain.ID(d.ID),
		Title:      d.Title,
		Text:       d.Text,
		Tags:       tags,
		ViewsCount: d.ViewsCount,
		ImageURL:   d.ImageURL,
		UserID:     userdomain.ID(d.UserID),
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

type MongoRepository struct {
	posts *mongo.Collection
}

// NewMongoRepository binds the posts collection and ensures the indexes used
// by the listing and tag queries.
func NewMongoRepository(ctx context.Context, database *mongo.Database) (*MongoRepository, error) {
	r := &MongoRepository{posts: database.Collection(collection)}

	_, err := r.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("created_desc"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("tags"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mongo ensure posts indexes: %w", err)
	}

	return r, nil
}

func (r *MongoRepository) Create(ctx context.Context, post domain.Post) error {
	start := time.Now()
	_, err := r.posts.InsertOne(ctx, fromDomain(post))
	return db.Observe(db.DriverMongo, "create_post", collection, start, err, nil)
}

func (r *MongoRepository) FindByID(ctx context.Context, id domain.ID) (domain.Post, error) {
	start := time.Now()

	var doc postDocument
	err := r.posts.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err := db.Observe(db.DriverMongo, "find_post_by_id", collection, start, err, domain.ErrPostNotFound); err != nil {
		return domain.Post{}, err
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) IncrementViews(ctx context.Context, id domain.ID) (domain.Post, error) {
	start := time.Now()

	var doc postDocument
	err := r.posts.FindOneAndUpdate(
		ctx,
		bson.M{"_id": string(id)},
		bson.M{"$inc": bson.M{"viewsCount": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err := db.Observe(db.DriverMongo, "increment_post_views", collection, start, err, domain.ErrPostNotFound); err != nil {
		return domain.Post{}, err
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) List(ctx context.Context) ([]domain.Post, error) {
	return r.find(ctx, "list_posts", bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *MongoRepository) Latest(ctx context.Context, limit int) ([]domain.Post, error) {
	return r.find(ctx, "latest_posts", bson.M{}, options.Find().SetSort(newestFirst).SetLimit(int64(limit)))
}

func (r *MongoRepository) FindByTags(ctx context.Context, tags []string) ([]domain.Post, error) {
	if len(tags) == 0 {
		return []domain.Post{}, nil
	}
	return r.find(ctx, "find_posts_by_tags", bson.M{"tags": bson.M{"$in": tags}}, options.Find().SetSort(newestFirst))
}

func (r *MongoRepository) Update(ctx context.Context, post domain.Post) error {
	start := time.Now()
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	res, err := r.posts.UpdateOne(ctx,
		bson.M{"_id": string(post.ID)},
		bson.M{"$set": bson.M{
			"title":     post.Title,
			"text":      post.Text,
			"tags":      tags,
			"imageUrl":  post.ImageURL,
			"updatedAt": post.UpdatedAt,
		}},
	)
	if err := db.Observe(db.DriverMongo, "update_post", collection, start, err, nil); err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id domain.ID) error {
	start := time.Now()
	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err := db.Observe(db.DriverMongo, "delete_post", collection, start, err, nil); err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *MongoRepository) find(ctx context.Context, operation string, filter bson.M, opts *options.FindOptions) ([]domain.Post, error) {
	start := time.Now()
	cur, err := r.posts.Find(ctx, filter, opts)
	if err := db.Observe(db.DriverMongo, operation, collection, start, err, nil); err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	posts := make([]domain.Post, 0)
	for cur.Next(ctx) {
		var doc postDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode post: %w", err)
		}
		posts = append(posts, doc.toDomain())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}

	return posts, nil
}
