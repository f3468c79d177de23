package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AlibekovAA/blog-backend/internal/comment/domain"
	"github.com/AlibekovAA/blog-backend/internal/common/db"
	postdomain "github.com/AlibekovAA/blog-backend/internal/post/domain"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
)

type commentDocument struct {
	ID        string    `bson:"_id"`
	Text      string    `bson:"text"`
	PostID    string    `bson:"postId"`
	UserID    string    `bson:"user"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d commentDocument) toDomain() domain.Comment {
	return domain.Comment{
		ID:        domain.ID(d.ID),
		Text:      d.Text,
		PostID:    postdomain.ID(d.PostID),
		UserID:    userdomain.ID(d.UserID),
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type MongoRepository struct {
	comments *mongo.Collection
}

// NewMongoRepository binds the comments collection. Per-post listing is
// served by a postId + createdAt index.
func NewMongoRepository(ctx context.Context, database *mongo.Database) (*MongoRepository, error) {
	r := &MongoRepository{comments: database.Collection(collection)}

	_, err := r.comments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("post_created_asc"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("created_desc"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mongo ensure comments indexes: %w", err)
	}

	return r, nil
}

func (r *MongoRepository) Create(ctx context.Context, c domain.Comment) error {
	start := time.Now()
	_, err := r.comments.InsertOne(ctx, commentDocument{
		ID:        string(c.ID),
		Text:      c.Text,
		PostID:    string(c.PostID),
		UserID:    string(c.UserID),
		CreatedAt: c.CreatedAt,
	})
	return db.Observe(db.DriverMongo, "create_comment", collection, start, err, nil)
}

func (r *MongoRepository) FindByID(ctx context.Context, id domain.ID) (domain.Comment, error) {
	start := time.Now()

	var doc commentDocument
	err := r.comments.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err := db.Observe(db.DriverMongo, "find_comment_by_id", collection, start, err, domain.ErrCommentNotFound); err != nil {
		return domain.Comment{}, err
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) ListByPost(ctx context.Context, postID postdomain.ID) ([]domain.Comment, error) {
	return r.find(ctx, "list_comments_by_post",
		bson.M{"postId": string(postID)},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}),
	)
}

func (r *MongoRepository) ListAll(ctx context.Context) ([]domain.Comment, error) {
	return r.find(ctx, "list_comments",
		bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
	)
}

func (r *MongoRepository) Delete(ctx context.Context, id domain.ID) error {
	start := time.Now()
	res, err := r.comments.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err := db.Observe(db.DriverMongo, "delete_comment", collection, start, err, nil); err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *MongoRepository) find(ctx context.Context, operation string, filter bson.M, opts *options.FindOptions) ([]domain.Comment, error) {
	start := time.Now()
	cur, err := r.comments.Find(ctx, filter, opts)
	if err := db.Observe(db.DriverMongo, operation, collection, start, err, nil); err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	comments := make([]domain.Comment, 0)
	for cur.Next(ctx) {
		var doc commentDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode comment: %w", err)
		}
		comments = append(comments, doc.toDomain())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}

	return comments, nil
}
