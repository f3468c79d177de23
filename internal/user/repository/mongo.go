package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AlibekovAA/blog-backend/internal/common/db"
	"github.com/AlibekovAA/blog-backend/internal/user/domain"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	FullName     string    `bson:"fullName"`
	AvatarURL    string    `bson:"avatarUrl,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:           domain.ID(d.ID),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FullName:     d.FullName,
		AvatarURL:    d.AvatarURL,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type MongoRepository struct {
	users *mongo.Collection
}

// NewMongoRepository binds the users collection and makes sure the unique
// email index exists.
func NewMongoRepository(ctx context.Context, database *mongo.Database) (*MongoRepository, error) {
	r := &MongoRepository{users: database.Collection(collection)}

	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("mongo ensure users indexes: %w", err)
	}

	return r, nil
}

func (r *MongoRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.users.InsertOne(ctx, userDocument{
		ID:           string(user.ID),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FullName:     user.FullName,
		AvatarURL:    user.AvatarURL,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if err != nil && mongo.IsDuplicateKeyError(err) {
		db.Observe(db.DriverMongo, "create_user", collection, start, nil, nil)
		return domain.ErrEmailTaken
	}
	return db.Observe(db.DriverMongo, "create_user", collection, start, err, nil)
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, "find_user_by_email", bson.M{"email": email})
}

func (r *MongoRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	return r.findOne(ctx, "find_user_by_id", bson.M{"_id": string(id)})
}

func (r *MongoRepository) findOne(ctx context.Context, operation string, filter bson.M) (domain.User, error) {
	start := time.Now()

	var doc userDocument
	err := r.users.FindOne(ctx, filter).Decode(&doc)
	if err := db.Observe(db.DriverMongo, operation, collection, start, err, domain.ErrUserNotFound); err != nil {
		return domain.User{}, err
	}

	return doc.toDomain(), nil
}

func (r *MongoRepository) FindByIDs(ctx context.Context, ids []domain.ID) (map[domain.ID]domain.Summary, error) {
	keys := uniqueIDs(ids)
	out := make(map[domain.ID]domain.Summary, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	start := time.Now()
	cur, err := r.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": keys}},
		options.Find().SetProjection(bson.M{"fullName": 1, "avatarUrl": 1}),
	)
	if err := db.Observe(db.DriverMongo, "find_users_by_ids", collection, start, err, nil); err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc userDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		out[domain.ID(doc.ID)] = domain.Summary{
			ID:        domain.ID(doc.ID),
			FullName:  doc.FullName,
			AvatarURL: doc.AvatarURL,
		}
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}

	return out, nil
}
