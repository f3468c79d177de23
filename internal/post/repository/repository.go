package repository

import (
	"context"

	"github.com/AlibekovAA/blog-backend/internal/post/domain"
)

const collection = "posts"

type Repository interface {
	Create(ctx context.Context, post domain.Post) error
	FindByID(ctx context.Context, id domain.ID) (domain.Post, error)
	// IncrementViews bumps the view counter and returns the updated post.
	IncrementViews(ctx context.Context, id domain.ID) (domain.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]domain.Post, error)
	// Latest returns at most limit posts, newest first.
	Latest(ctx context.Context, limit int) ([]domain.Post, error)
	// FindByTags returns posts carrying any of tags, newest first.
	FindByTags(ctx context.Context, tags []string) ([]domain.Post, error)
	// Update replaces title, text, tags and image url.
	Update(ctx context.Context, post domain.Post) error
	Delete(ctx context.Context, id domain.ID) error
}
