package repository

import (
	"context"

	"github.com/AlibekovAA/blog-backend/internal/comment/domain"
	postdomain "github.com/AlibekovAA/blog-backend/internal/post/domain"
)

const collection = "comments"

type Repository interface {
	Create(ctx context.Context, comment domain.Comment) error
	FindByID(ctx context.Context, id domain.ID) (domain.Comment, error)
	// ListByPost returns the comments of one post, oldest first.
	ListByPost(ctx context.Context, postID postdomain.ID) ([]domain.Comment, error)
	// ListAll returns every comment, newest first.
	ListAll(ctx context.Context) ([]domain.Comment, error)
	Delete(ctx context.Context, id domain.ID) error
}
