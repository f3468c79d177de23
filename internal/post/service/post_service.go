package service

import (
	"context"
	"errors"
	"strings"

	"github.com/AlibekovAA/blog-backend/internal/common/clock"
	"github.com/AlibekovAA/blog-backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/blog-backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/blog-backend/internal/common/errors"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	"github.com/AlibekovAA/blog-backend/internal/post/domain"
	postrepo "github.com/AlibekovAA/blog-backend/internal/post/repository"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/blog-backend/internal/user/repository"
)

type PostService struct {
	repo        postrepo.Repository
	users       userrepo.Repository
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewPostService(
	repo postrepo.Repository,
	users userrepo.Repository,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *PostService {
	return &PostService{
		repo:        repo,
		users:       users,
		idGenerator: idGenerator,
		clock:       clk,
		log:         log,
	}
}

type PostInput struct {
	Title    string
	Text     string
	Tags     []string
	ImageURL string
}

func (in PostInput) normalized() PostInput {
	return PostInput{
		Title:    strings.TrimSpace(in.Title),
		Text:     strings.TrimSpace(in.Text),
		Tags:     domain.NormalizeTags(in.Tags),
		ImageURL: strings.TrimSpace(in.ImageURL),
	}
}

func (s *PostService) List(ctx context.Context) ([]domain.View, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storageError(ctx, "list_posts", err)
	}
	return s.withAuthors(ctx, posts)
}

func (s *PostService) ByTags(ctx context.Context, tags []string) ([]domain.View, error) {
	posts, err := s.repo.FindByTags(ctx, domain.NormalizeTags(tags))
	if err != nil {
		return nil, s.storageError(ctx, "find_posts_by_tags", err)
	}
	return s.withAuthors(ctx, posts)
}

// GetOne counts a view and returns the post as it is after the increment.
func (s *PostService) GetOne(ctx context.Context, id domain.ID) (domain.View, error) {
	post, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return domain.View{}, domain.ErrPostNotFound
		}
		return domain.View{}, s.storageError(ctx, "get_post", err)
	}

	views, err := s.withAuthors(ctx, []domain.Post{post})
	if err != nil {
		return domain.View{}, err
	}
	return views[0], nil
}

// LatestTags returns the tags of the most recent posts, flattened in post
// order and cut to a fixed length. Duplicates are kept.
func (s *PostService) LatestTags(ctx context.Context) ([]string, error) {
	posts, err := s.repo.Latest(ctx, constants.LatestTagsPostsLimit)
	if err != nil {
		return nil, s.storageError(ctx, "latest_tags", err)
	}

	tags := make([]string, 0, constants.LatestTagsLimit)
	for _, p := range posts {
		for _, t := range p.Tags {
			if len(tags) == constants.LatestTagsLimit {
				return tags, nil
			}
			tags = append(tags, t)
		}
	}
	return tags, nil
}

func (s *PostService) Create(ctx context.Context, author userdomain.ID, input PostInput) (domain.View, error) {
	input = input.normalized()

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.View{}, commonerrors.ErrInternalError.WithCause(err)
	}

	now := s.clock.Now().UTC()
	post := domain.Post{
		ID:        domain.ID(id),
		Title:     input.Title,
		Text:      input.Text,
		Tags:      input.Tags,
		ImageURL:  input.ImageURL,
		UserID:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return domain.View{}, s.storageError(ctx, "create_post", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"post_id": id,
		"user_id": string(author),
		"action":  "create_post_success",
	}).Info("post created")

	views, err := s.withAuthors(ctx, []domain.Post{post})
	if err != nil {
		return domain.View{}, err
	}
	return views[0], nil
}

func (s *PostService) Update(ctx context.Context, actor userdomain.ID, id domain.ID, input PostInput) error {
	post, err := s.owned(ctx, actor, id, "update_post")
	if err != nil {
		return err
	}

	input = input.normalized()
	post.Title = input.Title
	post.Text = input.Text
	post.Tags = input.Tags
	post.ImageURL = input.ImageURL
	post.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, post); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return domain.ErrPostNotFound
		}
		return s.storageError(ctx, "update_post", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"post_id": string(id),
		"user_id": string(actor),
		"action":  "update_post_success",
	}).Info("post updated")
	return nil
}

func (s *PostService) Delete(ctx context.Context, actor userdomain.ID, id domain.ID) error {
	if _, err := s.owned(ctx, actor, id, "delete_post"); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return domain.ErrPostNotFound
		}
		return s.storageError(ctx, "delete_post", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"post_id": string(id),
		"user_id": string(actor),
		"action":  "delete_post_success",
	}).Info("post deleted")
	return nil
}

// Exists reports whether a post is present without counting a view.
func (s *PostService) Exists(ctx context.Context, id domain.ID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return domain.ErrPostNotFound
		}
		return s.storageError(ctx, "find_post", err)
	}
	return nil
}

func (s *PostService) owned(ctx context.Context, actor userdomain.ID, id domain.ID, operation string) (domain.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return domain.Post{}, domain.ErrPostNotFound
		}
		return domain.Post{}, s.storageError(ctx, operation, err)
	}

	if post.UserID != actor {
		s.log.WithFields(ctx, logger.Fields{
			"post_id": string(id),
			"user_id": string(actor),
			"action":  operation + "_forbidden",
		}).Warn("post ownership check failed")
		return domain.Post{}, commonerrors.ErrForbidden
	}

	return post, nil
}

func (s *PostService) withAuthors(ctx context.Context, posts []domain.Post) ([]domain.View, error) {
	ids := make([]userdomain.ID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.UserID)
	}

	authors, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, s.storageError(ctx, "load_post_authors", err)
	}

	views := make([]domain.View, 0, len(posts))
	for _, p := range posts {
		author, ok := authors[p.UserID]
		if !ok {
			author = userdomain.Summary{ID: p.UserID}
		}
		views = append(views, domain.View{Post: p, Author: author})
	}
	return views, nil
}

func (s *PostService) storageError(ctx context.Context, operation string, err error) error {
	s.log.WithFields(ctx, logger.Fields{
		"action": operation + "_failed",
	}).Errorf("%s failed: %v", operation, err)
	return commonerrors.ErrDatabaseError.WithCause(err)
}
