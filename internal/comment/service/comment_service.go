package service

import (
	"context"
	"errors"
	"strings"

	"github.com/AlibekovAA/blog-backend/internal/comment/domain"
	commentrepo "github.com/AlibekovAA/blog-backend/internal/comment/repository"
	"github.com/AlibekovAA/blog-backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/blog-backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/blog-backend/internal/common/errors"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	postdomain "github.com/AlibekovAA/blog-backend/internal/post/domain"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/blog-backend/internal/user/repository"
)

type PostChecker interface {
	Exists(ctx context.Context, id postdomain.ID) error
}

type CommentService struct {
	repo        commentrepo.Repository
	posts       PostChecker
	users       userrepo.Repository
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewCommentService(
	repo commentrepo.Repository,
	posts PostChecker,
	users userrepo.Repository,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *CommentService {
	return &CommentService{
		repo:        repo,
		posts:       posts,
		users:       users,
		idGenerator: idGenerator,
		clock:       clk,
		log:         log,
	}
}

func (s *CommentService) Create(ctx context.Context, author userdomain.ID, postID postdomain.ID, text string) (domain.View, error) {
	if err := s.posts.Exists(ctx, postID); err != nil {
		return domain.View{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.View{}, commonerrors.ErrInternalError.WithCause(err)
	}

	comment := domain.Comment{
		ID:        domain.ID(id),
		Text:      strings.TrimSpace(text),
		PostID:    postID,
		UserID:    author,
		CreatedAt: s.clock.Now().UTC(),
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		return domain.View{}, s.storageError(ctx, "create_comment", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"comment_id": id,
		"post_id":    string(postID),
		"user_id":    string(author),
		"action":     "create_comment_success",
	}).Info("comment created")

	views, err := s.withAuthors(ctx, []domain.Comment{comment})
	if err != nil {
		return domain.View{}, err
	}
	return views[0], nil
}

func (s *CommentService) ByPost(ctx context.Context, postID postdomain.ID) ([]domain.View, error) {
	comments, err := s.repo.ListByPost(ctx, postID)
	if err != nil {
		return nil, s.storageError(ctx, "list_comments_by_post", err)
	}
	return s.withAuthors(ctx, comments)
}

func (s *CommentService) All(ctx context.Context) ([]domain.View, error) {
	comments, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, s.storageError(ctx, "list_comments", err)
	}
	return s.withAuthors(ctx, comments)
}

func (s *CommentService) Delete(ctx context.Context, actor userdomain.ID, id domain.ID) error {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCommentNotFound) {
			return domain.ErrCommentNotFound
		}
		return s.storageError(ctx, "find_comment", err)
	}

	if comment.UserID != actor {
		s.log.WithFields(ctx, logger.Fields{
			"comment_id": string(id),
			"user_id":    string(actor),
			"action":     "delete_comment_forbidden",
		}).Warn("comment ownership check failed")
		return commonerrors.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrCommentNotFound) {
			return domain.ErrCommentNotFound
		}
		return s.storageError(ctx, "delete_comment", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"comment_id": string(id),
		"user_id":    string(actor),
		"action":     "delete_comment_success",
	}).Info("comment deleted")
	return nil
}

func (s *CommentService) withAuthors(ctx context.Context, comments []domain.Comment) ([]domain.View, error) {
	ids := make([]userdomain.ID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}

	authors, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, s.storageError(ctx, "load_comment_authors", err)
	}

	views := make([]domain.View, 0, len(comments))
	for _, c := range comments {
		author, ok := authors[c.UserID]
		if !ok {
			author = userdomain.Summary{ID: c.UserID}
		}
		views = append(views, domain.View{Comment: c, Author: author})
	}
	return views, nil
}

func (s *CommentService) storageError(ctx context.Context, operation string, err error) error {
	s.log.WithFields(ctx, logger.Fields{
		"action": operation + "_failed",
	}).Errorf("%s failed: %v", operation, err)
	return commonerrors.ErrDatabaseError.WithCause(err)
}
