package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/AlibekovAA/blog-backend/internal/comment/domain"
	"github.com/AlibekovAA/blog-backend/internal/common/clock"
	commonerrors "github.com/AlibekovAA/blog-backend/internal/common/errors"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	postdomain "github.com/AlibekovAA/blog-backend/internal/post/domain"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
)

type mockCommentRepo struct {
	createFunc     func(ctx context.Context, c domain.Comment) error
	findByIDFunc   func(ctx context.Context, id domain.ID) (domain.Comment, error)
	listByPostFunc func(ctx context.Context, postID postdomain.ID) ([]domain.Comment, error)
	listAllFunc    func(ctx context.Context) ([]domain.Comment, error)
	deleteFunc     func(ctx context.Context, id domain.ID) error
}

func (m *mockCommentRepo) Create(ctx context.Context, c domain.Comment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	return nil
}

func (m *mockCommentRepo) FindByID(ctx context.Context, id domain.ID) (domain.Comment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Comment{}, domain.ErrCommentNotFound
}

func (m *mockCommentRepo) ListByPost(ctx context.Context, postID postdomain.ID) ([]domain.Comment, error) {
	if m.listByPostFunc != nil {
		return m.listByPostFunc(ctx, postID)
	}
	return nil, nil
}

func (m *mockCommentRepo) ListAll(ctx context.Context) ([]domain.Comment, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockCommentRepo) Delete(ctx context.Context, id domain.ID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type postCheckerFunc func(ctx context.Context, id postdomain.ID) error

func (f postCheckerFunc) Exists(ctx context.Context, id postdomain.ID) error { return f(ctx, id) }

type mockUserRepo struct {
	summaries map[userdomain.ID]userdomain.Summary
}

func (m *mockUserRepo) Create(context.Context, userdomain.User) error { return nil }

func (m *mockUserRepo) FindByEmail(context.Context, string) (userdomain.User, error) {
	return userdomain.User{}, userdomain.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(context.Context, userdomain.ID) (userdomain.User, error) {
	return userdomain.User{}, userdomain.ErrUserNotFound
}

func (m *mockUserRepo) FindByIDs(context.Context, []userdomain.ID) (map[userdomain.ID]userdomain.Summary, error) {
	return m.summaries, nil
}

type fixedID string

func (f fixedID) NewID() (string, error) { return string(f), nil }

var testNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestCommentService(repo *mockCommentRepo, posts PostChecker) *CommentService {
	users := &mockUserRepo{summaries: map[userdomain.ID]userdomain.Summary{
		"u1": {ID: "u1", FullName: "Alice"},
	}}
	return NewCommentService(repo, posts, users, fixedID("c-new"), clock.NewMockClock(testNow), logger.NewWriter(io.Discard, "test", "ERROR"))
}

func postExists(context.Context, postdomain.ID) error { return nil }

func TestCreate_StoresCommentWithAuthor(t *testing.T) {
	var stored domain.Comment
	svc := newTestCommentService(&mockCommentRepo{createFunc: func(_ context.Context, c domain.Comment) error {
		stored = c
		return nil
	}}, postCheckerFunc(postExists))

	view, err := svc.Create(context.Background(), "u1", "p1", "  nice post  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.ID != "c-new" || stored.Text != "nice post" || stored.PostID != "p1" {
		t.Errorf("unexpected stored comment: %+v", stored)
	}
	if !stored.CreatedAt.Equal(testNow) {
		t.Errorf("expected createdAt %v, got %v", testNow, stored.CreatedAt)
	}
	if view.Author.FullName != "Alice" {
		t.Errorf("expected author to be attached, got %+v", view.Author)
	}
}

func TestCreate_MissingPost(t *testing.T) {
	created := false
	svc := newTestCommentService(&mockCommentRepo{createFunc: func(context.Context, domain.Comment) error {
		created = true
		return nil
	}}, postCheckerFunc(func(context.Context, postdomain.ID) error { return postdomain.ErrPostNotFound }))

	_, err := svc.Create(context.Background(), "u1", "missing", "text")
	if !errors.Is(err, postdomain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if created {
		t.Error("comment must not be stored for a missing post")
	}
}

func TestByPost_UnknownAuthorKeepsID(t *testing.T) {
	svc := newTestCommentService(&mockCommentRepo{listByPostFunc: func(context.Context, postdomain.ID) ([]domain.Comment, error) {
		return []domain.Comment{{ID: "c1", UserID: "ghost"}}, nil
	}}, postCheckerFunc(postExists))

	views, err := svc.ByPost(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || views[0].Author.ID != "ghost" {
		t.Errorf("unexpected views: %+v", views)
	}
}

func TestAll_StorageFailure(t *testing.T) {
	svc := newTestCommentService(&mockCommentRepo{listAllFunc: func(context.Context) ([]domain.Comment, error) {
		return nil, errors.New("connection refused")
	}}, postCheckerFunc(postExists))

	_, err := svc.All(context.Background())
	if !errors.Is(err, commonerrors.ErrDatabaseError) {
		t.Fatalf("expected ErrDatabaseError, got %v", err)
	}
}

func TestDelete_Ownership(t *testing.T) {
	tests := []struct {
		name      string
		actor     userdomain.ID
		findErr   error
		wantErr   error
		wantCalls int
	}{
		{name: "author", actor: "u1", wantCalls: 1},
		{name: "stranger", actor: "u2", wantErr: commonerrors.ErrForbidden},
		{name: "missing", actor: "u1", findErr: domain.ErrCommentNotFound, wantErr: domain.ErrCommentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deletes := 0
			repo := &mockCommentRepo{
				findByIDFunc: func(_ context.Context, id domain.ID) (domain.Comment, error) {
					if tt.findErr != nil {
						return domain.Comment{}, tt.findErr
					}
					return domain.Comment{ID: id, UserID: "u1"}, nil
				},
				deleteFunc: func(context.Context, domain.ID) error {
					deletes++
					return nil
				},
			}
			svc := newTestCommentService(repo, postCheckerFunc(postExists))

			err := svc.Delete(context.Background(), tt.actor, "c1")
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if deletes != tt.wantCalls {
				t.Errorf("expected %d deletes, got %d", tt.wantCalls, deletes)
			}
		})
	}
}
