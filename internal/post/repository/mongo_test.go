package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/blog-backend/internal/common/db/mongotest"
	"github.com/AlibekovAA/blog-backend/internal/post/domain"
)

func TestMain(m *testing.M) {
	os.Exit(mongotest.Run(m))
}

var base = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func newPost(id string, offset time.Duration, tags ...string) domain.Post {
	return domain.Post{
		ID:        domain.ID(id),
		Title:     "Title " + id,
		Text:      "Body of " + id,
		Tags:      tags,
		UserID:    "u1",
		CreatedAt: base.Add(offset),
		UpdatedAt: base.Add(offset),
	}
}

func newRepo(t *testing.T) (*MongoRepository, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	repo, err := NewMongoRepository(ctx, mongotest.Database(t))
	require.NoError(t, err)
	return repo, ctx
}

func TestMongoRepository_ListNewestFirst(t *testing.T) {
	repo, ctx := newRepo(t)

	require.NoError(t, repo.Create(ctx, newPost("p1", 0, "go")))
	require.NoError(t, repo.Create(ctx, newPost("p2", time.Minute, "react")))
	require.NoError(t, repo.Create(ctx, newPost("p3", 2*time.Minute, "go", "news")))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, domain.ID("p3"), all[0].ID)
	require.Equal(t, domain.ID("p1"), all[2].ID)

	latest, err := repo.Latest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	require.Equal(t, domain.ID("p3"), latest[0].ID)

	tagged, err := repo.FindByTags(ctx, []string{"go"})
	require.NoError(t, err)
	require.Len(t, tagged, 2)
	require.Equal(t, domain.ID("p3"), tagged[0].ID)

	none, err := repo.FindByTags(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestMongoRepository_IncrementViews(t *testing.T) {
	repo, ctx := newRepo(t)
	require.NoError(t, repo.Create(ctx, newPost("p1", 0)))

	p, err := repo.IncrementViews(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(1), p.ViewsCount)

	p, err = repo.IncrementViews(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(2), p.ViewsCount)

	_, err = repo.IncrementViews(ctx, "missing")
	require.True(t, errors.Is(err, domain.ErrPostNotFound))
}

func TestMongoRepository_UpdateDelete(t *testing.T) {
	repo, ctx := newRepo(t)
	require.NoError(t, repo.Create(ctx, newPost("p1", 0, "old")))

	updated := newPost("p1", 0, "new")
	updated.Title = "Changed"
	updated.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, updated))

	got, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Changed", got.Title)
	require.Equal(t, []string{"new"}, got.Tags)
	require.Equal(t, base.Add(time.Hour), got.UpdatedAt)

	require.True(t, errors.Is(repo.Update(ctx, newPost("ghost", 0)), domain.ErrPostNotFound))

	require.NoError(t, repo.Delete(ctx, "p1"))
	require.True(t, errors.Is(repo.Delete(ctx, "p1"), domain.ErrPostNotFound))
}
