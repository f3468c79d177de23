package repository

import (
	"context"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/blog-backend/internal/common/db"
	"github.com/AlibekovAA/blog-backend/internal/post/domain"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
)

const postColumns = `id::text, title, text, tags, views_count, image_url, user_id::text, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, post domain.Post) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO posts (id, title, text, tags, views_count, image_url, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(post.ID),
		post.Title,
		post.Text,
		post.Tags,
		post.ViewsCount,
		post.ImageURL,
		string(post.UserID),
		post.CreatedAt,
		post.UpdatedAt,
	)
	return db.Observe(db.DriverPostgres, "create_post", collection, start, err, nil)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Post, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, string(id))

	post, err := scanPost(row)
	if err := db.Observe(db.DriverPostgres, "find_post_by_id", collection, start, err, domain.ErrPostNotFound); err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

func (r *PgRepository) IncrementViews(ctx context.Context, id domain.ID) (domain.Post, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE posts SET views_count = views_count + 1 WHERE id = $1 RETURNING `+postColumns,
		string(id),
	)

	post, err := scanPost(row)
	if err := db.Observe(db.DriverPostgres, "increment_post_views", collection, start, err, domain.ErrPostNotFound); err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

func (r *PgRepository) List(ctx context.Context) ([]domain.Post, error) {
	return r.query(ctx, "list_posts", `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
}

func (r *PgRepository) Latest(ctx context.Context, limit int) ([]domain.Post, error) {
	return r.query(ctx, "latest_posts", `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *PgRepository) FindByTags(ctx context.Context, tags []string) ([]domain.Post, error) {
	if len(tags) == 0 {
		return []domain.Post{}, nil
	}
	return r.query(ctx, "find_posts_by_tags", `SELECT `+postColumns+` FROM posts WHERE tags && $1::text[] ORDER BY created_at DESC`, tags)
}

func (r *PgRepository) Update(ctx context.Context, post domain.Post) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE posts SET title = $2, text = $3, tags = $4, image_url = $5, updated_at = $6 WHERE id = $1`,
		string(post.ID),
		post.Title,
		post.Text,
		post.Tags,
		post.ImageURL,
		post.UpdatedAt,
	)
	if err := db.Observe(db.DriverPostgres, "update_post", collection, start, err, nil); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) error {
	start := time.Now()
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, string(id))
	if err := db.Observe(db.DriverPostgres, "delete_post", collection, start, err, nil); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PgRepository) query(ctx context.Context, operation, sql string, args ...any) ([]domain.Post, error) {
	start := time.Now()
	rows, err := r.pool.Query(ctx, sql, args...)
	if err := db.Observe(db.DriverPostgres, operation, collection, start, err, nil); err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return posts, nil
}

func scanPost(row pgx.Row) (domain.Post, error) {
	var (
		p      domain.Post
		id     string
		userID string
	)
	err := row.Scan(&id, &p.Title, &p.Text, &p.Tags, &p.ViewsCount, &p.ImageURL, &userID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Post{}, err
	}
	p.ID = domain.ID(id)
	p.UserID = userdomain.ID(userID)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}
