package repository

import (
	"context"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/blog-backend/internal/comment/domain"
	"github.com/AlibekovAA/blog-backend/internal/common/db"
	postdomain "github.com/AlibekovAA/blog-backend/internal/post/domain"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
)

const commentColumns = `id::text, text, post_id::text, user_id::text, created_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, c domain.Comment) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO comments (id, text, post_id, user_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		string(c.ID),
		c.Text,
		string(c.PostID),
		string(c.UserID),
		c.CreatedAt,
	)
	return db.Observe(db.DriverPostgres, "create_comment", collection, start, err, nil)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Comment, error) {
	start := time.Now()
	row := r.pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, string(id))

	c, err := scanComment(row)
	if err := db.Observe(db.DriverPostgres, "find_comment_by_id", collection, start, err, domain.ErrCommentNotFound); err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

func (r *PgRepository) ListByPost(ctx context.Context, postID postdomain.ID) ([]domain.Comment, error) {
	return r.query(ctx, "list_comments_by_post",
		`SELECT `+commentColumns+` FROM comments WHERE post_id = $1 ORDER BY created_at ASC`,
		string(postID),
	)
}

func (r *PgRepository) ListAll(ctx context.Context) ([]domain.Comment, error) {
	return r.query(ctx, "list_comments", `SELECT `+commentColumns+` FROM comments ORDER BY created_at DESC`)
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) error {
	start := time.Now()
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, string(id))
	if err := db.Observe(db.DriverPostgres, "delete_comment", collection, start, err, nil); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *PgRepository) query(ctx context.Context, operation, sql string, args ...any) ([]domain.Comment, error) {
	start := time.Now()
	rows, err := r.pool.Query(ctx, sql, args...)
	if err := db.Observe(db.DriverPostgres, operation, collection, start, err, nil); err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]domain.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return comments, nil
}

func scanComment(row pgx.Row) (domain.Comment, error) {
	var (
		c                  domain.Comment
		id, postID, userID string
	)
	if err := row.Scan(&id, &c.Text, &postID, &userID, &c.CreatedAt); err != nil {
		return domain.Comment{}, err
	}
	c.ID = domain.ID(id)
	c.PostID = postdomain.ID(postID)
	c.UserID = userdomain.ID(userID)
	return c, nil
}
