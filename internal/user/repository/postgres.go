package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/blog-backend/internal/common/db"
	"github.com/AlibekovAA/blog-backend/internal/user/domain"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, email, password_hash, full_name, avatar_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(user.ID),
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil && db.IsUniqueViolation(err) {
		db.Observe(db.DriverPostgres, "create_user", collection, start, nil, nil)
		return domain.ErrEmailTaken
	}
	return db.Observe(db.DriverPostgres, "create_user", collection, start, err, nil)
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, "find_user_by_email", `WHERE email = $1`, email)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	return r.findOne(ctx, "find_user_by_id", `WHERE id = $1`, string(id))
}

func (r *PgRepository) findOne(ctx context.Context, operation, where string, arg any) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id::text, email, password_hash, full_name, avatar_url, created_at, updated_at FROM users `+where,
		arg,
	)

	var (
		user domain.User
		id   string
	)
	err := row.Scan(&id, &user.Email, &user.PasswordHash, &user.FullName, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt)
	if err := db.Observe(db.DriverPostgres, operation, collection, start, err, domain.ErrUserNotFound); err != nil {
		return domain.User{}, err
	}
	user.ID = domain.ID(id)

	return user, nil
}

func (r *PgRepository) FindByIDs(ctx context.Context, ids []domain.ID) (map[domain.ID]domain.Summary, error) {
	keys := uniqueIDs(ids)
	out := make(map[domain.ID]domain.Summary, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id::text, full_name, avatar_url FROM users WHERE id = ANY($1::uuid[])`,
		keys,
	)
	if err := db.Observe(db.DriverPostgres, "find_users_by_ids", collection, start, err, nil); err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s  domain.Summary
			id string
		)
		if err := rows.Scan(&id, &s.FullName, &s.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		s.ID = domain.ID(id)
		out[s.ID] = s
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return out, nil
}
