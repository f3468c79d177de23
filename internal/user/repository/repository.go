package repository

import (
	"context"

	"github.com/AlibekovAA/blog-backend/internal/user/domain"
)

const collection = "users"

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	// FindByIDs returns the summaries that exist; unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []domain.ID) (map[domain.ID]domain.Summary, error)
}

func uniqueIDs(ids []domain.ID) []string {
	seen := make(map[domain.ID]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, string(id))
	}
	return out
}
