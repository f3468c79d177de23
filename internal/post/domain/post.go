package domain

import (
	"net/http"
	"strings"
	"time"

	commonerrors "github.com/AlibekovAA/blog-backend/internal/common/errors"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
)

type ID string

type Post struct {
	ID         ID
	Title      string
	Text       string
	Tags       []string
	ViewsCount int64
	ImageURL   string
	UserID     userdomain.ID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// View is a post together with its author's public profile. Author carries
// only the id when the account no longer exists.
type View struct {
	Post
	Author userdomain.Summary
}

// NormalizeTags trims every tag and drops empty ones, keeping order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

var ErrPostNotFound = commonerrors.NewDomainError(
	"POST_NOT_FOUND",
	commonerrors.CategoryNotFound,
	http.StatusNotFound,
	"post not found",
)
