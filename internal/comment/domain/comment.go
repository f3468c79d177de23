package domain

import (
	"net/http"
	"time"

	commonerrors "github.com/AlibekovAA/blog-backend/internal/common/errors"
	postdomain "github.com/AlibekovAA/blog-backend/internal/post/domain"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
)

type ID string

type Comment struct {
	ID        ID
	Text      string
	PostID    postdomain.ID
	UserID    userdomain.ID
	CreatedAt time.Time
}

type View struct {
	Comment
	Author userdomain.Summary
}

var ErrCommentNotFound = commonerrors.NewDomainError(
	"COMMENT_NOT_FOUND",
	commonerrors.CategoryNotFound,
	http.StatusNotFound,
	"comment not found",
)
