package domain

import (
	"net/http"
	"time"

	commonerrors "github.com/AlibekovAA/blog-backend/internal/common/errors"
)

type ID string

// User is a stored account. PasswordHash never leaves the service layer.
type User struct {
	ID           ID
	Email        string
	PasswordHash string
	FullName     string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the public author projection embedded in posts and comments.
type Summary struct {
	ID        ID
	FullName  string
	AvatarURL string
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, FullName: u.FullName, AvatarURL: u.AvatarURL}
}

var (
	ErrUserNotFound = commonerrors.ErrUserNotFound

	ErrEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"email already registered",
	)
)
