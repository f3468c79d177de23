package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/blog-backend/internal/common/errors"
)

var ErrInvalidCredentials = commonerrors.NewDomainError(
	"INVALID_CREDENTIALS",
	commonerrors.CategoryUnauthorized,
	http.StatusUnauthorized,
	"invalid email or password",
)
