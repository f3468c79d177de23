package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/blog-backend/internal/common/errors"
)

var (
	ErrFileRequired = commonerrors.NewDomainError(
		"FILE_REQUIRED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"multipart field \"image\" is required",
	)

	ErrInvalidFileName = commonerrors.NewDomainError(
		"INVALID_FILE_NAME",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"invalid file name",
	)

	ErrUnsupportedMedia = commonerrors.NewDomainError(
		"UNSUPPORTED_MEDIA_TYPE",
		commonerrors.CategoryValidation,
		http.StatusUnsupportedMediaType,
		"only image uploads are accepted",
	)

	ErrFileTooLarge = commonerrors.NewDomainError(
		"FILE_TOO_LARGE",
		commonerrors.CategoryValidation,
		http.StatusRequestEntityTooLarge,
		"file too large",
	)

	ErrFileNotFound = commonerrors.NewDomainError(
		"FILE_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"file not found",
	)

	ErrStorage = commonerrors.NewDomainError(
		"STORAGE_ERROR",
		commonerrors.CategoryExternal,
		http.StatusInternalServerError,
		"file storage failed",
	)
)
