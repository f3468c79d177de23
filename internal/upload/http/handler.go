package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	commonhttp "github.com/AlibekovAA/blog-backend/internal/common/http"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	"github.com/AlibekovAA/blog-backend/internal/upload/service"
)

const (
	formField = "image"

	// multipartOverhead leaves room for boundaries and part headers on top of
	// the file limit.
	multipartOverhead = 64 << 10
	multipartMemory   = 8 << 20
)

type UploadResponse struct {
	URL string `json:"url"`
}

type Handler struct {
	uploads *service.UploadService
	log     *logger.Logger
}

func NewHandler(uploads *service.UploadService, log *logger.Logger) *Handler {
	return &Handler{uploads: uploads, log: log}
}

func (h *Handler) Routes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Get("/uploads/{name}", h.serve)
	r.With(guard).Post("/upload", h.upload)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	limit := h.uploads.MaxBytes()
	if r.ContentLength > limit+multipartOverhead {
		commonhttp.HandleError(w, r, service.ErrFileTooLarge, h.log)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			commonhttp.HandleError(w, r, service.ErrFileTooLarge, h.log)
			return
		}
		commonhttp.HandleError(w, r, service.ErrFileRequired.WithCause(err), h.log)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(formField)
	if err != nil {
		commonhttp.HandleError(w, r, service.ErrFileRequired, h.log)
		return
	}
	defer file.Close()

	url, err := h.uploads.Save(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, UploadResponse{URL: url})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	obj, err := h.uploads.Open(r.Context(), name)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, name, obj.ModTime, obj.Body)
}
