package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	commonhttp "github.com/AlibekovAA/blog-backend/internal/common/http"
	"github.com/AlibekovAA/blog-backend/internal/common/jwtverify"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	"github.com/AlibekovAA/blog-backend/internal/post/domain"
	"github.com/AlibekovAA/blog-backend/internal/post/service"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
)

type postRequest struct {
	Title    string  `json:"title" validate:"required,min=3,max=200"`
	Text     string  `json:"text" validate:"required,min=3"`
	Tags     TagList `json:"tags"`
	ImageURL string  `json:"imageUrl" validate:"omitempty,max=2048"`
}

func (r *postRequest) trim() {
	r.Title = strings.TrimSpace(r.Title)
	r.Text = strings.TrimSpace(r.Text)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
}

type tagsRequest struct {
	Tags TagList `json:"tags"`
}

type AuthorResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type PostResponse struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Tags       []string       `json:"tags"`
	ViewsCount int64          `json:"viewsCount"`
	ImageURL   string         `json:"imageUrl,omitempty"`
	User       AuthorResponse `json:"user"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type Handler struct {
	posts *service.PostService
	log   *logger.Logger
}

func NewHandler(posts *service.PostService, log *logger.Logger) *Handler {
	return &Handler{posts: posts, log: log}
}

func (h *Handler) Routes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Get("/posts", h.list)
	r.Post("/posts", h.list)
	r.Post("/posts/tags", h.byTags)
	r.Get("/posts/{id}", h.getOne)
	r.Get("/tags", h.latestTags)

	r.Group(func(r chi.Router) {
		r.Use(guard)
		r.Post("/post", h.create)
		r.Patch("/posts/{id}", h.update)
		r.Delete("/posts/{id}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	views, err := h.posts.List(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toPostResponses(views))
}

func (h *Handler) byTags(w http.ResponseWriter, r *http.Request) {
	var req tagsRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	views, err := h.posts.ByTags(r.Context(), req.Tags)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toPostResponses(views))
}

func (h *Handler) getOne(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	view, err := h.posts.GetOne(r.Context(), id)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toPostResponse(view))
}

func (h *Handler) latestTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.posts.LatestTags(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, tags)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePost(w, r)
	if !ok {
		return
	}

	view, err := h.posts.Create(r.Context(), actor(r), toInput(req))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, toPostResponse(view))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodePost(w, r)
	if !ok {
		return
	}

	if err := h.posts.Update(r.Context(), actor(r), id, toInput(req)); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteSuccess(w)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), actor(r), id); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteSuccess(w)
}

func (h *Handler) decodePost(w http.ResponseWriter, r *http.Request) (postRequest, bool) {
	var req postRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return postRequest{}, false
	}
	req.trim()
	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return postRequest{}, false
	}
	return req, true
}

func (h *Handler) postID(w http.ResponseWriter, r *http.Request) (domain.ID, bool) {
	id := chi.URLParam(r, "id")
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return "", false
	}
	return domain.ID(id), true
}

func actor(r *http.Request) userdomain.ID {
	id, _ := jwtverify.IdentityFromContext(r.Context())
	return userdomain.ID(id.SubjectID)
}

func toInput(req postRequest) service.PostInput {
	return service.PostInput{
		Title:    req.Title,
		Text:     req.Text,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	}
}

func toPostResponse(v domain.View) PostResponse {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:         string(v.ID),
		Title:      v.Title,
		Text:       v.Text,
		Tags:       tags,
		ViewsCount: v.ViewsCount,
		ImageURL:   v.ImageURL,
		User: AuthorResponse{
			ID:        string(v.Author.ID),
			FullName:  v.Author.FullName,
			AvatarURL: v.Author.AvatarURL,
		},
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func toPostResponses(views []domain.View) []PostResponse {
	out := make([]PostResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toPostResponse(v))
	}
	return out
}
