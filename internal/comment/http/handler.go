package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AlibekovAA/blog-backend/internal/comment/domain"
	"github.com/AlibekovAA/blog-backend/internal/comment/service"
	commonhttp "github.com/AlibekovAA/blog-backend/internal/common/http"
	"github.com/AlibekovAA/blog-backend/internal/common/jwtverify"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	postdomain "github.com/AlibekovAA/blog-backend/internal/post/domain"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
)

type createCommentRequest struct {
	Text   string `json:"text" validate:"required,min=3,max=2000"`
	PostID string `json:"postId" validate:"required,uuid"`
}

func (r *createCommentRequest) trim() {
	r.Text = strings.TrimSpace(r.Text)
	r.PostID = strings.TrimSpace(r.PostID)
}

type AuthorResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type CommentResponse struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	PostID    string         `json:"postId"`
	User      AuthorResponse `json:"user"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Handler struct {
	comments *service.CommentService
	log      *logger.Logger
}

func NewHandler(comments *service.CommentService, log *logger.Logger) *Handler {
	return &Handler{comments: comments, log: log}
}

func (h *Handler) Routes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Get("/comments", h.all)
	r.Get("/comments/", h.all)
	r.Get("/comments/{id}", h.byPost)

	r.Group(func(r chi.Router) {
		r.Use(guard)
		r.Post("/comments", h.create)
		r.Delete("/comments/{id}", h.remove)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	req.trim()
	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	identity, _ := jwtverify.IdentityFromContext(r.Context())
	view, err := h.comments.Create(
		r.Context(),
		userdomain.ID(identity.SubjectID),
		postdomain.ID(req.PostID),
		req.Text,
	)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, toCommentResponse(view))
}

// byPost lists the comments of the post named by the path id.
func (h *Handler) byPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	views, err := h.comments.ByPost(r.Context(), postdomain.ID(id))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toCommentResponses(views))
}

func (h *Handler) all(w http.ResponseWriter, r *http.Request) {
	views, err := h.comments.All(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toCommentResponses(views))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	identity, _ := jwtverify.IdentityFromContext(r.Context())
	if err := h.comments.Delete(r.Context(), userdomain.ID(identity.SubjectID), domain.ID(id)); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteSuccess(w)
}

func toCommentResponse(v domain.View) CommentResponse {
	return CommentResponse{
		ID:     string(v.ID),
		Text:   v.Text,
		PostID: string(v.PostID),
		User: AuthorResponse{
			ID:        string(v.Author.ID),
			FullName:  v.Author.FullName,
			AvatarURL: v.Author.AvatarURL,
		},
		CreatedAt: v.CreatedAt,
	}
}

func toCommentResponses(views []domain.View) []CommentResponse {
	out := make([]CommentResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toCommentResponse(v))
	}
	return out
}
