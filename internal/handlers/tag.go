package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devflow-qa/apiserver/internal/services"
	"github.com/devflow-qa/apiserver/types"
)

// TagHandler provides HTTP handlers for tags.
type TagHandler struct {
	tagService *services.TagService
}

// NewTagHandler constructs a handler with the provided service.
func NewTagHandler(tagService *services.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// TagRouter registers tag routes on the given router.
func TagRouter(r chi.Router, tagService *services.TagService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewTagHandler(tagService)

	r.Get("/", handler.ListTags)
	r.Route("/{tagID}", func(r chi.Router) {
		r.Get("/", handler.GetTag)
		r.Get("/questions", handler.ListTagQuestions)
		r.With(authMiddleware).Put("/follow", handler.FollowTag)
		r.With(authMiddleware).Delete("/follow", handler.UnfollowTag)
	})
}

func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	page := pageFromRequest(r)
	items, hasNext, err := h.tagService.List(r.Context(), page)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tags")
		return
	}

	writeJSON(w, http.StatusOK, TagListResponse{
		Items:   items,
		Page:    page.Page,
		HasNext: hasNext,
	})
}

func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tagID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tag, err := h.tagService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to fetch tag")
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *TagHandler) ListTagQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tagID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.tagService.Questions(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to list tag questions")
		return
	}
	writeJSON(w, http.StatusOK, TagQuestionsResponse{Items: items})
}

func (h *TagHandler) FollowTag(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := idParam(r, "tagID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.tagService.Follow(r.Context(), id, userID); err != nil {
		writeServiceError(w, err, "failed to follow tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TagHandler) UnfollowTag(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := idParam(r, "tagID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.tagService.Unfollow(r.Context(), id, userID); err != nil {
		writeServiceError(w, err, "failed to unfollow tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type TagListResponse struct {
	Items   []types.Tag `json:"items"`
	Page    int         `json:"page"`
	HasNext bool        `json:"has_next"`
}

type TagQuestionsResponse struct {
	Items []types.Question `json:"items"`
}
