package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/devflow-qa/apiserver/internal/services"
	"github.com/devflow-qa/apiserver/internal/store"
	"github.com/devflow-qa/apiserver/types"
)

const maxAvatarMemory = 8 << 20

// UserHandler provides HTTP handlers for the user directory, profile
// pages and the authenticated account surface.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers the public user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService) {
	handler := NewUserHandler(userService)

	r.Get("/", handler.ListUsers)
	r.Route("/{username}", func(r chi.Router) {
		r.Get("/", handler.GetProfile)
		r.Get("/questions", handler.ListUserQuestions)
		r.Get("/answers", handler.ListUserAnswers)
	})
}

// MeRouter registers the authenticated account routes on the given
// router. All routes require auth.
func MeRouter(r chi.Router, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)

	r.Use(authMiddleware)
	r.Put("/profile", handler.UpdateProfile)
	r.Put("/avatar", handler.UploadAvatar)
	r.Get("/saved-questions", handler.ListSavedQuestions)
	r.Put("/saved-questions/{questionID}", handler.SaveQuestion)
	r.Delete("/saved-questions/{questionID}", handler.UnsaveQuestion)
}

// AvatarRouter registers the avatar object route on the given router.
func AvatarRouter(r chi.Router, userService *services.UserService) {
	handler := NewUserHandler(userService)

	r.Get("/{object}", handler.ServeAvatar)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	sort, err := types.ParseUserSort(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := store.UserQuery{
		Search: r.URL.Query().Get("q"),
		Sort:   sort,
		Page:   pageFromRequest(r),
	}
	items, hasNext, err := h.userService.List(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, UserListResponse{
		Items:   items,
		Page:    query.Page.Page,
		HasNext: hasNext,
	})
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := h.userService.Profile(r.Context(), username)
	if err != nil {
		writeServiceError(w, err, "failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) ListUserQuestions(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, err, "failed to fetch user")
		return
	}

	page := pageFromRequest(r)
	items, hasNext, err := h.userService.Questions(r.Context(), user.ID, page)
	if err != nil {
		writeServiceError(w, err, "failed to list questions")
		return
	}

	writeJSON(w, http.StatusOK, QuestionListResponse{
		Items:   items,
		Page:    page.Page,
		HasNext: hasNext,
	})
}

func (h *UserHandler) ListUserAnswers(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, err, "failed to fetch user")
		return
	}

	page := pageFromRequest(r)
	items, hasNext, err := h.userService.Answers(r.Context(), user.ID, page)
	if err != nil {
		writeServiceError(w, err, "failed to list answers")
		return
	}

	writeJSON(w, http.StatusOK, UserAnswersResponse{
		Items:   items,
		Page:    page.Page,
		HasNext: hasNext,
	})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req.Name, req.Bio, req.Portfolio, req.Location)
	if err != nil {
		writeServiceError(w, err, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	key, err := h.userService.SetAvatar(r.Context(), userID, header.Filename, file, header.Size, contentType)
	if err != nil {
		writeServiceError(w, err, "failed to store avatar")
		return
	}
	writeJSON(w, http.StatusOK, AvatarResponse{Picture: key})
}

func (h *UserHandler) ServeAvatar(w http.ResponseWriter, r *http.Request) {
	key := "avatars/" + chi.URLParam(r, "object")
	if strings.Contains(key, "..") {
		writeError(w, http.StatusBadRequest, "invalid object key")
		return
	}

	object, err := h.userService.Avatar(r.Context(), key)
	if err != nil {
		writeServiceError(w, err, "failed to fetch avatar")
		return
	}
	defer object.Close()

	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, object); err != nil {
		return
	}
}

func (h *UserHandler) ListSavedQuestions(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sort, err := types.ParseSavedSort(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := store.SavedQuery{
		Search: r.URL.Query().Get("q"),
		Sort:   sort,
		Page:   pageFromRequest(r),
	}
	items, hasNext, err := h.userService.ListSaved(r.Context(), userID, query)
	if err != nil {
		writeServiceError(w, err, "failed to list saved questions")
		return
	}

	writeJSON(w, http.StatusOK, QuestionListResponse{
		Items:   items,
		Page:    query.Page.Page,
		HasNext: hasNext,
	})
}

func (h *UserHandler) SaveQuestion(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	questionID, err := idParam(r, "questionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.SaveQuestion(r.Context(), userID, questionID); err != nil {
		writeServiceError(w, err, "failed to save question")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) UnsaveQuestion(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	questionID, err := idParam(r, "questionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.UnsaveQuestion(r.Context(), userID, questionID); err != nil {
		writeServiceError(w, err, "failed to unsave question")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	Portfolio string `json:"portfolio"`
	Location  string `json:"location"`
}

type AvatarResponse struct {
	Picture string `json:"picture"`
}

type UserListResponse struct {
	Items   []types.User `json:"items"`
	Page    int          `json:"page"`
	HasNext bool         `json:"has_next"`
}

type UserAnswersResponse struct {
	Items   []types.Answer `json:"items"`
	Page    int            `json:"page"`
	HasNext bool           `json:"has_next"`
}
