package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/devflow-qa/apiserver/internal/services"
	"github.com/devflow-qa/apiserver/internal/store"
	"github.com/devflow-qa/apiserver/types"
)

// QuestionHandler provides HTTP handlers for questions and the
// answers nested under them.
type QuestionHandler struct {
	questionService *services.QuestionService
	answerService   *services.AnswerService
}

// NewQuestionHandler constructs a handler with the provided services.
func NewQuestionHandler(questionService *services.QuestionService, answerService *services.AnswerService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		answerService:   answerService,
	}
}

// QuestionRouter registers question routes on the given router.
func QuestionRouter(
	r chi.Router,
	questionService *services.QuestionService,
	answerService *services.AnswerService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewQuestionHandler(questionService, answerService)

	r.Get("/", handler.ListQuestions)
	r.Get("/hot", handler.HotQuestions)
	r.With(authMiddleware).Post("/", handler.CreateQuestion)
	r.Route("/{questionID}", func(r chi.Router) {
		r.Get("/", handler.GetQuestion)
		r.With(authMiddleware).Put("/", handler.UpdateQuestion)
		r.With(authMiddleware).Delete("/", handler.DeleteQuestion)
		r.Post("/views", handler.RecordView)
		r.With(authMiddleware).Post("/vote", handler.VoteQuestion)
		r.Get("/answers", handler.ListAnswers)
		r.With(authMiddleware).Post("/answers", handler.CreateAnswer)
	})
}

func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	sort, err := types.ParseQuestionSort(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := store.QuestionQuery{
		Search: r.URL.Query().Get("q"),
		Sort:   sort,
		Page:   pageFromRequest(r),
	}
	items, hasNext, err := h.questionService.List(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list questions")
		return
	}

	writeJSON(w, http.StatusOK, QuestionListResponse{
		Items:   items,
		Page:    query.Page.Page,
		HasNext: hasNext,
	})
}

func (h *QuestionHandler) HotQuestions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.questionService.Hot(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list hot questions")
		return
	}
	writeJSON(w, http.StatusOK, HotQuestionsResponse{Items: items})
}

func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "questionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	question, err := h.questionService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to fetch question")
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	question, err := h.questionService.Create(r.Context(), userID, req.Title, req.Content, req.Tags)
	if err != nil {
		writeServiceError(w, err, "failed to create question")
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := idParam(r, "questionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	question, err := h.questionService.Update(r.Context(), userID, id, req.Title, req.Content)
	if err != nil {
		writeServiceError(w, err, "failed to update question")
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := idParam(r, "questionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.questionService.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err, "failed to delete question")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuestionHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "questionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.questionService.IncrementViews(r.Context(), id); err != nil {
		writeServiceError(w, err, "failed to record view")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuestionHandler) VoteQuestion(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := idParam(r, "questionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.questionService.Vote(r.Context(), userID, id, req.Value); err != nil {
		writeServiceError(w, err, "failed to record vote")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuestionHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "questionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sort, err := types.ParseAnswerSort(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	answers, err := h.answerService.ListByQuestion(r.Context(), id, sort)
	if err != nil {
		writeServiceError(w, err, "failed to list answers")
		return
	}
	writeJSON(w, http.StatusOK, AnswerListResponse{Items: answers})
}

func (h *QuestionHandler) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := idParam(r, "questionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	answer, err := h.answerService.Create(r.Context(), id, userID, req.Content)
	if err != nil {
		writeServiceError(w, err, "failed to create answer")
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}

type QuestionRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type AnswerRequest struct {
	Content string `json:"content"`
}

type VoteRequest struct {
	Value int `json:"value"`
}

type QuestionListResponse struct {
	Items   []types.Question `json:"items"`
	Page    int              `json:"page"`
	HasNext bool             `json:"has_next"`
}

type HotQuestionsResponse struct {
	Items []types.QuestionSummary `json:"items"`
}

type AnswerListResponse struct {
	Items []types.Answer `json:"items"`
}
