package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	appMiddleware "github.com/davemk99/studyrag/internal/api/middlewares"
	"github.com/davemk99/studyrag/internal/core/errs"
	"github.com/davemk99/studyrag/internal/services"
)

type QuizHandler struct {
	quiz *services.QuizService
}

func NewQuizHandler(quiz *services.QuizService) *QuizHandler {
	return &QuizHandler{quiz: quiz}
}

type generateQuizRequest struct {
	DocumentID *string  `json:"document_id"`
	Types      []string `json:"types"`
	Count      int      `json:"count"`
}

func (h *QuizHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := appMiddleware.UserID(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req generateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", 400)
		return
	}

	result, err := h.quiz.Generate(ctx, userID, req.DocumentID, req.Types, req.Count)
	if err != nil {
		var sve *errs.StructuredOutputValidationError
		if errors.As(err, &sve) {
			http.Error(w, "the model returned an unusable quiz, please retry", http.StatusBadGateway)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

type submitAttemptRequest struct {
	DocumentID *string                    `json:"document_id"`
	QuizType   string                     `json:"quiz_type"`
	Answers    []services.SubmittedAnswer `json:"answers"`
}

func (h *QuizHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := appMiddleware.UserID(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req submitAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", 400)
		return
	}

	attempt, err := h.quiz.SubmitAttempt(ctx, userID, req.DocumentID, req.QuizType, req.Answers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(attempt)
}

func (h *QuizHandler) GetAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := appMiddleware.UserID(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	attempts, err := h.quiz.ListAttempts(ctx, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(attempts)
}
