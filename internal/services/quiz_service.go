package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/davemk99/studyrag/internal/core"
	"github.com/davemk99/studyrag/internal/core/errs"
	"github.com/davemk99/studyrag/internal/models"
)

// quizTopK is wider than the chat retrieval window: question generation
// benefits from broader coverage of the document.
const quizTopK = 15

const quizSystemPrompt = `You are an expert exam question generator. Generate high-quality questions based ONLY on the provided content. Do not use external knowledge. Respond with a JSON object of the form {"questions": [...]} where every question has "id", "type" (MCQ, SAQ or LAQ), "question", "topic" and "explanation" fields, and MCQ questions additionally have "choices" (exactly 4 strings) and "answerKey" (zero-based index of the correct choice).`

const quizFallbackSystemPrompt = `You are an expert exam question generator for students. Respond with a JSON object of the form {"questions": [...]} where every question has "id", "type" (MCQ, SAQ or LAQ), "question", "topic" and "explanation" fields, and MCQ questions additionally have "choices" (exactly 4 strings) and "answerKey" (zero-based index of the correct choice).`

var questionTypePrompts = map[string]string{
	models.QuestionMCQ: "Multiple Choice Questions with 4 options each",
	models.QuestionSAQ: "Short Answer Questions (2-3 sentences)",
	models.QuestionLAQ: "Long Answer Questions (paragraph format)",
}

// QuizService generates quizzes grounded on retrieved chunks, falling back
// to title-only generation when retrieval comes up empty, and records
// submitted attempts.
type QuizService struct {
	db        core.DbClient
	retrieval *RetrievalService
	llm       core.LLMProvider
}

func NewQuizService(db core.DbClient, retrieval *RetrievalService, llm core.LLMProvider) *QuizService {
	return &QuizService{db: db, retrieval: retrieval, llm: llm}
}

// QuizResult carries generated questions plus how they were grounded. The
// fallback marker is load-bearing: consumers must not present title-only
// questions with the same confidence as retrieved ones.
type QuizResult struct {
	Questions  []models.QuizQuestion `json:"questions"`
	Source     string                `json:"source"` // "retrieved" or "fallback"
	ChunksUsed int                   `json:"chunks_used"`
}

// Generate builds a quiz of count questions of the requested types, scoped
// to one document when documentID is set.
func (s *QuizService) Generate(ctx context.Context, userID string, documentID *string, types []string, count int) (*QuizResult, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("question types are required")
	}
	if count <= 0 {
		count = 5
	}

	title := "the student's study materials"
	if documentID != nil {
		doc, err := s.db.GetDocumentByID(ctx, *documentID)
		if err != nil {
			return nil, fmt.Errorf("load document: %w", err)
		}
		if doc == nil || doc.UserID != userID {
			return nil, fmt.Errorf("document not found: %s", *documentID)
		}
		title = doc.Title
	}

	source := SourceRetrieved
	chunks, err := s.retrieval.Retrieve(ctx, userID, "Generate quiz questions about: "+title, documentID, quizTopK)
	if err != nil {
		var vse *errs.VectorSearchError
		if !errors.As(err, &vse) {
			return nil, err
		}
		log.Printf("quiz: vector search failed, degrading to fallback: %v", err)
		chunks = nil
	}
	if len(chunks) == 0 {
		source = SourceFallback
	}

	var system, prompt string
	if source == SourceFallback {
		system = quizFallbackSystemPrompt
		prompt = buildFallbackQuizPrompt(title, types, count)
	} else {
		system = quizSystemPrompt
		prompt = buildQuizPrompt(title, types, count, BuildContext(chunks))
	}

	raw, err := s.llm.GenerateQuiz(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	questions, err := ParseQuizPayload(raw)
	if err != nil {
		return nil, err
	}

	return &QuizResult{Questions: questions, Source: source, ChunksUsed: len(chunks)}, nil
}

func buildQuizPrompt(title string, types []string, count int, contextBlock string) string {
	return fmt.Sprintf(`Generate %d questions based on the following content from %q.
Types needed: %s

CONTENT FROM PDF:
%s

INSTRUCTIONS:
- Base questions ONLY on the content above
- Each question must include a topic field identifying the subject area
- Include page references in explanations when possible
- Make questions exam-relevant and test understanding of the content`,
		count, title, typeList(types), contextBlock)
}

func buildFallbackQuizPrompt(title string, types []string, count int) string {
	return fmt.Sprintf(`You are generating quiz questions for a student studying from %q.
No passages from the document are available, so infer the subject from the
title and generate %d exam-style questions on typical curriculum topics for
that subject. Do NOT generate generic questions about unrelated subjects.
Types needed: %s

Each question must include a topic field identifying the subject area.`,
		title, count, typeList(types))
}

func typeList(types []string) string {
	var parts []string
	for _, t := range types {
		if p, ok := questionTypePrompts[t]; ok {
			parts = append(parts, p)
		} else {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ", ")
}

// quizPayload mirrors the JSON contract given to the model.
type quizPayload struct {
	Questions []models.QuizQuestion `json:"questions"`
}

// ParseQuizPayload is the strict boundary between the model's loosely-typed
// JSON and the internal data model. Any structural violation rejects the
// whole payload with a *errs.StructuredOutputValidationError; there is no
// partial acceptance.
func ParseQuizPayload(raw []byte) ([]models.QuizQuestion, error) {
	var payload quizPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &errs.StructuredOutputValidationError{Reason: "not valid JSON: " + err.Error()}
	}
	if len(payload.Questions) == 0 {
		return nil, &errs.StructuredOutputValidationError{Reason: "no questions in response"}
	}

	for i, q := range payload.Questions {
		if q.ID == "" {
			return nil, &errs.StructuredOutputValidationError{Reason: fmt.Sprintf("question %d: missing id", i)}
		}
		switch q.Type {
		case models.QuestionMCQ, models.QuestionSAQ, models.QuestionLAQ:
		default:
			return nil, &errs.StructuredOutputValidationError{Reason: fmt.Sprintf("question %d: unknown type %q", i, q.Type)}
		}
		if strings.TrimSpace(q.Question) == "" {
			return nil, &errs.StructuredOutputValidationError{Reason: fmt.Sprintf("question %d: missing question text", i)}
		}
		if strings.TrimSpace(q.Topic) == "" {
			return nil, &errs.StructuredOutputValidationError{Reason: fmt.Sprintf("question %d: missing topic", i)}
		}
		if strings.TrimSpace(q.Explanation) == "" {
			return nil, &errs.StructuredOutputValidationError{Reason: fmt.Sprintf("question %d: missing explanation", i)}
		}
		if q.Type == models.QuestionMCQ {
			if len(q.Choices) != 4 {
				return nil, &errs.StructuredOutputValidationError{Reason: fmt.Sprintf("question %d: MCQ needs 4 choices, got %d", i, len(q.Choices))}
			}
			if q.AnswerKey == nil || *q.AnswerKey < 0 || *q.AnswerKey >= len(q.Choices) {
				return nil, &errs.StructuredOutputValidationError{Reason: fmt.Sprintf("question %d: MCQ answerKey out of range", i)}
			}
		}
	}
	return payload.Questions, nil
}

// SubmittedAnswer is one graded answer in a submission.
type SubmittedAnswer struct {
	QuestionID    string `json:"question_id"`
	QuestionType  string `json:"question_type"`
	QuestionText  string `json:"question_text"`
	Topic         string `json:"topic"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// SubmitAttempt persists a completed quiz with its per-question outcomes and
// percentage score. Attempts are immutable once written.
func (s *QuizService) SubmitAttempt(ctx context.Context, userID string, documentID *string, quizType string, answers []SubmittedAnswer) (*models.QuizAttempt, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("no answers submitted")
	}

	correct := 0
	rows := make([]models.QuizAnswer, len(answers))
	for i, a := range answers {
		if a.IsCorrect {
			correct++
		}
		rows[i] = models.QuizAnswer{
			ID:            uuid.NewString(),
			QuestionID:    a.QuestionID,
			QuestionType:  a.QuestionType,
			QuestionText:  a.QuestionText,
			Topic:         a.Topic,
			UserAnswer:    a.UserAnswer,
			CorrectAnswer: a.CorrectAnswer,
			IsCorrect:     a.IsCorrect,
		}
	}

	attempt := &models.QuizAttempt{
		ID:             uuid.NewString(),
		UserID:         userID,
		DocumentID:     documentID,
		QuizType:       quizType,
		TotalQuestions: len(answers),
		CorrectCount:   correct,
		Score:          Percentage(correct, len(answers)),
	}
	if err := s.db.CreateQuizAttempt(ctx, attempt, rows); err != nil {
		return nil, fmt.Errorf("store attempt: %w", err)
	}
	return attempt, nil
}

// ListAttempts returns a user's past attempts, newest first.
func (s *QuizService) ListAttempts(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	return s.db.ListQuizAttemptsByUser(ctx, userID)
}

// Percentage converts a correct count into a 0-100 score.
func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
