package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davemk99/studyrag/internal/core/errs"
	"github.com/davemk99/studyrag/internal/models"
)

const validQuizJSON = `{
	"questions": [
		{
			"id": "q1",
			"type": "MCQ",
			"question": "What does F = ma describe?",
			"topic": "Newtonian mechanics",
			"choices": ["Gravity", "Newton's second law", "Entropy", "Momentum"],
			"answerKey": 1,
			"explanation": "Covered on page 7 of the notes."
		},
		{
			"id": "q2",
			"type": "SAQ",
			"question": "State Newton's first law.",
			"topic": "Newtonian mechanics",
			"explanation": "See page 3."
		}
	]
}`

func TestParseQuizPayloadValid(t *testing.T) {
	questions, err := ParseQuizPayload([]byte(validQuizJSON))
	require.NoError(t, err)
	require.Len(t, questions, 2)

	assert.Equal(t, models.QuestionMCQ, questions[0].Type)
	require.NotNil(t, questions[0].AnswerKey)
	assert.Equal(t, 1, *questions[0].AnswerKey)
	assert.Len(t, questions[0].Choices, 4)
	assert.Equal(t, models.QuestionSAQ, questions[1].Type)
}

func TestParseQuizPayloadRejections(t *testing.T) {
	cases := map[string]string{
		"not json":        `the model rambled instead of emitting JSON`,
		"no questions":    `{"questions": []}`,
		"missing id":      `{"questions":[{"type":"SAQ","question":"q","topic":"t","explanation":"e"}]}`,
		"unknown type":    `{"questions":[{"id":"q1","type":"ESSAY","question":"q","topic":"t","explanation":"e"}]}`,
		"missing topic":   `{"questions":[{"id":"q1","type":"SAQ","question":"q","topic":" ","explanation":"e"}]}`,
		"mcq few choices": `{"questions":[{"id":"q1","type":"MCQ","question":"q","topic":"t","explanation":"e","choices":["a","b"],"answerKey":0}]}`,
		"mcq no key":      `{"questions":[{"id":"q1","type":"MCQ","question":"q","topic":"t","explanation":"e","choices":["a","b","c","d"]}]}`,
		"mcq key range":   `{"questions":[{"id":"q1","type":"MCQ","question":"q","topic":"t","explanation":"e","choices":["a","b","c","d"],"answerKey":4}]}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQuizPayload([]byte(payload))
			require.Error(t, err)
			var sve *errs.StructuredOutputValidationError
			assert.ErrorAs(t, err, &sve)
		})
	}
}

func TestGenerateGroundedQuiz(t *testing.T) {
	db := newFakeDB()
	db.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "user-1", Title: "physics notes"}
	db.hits = []models.ScoredChunk{scored("c1", 7, "Force equals mass times acceleration.", 0.88)}

	llm := &fakeLLM{quizJSON: []byte(validQuizJSON)}
	svc := NewQuizService(db, NewRetrievalService(db, &fakeEmbedder{}, 0.7), llm)

	docID := "doc-1"
	result, err := svc.Generate(context.Background(), "user-1", &docID, []string{models.QuestionMCQ, models.QuestionSAQ}, 2)
	require.NoError(t, err)

	assert.Equal(t, SourceRetrieved, result.Source)
	assert.Equal(t, 1, result.ChunksUsed)
	assert.Len(t, result.Questions, 2)
	assert.Contains(t, llm.lastPrompt, "Force equals mass times acceleration.")
	assert.Contains(t, llm.lastPrompt, "physics notes")
}

func TestGenerateFallsBackWhenNoChunks(t *testing.T) {
	db := newFakeDB()
	db.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "user-1", Title: "physics notes"}

	llm := &fakeLLM{quizJSON: []byte(validQuizJSON)}
	svc := NewQuizService(db, NewRetrievalService(db, &fakeEmbedder{}, 0.7), llm)

	docID := "doc-1"
	result, err := svc.Generate(context.Background(), "user-1", &docID, []string{models.QuestionSAQ}, 3)
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, result.Source)
	assert.Equal(t, 0, result.ChunksUsed)
	assert.Contains(t, llm.lastPrompt, "physics notes")
}

func TestGenerateFallsBackOnVectorSearchFailure(t *testing.T) {
	db := newFakeDB()
	db.searchErr = errors.New("index corrupted")

	llm := &fakeLLM{quizJSON: []byte(validQuizJSON)}
	svc := NewQuizService(db, NewRetrievalService(db, &fakeEmbedder{}, 0.7), llm)

	result, err := svc.Generate(context.Background(), "user-1", nil, []string{models.QuestionSAQ}, 3)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, result.Source)
}

func TestGenerateRejectsForeignDocument(t *testing.T) {
	db := newFakeDB()
	db.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "someone-else", Title: "notes"}

	svc := NewQuizService(db, NewRetrievalService(db, &fakeEmbedder{}, 0.7), &fakeLLM{})

	docID := "doc-1"
	_, err := svc.Generate(context.Background(), "user-1", &docID, []string{models.QuestionSAQ}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGenerateRequiresTypes(t *testing.T) {
	svc := NewQuizService(newFakeDB(), NewRetrievalService(newFakeDB(), &fakeEmbedder{}, 0.7), &fakeLLM{})

	_, err := svc.Generate(context.Background(), "user-1", nil, nil, 3)
	require.Error(t, err)
}

func TestSubmitAttemptScoring(t *testing.T) {
	db := newFakeDB()
	svc := NewQuizService(db, NewRetrievalService(db, &fakeEmbedder{}, 0.7), &fakeLLM{})

	answers := []SubmittedAnswer{
		{QuestionID: "q1", QuestionType: "MCQ", IsCorrect: true},
		{QuestionID: "q2", QuestionType: "SAQ", IsCorrect: false},
		{QuestionID: "q3", QuestionType: "MCQ", IsCorrect: true},
		{QuestionID: "q4", QuestionType: "LAQ", IsCorrect: true},
	}

	attempt, err := svc.SubmitAttempt(context.Background(), "user-1", nil, "mixed", answers)
	require.NoError(t, err)

	assert.Equal(t, 4, attempt.TotalQuestions)
	assert.Equal(t, 3, attempt.CorrectCount)
	assert.Equal(t, 75.0, attempt.Score)
	assert.NotEmpty(t, attempt.ID)

	require.Len(t, db.attempts, 1)
	assert.Len(t, db.answers, 4)
}

func TestSubmitAttemptRejectsEmpty(t *testing.T) {
	svc := NewQuizService(newFakeDB(), NewRetrievalService(newFakeDB(), &fakeEmbedder{}, 0.7), &fakeLLM{})

	_, err := svc.SubmitAttempt(context.Background(), "user-1", nil, "mixed", nil)
	require.Error(t, err)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 0.0, Percentage(0, 5))
	assert.Equal(t, 100.0, Percentage(5, 5))
	assert.Equal(t, 50.0, Percentage(1, 2))
}
