package models

import (
	"time"
)

// Document status lifecycle. A document counts as processed only once it
// reaches StatusReady; everything else means its chunks are absent or partial.
const (
	StatusUploaded   = "uploaded"
	StatusExtracting = "extracting"
	StatusChunking   = "chunking"
	StatusEmbedding  = "embedding"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// Quiz question types.
const (
	QuestionMCQ = "MCQ"
	QuestionSAQ = "SAQ"
	QuestionLAQ = "LAQ"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents one uploaded PDF.
type Document struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	FileName    string    `db:"file_name" json:"file_name"`
	StorageURL  string    `db:"storage_url" json:"storage_url"`
	ContentType string    `db:"content_type" json:"content_type"`
	PageCount   int       `db:"page_count" json:"page_count"`
	Status      string    `db:"status" json:"status"` // uploaded | extracting | chunking | embedding | ready | failed
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Processed reports whether ingestion completed for this document.
func (d *Document) Processed() bool { return d.Status == StatusReady }

// DocumentChunk is one sentence-aligned span of extracted text together with
// its embedding. ChunkIndex is zero-based and strictly increasing within a
// document; PageNumber is non-decreasing as ChunkIndex increases.
type DocumentChunk struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	ChunkIndex int       `db:"chunk_index" json:"chunk_index"`
	PageNumber int       `db:"page_number" json:"page_number"`
	Text       string    `db:"chunk_text" json:"chunk_text"`
	Embedding  []float32 `db:"embedding" json:"-"` // pgvector column
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ScoredChunk is a retrieval hit: a chunk plus its cosine similarity score.
type ScoredChunk struct {
	DocumentChunk
	Similarity float64 `json:"similarity"`
}

// ChatMessage represents one turn in a conversation.
type ChatMessage struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	Role           string    `db:"role" json:"role"` // "user" or "assistant"
	Content        string    `db:"content" json:"content"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// QuizQuestion is a generated question. It is ephemeral: nothing is persisted
// until the student submits an attempt.
type QuizQuestion struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"` // MCQ | SAQ | LAQ
	Question    string   `json:"question"`
	Topic       string   `json:"topic"`
	Choices     []string `json:"choices,omitempty"`
	AnswerKey   *int     `json:"answerKey,omitempty"` // zero-based index into Choices
	Explanation string   `json:"explanation"`
}

// QuizAttempt is the persisted record of a completed quiz.
type QuizAttempt struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	DocumentID     *string   `db:"document_id" json:"document_id,omitempty"`
	QuizType       string    `db:"quiz_type" json:"quiz_type"`
	TotalQuestions int       `db:"total_questions" json:"total_questions"`
	CorrectCount   int       `db:"correct_count" json:"correct_count"`
	Score          float64   `db:"score" json:"score"` // percentage 0-100
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// QuizAnswer is the per-question outcome belonging to an attempt.
type QuizAnswer struct {
	ID            string    `db:"id" json:"id"`
	AttemptID     string    `db:"attempt_id" json:"attempt_id"`
	QuestionID    string    `db:"question_id" json:"question_id"`
	QuestionType  string    `db:"question_type" json:"question_type"`
	QuestionText  string    `db:"question_text" json:"question_text"`
	Topic         string    `db:"topic" json:"topic"`
	UserAnswer    string    `db:"user_answer" json:"user_answer"`
	CorrectAnswer string    `db:"correct_answer" json:"correct_answer"`
	IsCorrect     bool      `db:"is_correct" json:"is_correct"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
