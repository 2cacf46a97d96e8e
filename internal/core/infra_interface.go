package core

import (
	"context"
	"io"

	"github.com/davemk99/studyrag/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status string) error
	SetDocumentPageCount(ctx context.Context, id string, pages int) error
	DeleteDocument(ctx context.Context, id string) error

	InsertDocumentChunks(ctx context.Context, chunks []models.DocumentChunk) error
	DeleteChunksByDocument(ctx context.Context, documentID string) error
	// SearchChunks returns up to k chunks owned by userID (optionally limited
	// to one document), ranked by cosine similarity, excluding anything below
	// threshold. An empty result is not an error.
	SearchChunks(ctx context.Context, userID string, queryVec []float32, documentID *string, k int, threshold float64) ([]models.ScoredChunk, error)

	CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error
	// GetRecentMessages returns the last limit turns of a conversation in
	// created_at ascending order.
	GetRecentMessages(ctx context.Context, userID, conversationID string, limit int) ([]models.ChatMessage, error)

	CreateQuizAttempt(ctx context.Context, attempt *models.QuizAttempt, answers []models.QuizAnswer) error
	ListQuizAttemptsByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)

	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
